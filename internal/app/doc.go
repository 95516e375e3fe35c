// Package app contains the core application logic. It wires the task file
// loader, the action kinds, the task registry, and the runner together, and
// owns logging setup. It is decoupled from any specific entrypoint like a CLI.
package app
