// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates cobra flags, with TASKGRID_* environment overrides bound
// through viper, into the application's internal configuration.
package cli
