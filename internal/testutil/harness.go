package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files (relative path to content) into a new temporary
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Dir       string
	LogOutput string
	LoadErr   error
	RunErr    error
	App       *app.App
}

// Harness describes one integration test run.
type Harness struct {
	// Files are written to a temporary directory, which becomes the task
	// file path unless Config.TaskFiles is set.
	Files map[string]string
	// Config is passed through app.NewConfig. LogLevel defaults to debug.
	Config app.Config
	// Modules are registered in addition to the core modules.
	Modules []handlers.Module
	// Tasks are the task names to run. Empty runs the default task.
	Tasks []string
	// Prepare, if set, runs after the files are written and before loading.
	Prepare func(t *testing.T, dir string)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, h Harness) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, h)
}

// RunIntegrationTestWithContext loads and runs the harness's task files with
// a context provided by the caller. The run is skipped if loading fails.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, h Harness) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, h.Files)
	if h.Prepare != nil {
		h.Prepare(t, dir)
	}
	cfg := h.Config
	if len(cfg.TaskFiles) == 0 {
		cfg.TaskFiles = []string{dir}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	modules := append(app.CoreModules(), h.Modules...)
	testApp := app.NewApp(logBuffer, appConfig, hcl.NewLoader(), modules...)

	result := &HarnessResult{Dir: dir, App: testApp}
	result.LoadErr = testApp.Load(ctx)
	if result.LoadErr == nil {
		result.RunErr = testApp.Run(ctx, h.Tasks...)
	}
	result.LogOutput = logBuffer.String()

	if os.Getenv("TASKGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}
