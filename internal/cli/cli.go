package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/taskgrid/internal/app"
)

// EnvPrefix is the prefix of environment variables that override flags,
// e.g. TASKGRID_WORKERS=4 or TASKGRID_LOG_LEVEL=debug.
const EnvPrefix = "TASKGRID"

// Options is the parsed command line.
type Options struct {
	Config *app.Config
	// Tasks are the positional task names, possibly empty.
	Tasks []string
	// List asks for the task listing instead of a run.
	List bool
}

// Parse processes command-line arguments. It returns the parsed Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")

	var opts *Options
	var parseErr error
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "taskgrid [flags] [TASK...]",
		Short: "taskgrid - a declarative build-task runner.",
		Long: `taskgrid runs the tasks declared in a Taskfile.hcl. Each requested task
runs after all of its transitive prerequisites, and every prerequisite runs
at most once. With no TASK the "default" task runs, or "help" if there is no
default task.

Flags can also be set through TASKGRID_* environment variables, for example
TASKGRID_WORKERS=4.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, parseErr = optionsFrom(v, args)
			return parseErr
		},
	}
	cmd.SetOut(output)
	cmd.SetErr(output)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)

	flags := cmd.Flags()
	flags.SortFlags = true
	flags.StringSliceP("file", "f", []string{app.DefaultTaskFile}, "Task file or directory of .hcl files. Repeatable.")
	flags.IntP("workers", "w", 1, "Number of tasks that may run at the same time.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.Bool("force", false, "Run tasks even when their outputs are up to date.")
	flags.StringArray("var", nil, "Set a task file variable, as name=value. Repeatable. The value may contain commas.")
	flags.BoolP("list", "l", false, "List the available tasks and exit.")
	flags.String("metrics-file", "", "Write Prometheus metrics of the runs to this file.")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, false, UsageError(err)
	}

	if err := cmd.Execute(); err != nil {
		return nil, false, UsageError(err)
	}
	if opts == nil {
		// --help was handled by cobra.
		slog.Debug("No run requested, exiting.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "tasks", opts.Tasks, "files", opts.Config.TaskFiles)
	return opts, false, nil
}

// optionsFrom reads the bound flag and environment values.
func optionsFrom(v *viper.Viper, args []string) (*Options, error) {
	vars, err := parseVariables(v.GetStringSlice("var"))
	if err != nil {
		return nil, err
	}
	cfg, err := app.NewConfig(app.Config{
		TaskFiles:   v.GetStringSlice("file"),
		LogFormat:   strings.ToLower(v.GetString("log-format")),
		LogLevel:    strings.ToLower(v.GetString("log-level")),
		Workers:     v.GetInt("workers"),
		Force:       v.GetBool("force"),
		Variables:   vars,
		MetricsFile: v.GetString("metrics-file"),
	})
	if err != nil {
		return nil, err
	}
	return &Options{
		Config: cfg,
		Tasks:  args,
		List:   v.GetBool("list"),
	}, nil
}

// parseVariables splits each name=value pair on its first '='. A later pair
// for the same name wins.
func parseVariables(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}
