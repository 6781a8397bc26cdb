package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/imdm/pkg/file"
	"github.com/dmitrymomot/imdm/pkg/logger"
)

type runIDKey struct{}

// App holds the state shared by all commands of one invocation.
type App struct {
	Config Config
	Logger *slog.Logger
	RunID  string

	out     io.Writer
	errOut  io.Writer
	environ map[string]string
	source  file.Source
	s3      *file.S3Storage
	envFile string
	level   string
}

// Option configures the command tree.
type Option func(*App)

// WithOutput redirects command output and log output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithEnviron replaces the process environment used for configuration.
func WithEnviron(vars map[string]string) Option {
	return func(a *App) {
		a.environ = vars
	}
}

// WithSource makes every command read data files from src regardless of the
// configured storage.
func WithSource(src file.Source) Option {
	return func(a *App) {
		a.source = src
	}
}

// NewRootCmd creates the root command of the CLI.
func NewRootCmd(opts ...Option) *cobra.Command {
	app := &App{out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}

	root := &cobra.Command{
		Use:           "imdm",
		Short:         "Validate structured and file-backed data samples",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}
	root.SetOut(app.out)
	root.SetErr(app.errOut)
	root.PersistentFlags().StringVar(&app.envFile, "env-file", "", "read configuration variables from this dotenv file")
	root.PersistentFlags().StringVar(&app.level, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newValidateCmd(app),
		newInspectCmd(app),
		newVersionCmd(app),
	)
	return root
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.envFile, a.environ)
	if err != nil {
		return err
	}
	a.Config = cfg

	level := cfg.LogLevel
	if a.level != "" {
		level = a.level
	}
	if level != "" {
		if _, err := logger.ParseLevel(level); err != nil {
			return err
		}
	}
	format := logger.Format(cfg.LogFormat)
	if format != "" && format != logger.FormatJSON && format != logger.FormatText {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, format)
	}

	opts := []logger.Option{logger.WithOutput(a.errOut)}
	if cfg.Env != "" {
		opts = append(opts, logger.WithEnvironment(cfg.Env))
	}
	opts = append(opts,
		logger.WithLevelName(level),
		logger.WithFormat(format),
		logger.WithContextValue("run_id", runIDKey{}),
	)
	a.Logger = logger.New(opts...)

	a.RunID = uuid.NewString()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, runIDKey{}, a.RunID))
	return nil
}

// storageRoot names the storage that storage returns for sampleDir. Sample
// directories share a root unless local storage falls back to them.
func (a *App) storageRoot(sampleDir string) string {
	if a.source == nil && (a.Config.Storage == StorageLocal || a.Config.Storage == "") && a.Config.DataRoot == "" {
		return sampleDir
	}
	return ""
}

// storage returns the source data paths of a sample are resolved against.
func (a *App) storage(ctx context.Context, sampleDir string) (file.Source, error) {
	if a.source != nil {
		return a.source, nil
	}
	switch a.Config.Storage {
	case StorageLocal, "":
		dir := a.Config.DataRoot
		if dir == "" {
			dir = sampleDir
		}
		return file.NewLocalStorage(dir)
	case StorageS3:
		if a.s3 == nil {
			s3, err := file.NewS3Storage(ctx, a.Config.S3)
			if err != nil {
				return nil, err
			}
			a.s3 = s3
		}
		return a.s3, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, a.Config.Storage)
}
