package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"boardview/internal/format"
	"boardview/internal/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string
	LogFormat  string

	log *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "boardview",
		Short:        "View and rearrange exported Trello boards (web + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Store an export and look at it in the terminal
  boardview upload ~/Downloads/roadmap.json
  boardview open 1728900000000-roadmap.json

  # Shortcut for: boardview open <file>.json
  boardview 1728900000000-roadmap.json

  # Serve the web viewer
  boardview serve --open
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := format.Normalize(app.Format)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Format = f
		logger, err := newLogger(cmd.ErrOrStderr(), app.LogLevel, app.LogFormat)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = logger
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr(store.EnvDataDir, ""), "Data directory holding uploads and the catalog (default ~/.boardview/data)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BOARDVIEW_FORMAT", format.JSON), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("BOARDVIEW_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFormat, "log-format", envOr("BOARDVIEW_LOG_FORMAT", "text"), "Log format on stderr (text|json)")

	cmd.AddCommand(newUploadCmd(app))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newMetaCmd(app))
	cmd.AddCommand(newReindexCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newLogger(w io.Writer, level, logFormat string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	logger := log.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	switch strings.ToLower(strings.TrimSpace(logFormat)) {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("--log-format: unknown format %q (expected text or json)", logFormat)
	}
	return logger, nil
}

// settings resolves the effective configuration. --dir wins over the
// environment and the config file.
func (app *App) settings() (store.Settings, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return store.Settings{}, err
	}
	s, err := cfg.Resolve(os.Getenv)
	if err != nil {
		return store.Settings{}, err
	}
	if d := strings.TrimSpace(app.Dir); d != "" {
		s.DataDir = d
	}
	return s, nil
}

func (app *App) logger() *log.Logger {
	if app.log == nil {
		return log.StandardLogger()
	}
	return app.log
}

func (app *App) store() (store.Store, store.Settings, error) {
	s, err := app.settings()
	if err != nil {
		return store.Store{}, store.Settings{}, err
	}
	return store.Store{Dir: s.DataDir, Log: app.logger()}, s, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
