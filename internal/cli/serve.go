package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boardview/internal/web"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr     string
	redisURL string
	open     bool
}

func newServeCmd(app *App) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web board viewer",
		Long: strings.TrimSpace(`
Run the web viewer on a local HTTP server.

Uploads land in the data directory; the file list and open boards update
live in every connected browser.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (default 127.0.0.1:3001)
boardview serve

# Share link previews between restarts
boardview serve --redis-url redis://localhost:6379/0 --open
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := runServe(ctx, cmd, app, opts, nil); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Bind address (host:port or :port; default from config)")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the link metadata cache (overrides config)")
	cmd.Flags().BoolVar(&opts.open, "open", false, "Open the viewer in your default browser")
	return cmd
}

// runServe blocks until ctx is done or a component fails. ready, when set,
// is called with the base URL once the listener is up.
func runServe(ctx context.Context, cmd *cobra.Command, app *App, opts serveOptions, ready func(url string)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, settings, err := app.store()
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(opts.addr); v != "" {
		settings.Addr = v
	}
	if v := strings.TrimSpace(opts.redisURL); v != "" {
		settings.RedisURL = v
	}
	logger := app.logger()

	lookup, closeLookup, err := newLookup(settings, logger)
	if err != nil {
		return fmt.Errorf("serve: redis: %w", err)
	}
	defer closeLookup()

	srv, err := web.NewServer(web.ServerConfig{
		Addr:           settings.Addr,
		Store:          s,
		Meta:           lookup,
		MaxUploadBytes: settings.MaxUploadBytes,
		Log:            logger,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", settings.Addr)
	if err != nil {
		return err
	}
	actualAddr := ln.Addr().String()
	url := "http://" + actualAddr + "/"

	opened := false
	openErr := ""
	if opts.open {
		if err := openPath(url); err != nil {
			openErr = err.Error()
		} else {
			opened = true
		}
	}
	hints := []string{}
	if !opened {
		hints = append(hints, "open "+url)
	}
	_ = writeOut(cmd, app, map[string]any{
		"data": map[string]any{
			"addr":      actualAddr,
			"url":       url,
			"dir":       s.Dir,
			"cache":     settings.RedisURL != "",
			"opened":    opened,
			"openError": openErr,
			"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
		},
		"_hints": hints,
	})
	logger.WithFields(log.Fields{"url": url, "dir": s.Dir}).Info("boardview web running")
	if openErr != "" {
		logger.WithError(errors.New(openErr)).Warn("failed to open browser")
	}

	g, gctx := errgroup.WithContext(ctx)
	// Request contexts derive from gctx so open streams end on shutdown.
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return s.Watch(gctx, srv.NotifyUploadsChanged) })
	g.Go(func() error { return srv.RunReaper(gctx) })

	if ready != nil {
		ready(url)
	}
	err = g.Wait()
	logger.Info("boardview web stopped")
	return err
}
