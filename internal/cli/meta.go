package cli

import (
	"context"
	"errors"
	"strings"

	"boardview/internal/linkmeta"
	"boardview/internal/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newLookup builds the link metadata lookup, cached in Redis when a URL is
// configured. Tests swap it for a fake.
var newLookup = func(settings store.Settings, logger log.FieldLogger) (linkmeta.Lookup, func() error, error) {
	client, err := linkmeta.NewRedisClient(settings.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return nil }
	if client != nil {
		closeFn = client.Close
	}
	return linkmeta.NewCache(linkmeta.NewFetcher(), client, settings.MetaCacheTTL, logger), closeFn, nil
}

func newMetaCmd(app *App) *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "meta <url>",
		Short: "Fetch the title, description and image a link advertises",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.settings()
			if err != nil {
				return writeErr(cmd, err)
			}
			if v := strings.TrimSpace(redisURL); v != "" {
				settings.RedisURL = v
			}
			lookup, closeFn, err := newLookup(settings, app.logger())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			target, _ := requireArg(args, "url")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			m, err := lookup.Lookup(ctx, target)
			empty := errors.Is(err, linkmeta.ErrNoMetadata)
			if err != nil && !empty {
				return writeErr(cmd, err)
			}
			if m.URL == "" {
				m.URL = target
			}
			return writeOut(cmd, app, map[string]any{
				"data": m,
				"meta": map[string]any{"cached": settings.RedisURL != "", "empty": empty},
			})
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for the metadata cache (overrides config)")
	return cmd
}
