package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/algonotes/internal/client"
	"github.com/starford/algonotes/internal/desk"
	"github.com/starford/algonotes/internal/window"
)

// RunDesk opens the terminal desk against the server at desk.api_base.
// The terminal belongs to the desk, so logs go to desk.log_file only.
func RunDesk(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		var out io.Writer = io.Discard
		if cfg.Desk.LogFile != "" {
			f, err := os.OpenFile(cfg.Desk.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open desk log: %w", err)
			}
			defer f.Close()
			out = f
		}
		logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	}

	var copts []client.Option
	if cfg.Auth.AuthEnabled() {
		copts = append(copts, client.WithToken(cfg.Auth.Token))
	}
	api := client.New(cfg.Desk.APIBase, copts...)

	logger.Info("desk starting", slog.String("api", cfg.Desk.APIBase))
	return desk.Run(ctx, api, desk.Options{
		MinSize: window.Size{W: cfg.Desk.MinWidth, H: cfg.Desk.MinHeight},
		Logger:  logger,
	})
}
