package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/server"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP with one wizard per browser session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("base-path", "/wizard", "URL prefix for the wizard routes")
	cmd.Flags().String("title", "", "Page title (form title when empty)")
	cmd.Flags().String("templates", "", "Directory of template overrides")
	return cmd
}

func (a *app) handler(ctx context.Context) (http.Handler, error) {
	def, factory, err := a.factory(ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := a.pageRenderer()
	if err != nil {
		return nil, err
	}

	title := a.cfg.Serve.Title
	if title == "" {
		title = def.Title
	}
	return server.New(factory,
		server.WithLogger(a.logger),
		server.WithRenderer(renderer),
		server.WithBasePath(a.cfg.Serve.BasePath),
		server.WithTitle(title),
		server.WithTheme(themeConfig(a.cfg.Serve.Theme)),
	)
}

func (a *app) serve(ctx context.Context) error {
	handler, err := a.handler(ctx)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Serve.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", httpServer.Addr).Str("path", a.cfg.Serve.BasePath).Msg("serving form wizard")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info().Msg("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func themeConfig(cfg ThemeConfig) *theme.RendererConfig {
	if cfg.Name == "" && len(cfg.Tokens) == 0 {
		return nil
	}
	manifest := &theme.Manifest{
		Name:     cfg.Name,
		Tokens:   cfg.Tokens,
		Variants: map[string]theme.Variant{},
	}
	for name, tokens := range cfg.Variants {
		manifest.Variants[name] = theme.Variant{Tokens: tokens}
	}
	return render.ThemeFromSelection(&theme.Selection{
		Theme:    cfg.Name,
		Variant:  cfg.Variant,
		Manifest: manifest,
	})
}
