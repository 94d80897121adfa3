package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	formwizard "github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/pkg/server"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// app carries the resolved configuration shared by subcommands.
type app struct {
	configPath string
	cfg        Config
	logger     zerolog.Logger
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, cmd.Flags())
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func (a *app) definition() (*steps.Definition, error) {
	if a.cfg.Definitions == "" {
		if a.cfg.Form != "" && a.cfg.Form != "checkout" {
			return nil, fmt.Errorf("form %q needs --defs; only checkout is bundled", a.cfg.Form)
		}
		return formwizard.DefaultDefinition()
	}
	return formwizard.LoadDefinition(a.cfg.Definitions, a.cfg.Form)
}

func (a *app) options() ([]formwizard.Option, error) {
	engine, err := formwizard.ParseEngine(a.cfg.Engine)
	if err != nil {
		return nil, err
	}
	opts := []formwizard.Option{
		formwizard.WithEngine(engine),
		formwizard.WithLogger(a.logger),
	}
	if a.cfg.OpenAPI != "" {
		raw, err := os.ReadFile(a.cfg.OpenAPI)
		if err != nil {
			return nil, fmt.Errorf("read openapi document: %w", err)
		}
		opts = append(opts, formwizard.WithOpenAPIDocument(raw))
	}
	return opts, nil
}

func (a *app) factory(ctx context.Context) (*steps.Definition, server.WizardFactory, error) {
	def, err := a.definition()
	if err != nil {
		return nil, nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, nil, err
	}
	factory, err := formwizard.NewFactory(ctx, def, opts...)
	if err != nil {
		return nil, nil, err
	}
	return def, factory, nil
}
