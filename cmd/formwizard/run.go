package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func runCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fill in a form interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.run(ctx, cmd, out)
		},
	}
	cmd.Flags().String("output", "json", "Output format: json, form or pretty")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the collected data to a file instead of stdout")
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, out string) error {
	def, factory, err := a.factory(ctx)
	if err != nil {
		return err
	}
	wizard, err := factory(ctx)
	if err != nil {
		return err
	}

	renderer, err := a.runner()
	if err != nil {
		return err
	}

	if def.Title != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), def.Title)
	}
	payload, err := renderer.Run(ctx, wizard)
	if err != nil {
		return err
	}

	if out != "" {
		if err := os.WriteFile(out, payload, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Form data written to %s\n", out)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return err
}
