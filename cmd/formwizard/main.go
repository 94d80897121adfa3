package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &app{}

	root := &cobra.Command{
		Use:           "formwizard",
		Short:         "Run multi-step forms in the terminal or over HTTP",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "YAML config file")
	flags.String("defs", "", "Directory of form definition files (bundled checkout when empty)")
	flags.String("form", "checkout", "Form name to load")
	flags.String("engine", "jsonschema", "Validation engine: jsonschema, openapi or rules")
	flags.String("openapi", "", "OpenAPI document for the openapi engine")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("renderer", "", "Renderer name: html or tui (html for serve, tui for run when empty)")

	root.AddCommand(runCmd(app))
	root.AddCommand(serveCmd(app))
	root.AddCommand(stepsCmd(app))
	return root
}
