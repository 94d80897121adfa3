package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

func stepsCmd(a *app) *cobra.Command {
	var showSchemas bool
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List the steps, fields and schemas of a form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := a.definition()
			if err != nil {
				return err
			}
			return printSteps(cmd.OutOrStdout(), def, showSchemas)
		},
	}
	cmd.Flags().BoolVar(&showSchemas, "schemas", false, "Print the JSON Schema bound to each step")
	return cmd
}

func printSteps(w io.Writer, def *steps.Definition, showSchemas bool) error {
	table := def.Table()
	title := def.Title
	if title == "" {
		title = def.Name
	}
	if _, err := fmt.Fprintf(w, "%s (%d steps)\n", title, table.Len()); err != nil {
		return err
	}

	for idx, step := range table.Steps() {
		model := progress.New(idx, table.Steps())
		fmt.Fprintf(w, "\n%s [%s] schema=%s\n", model.Title(), step.ID, step.SchemaRef())
		for _, field := range step.Fields {
			marker := " "
			if field.Required {
				marker = "*"
			}
			fmt.Fprintf(w, "   %s %-12s %-9s %s\n", marker, field.Name, field.EffectiveKind(), field.DisplayLabel())
			if values := field.OptionValues(); len(values) > 0 {
				fmt.Fprintf(w, "       options: %s\n", strings.Join(values, ", "))
			}
		}
		if showSchemas {
			raw, err := def.SchemaJSON(step.SchemaRef())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "   schema: %s\n", raw)
		}
	}
	return nil
}
