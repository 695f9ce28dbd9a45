package main

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"xfer-generator/internal/directive"
	"xfer-generator/internal/emit"
	"xfer-generator/internal/model"
	"xfer-generator/internal/support"
	"xfer-generator/internal/walk"
)

var (
	inspectSchema     string
	inspectDirectives string
	inspectDump       bool
	inspectPlan       bool
)

func init() {
	inspectCmd.Flags().StringVar(&inspectSchema, "schema", "schema.yaml", "Model schema file")
	inspectCmd.Flags().StringVar(&inspectDirectives, "directives", "", "Directive configuration file")
	inspectCmd.Flags().BoolVar(&inspectDump, "dump", false, "Dump the raw registry structures")
	inspectCmd.Flags().BoolVar(&inspectPlan, "plan", false, "Show the walk plan and diagnostics")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the parsed model registry",
	Long:  "Load the model schema and print every type with its fields, relations and key fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := model.LoadSchema(inspectSchema)
		if err != nil {
			return err
		}

		if inspectDump {
			spew.Dump(registry.Types())
			return nil
		}

		if inspectPlan {
			return printPlan(registry)
		}

		heading := color.New(color.FgCyan, color.Bold)
		dim := color.New(color.Faint)

		for _, t := range registry.Types() {
			heading.Printf("%s\n", t.Name)

			if len(t.KeyFields) > 0 {
				dim.Printf("  keys: %s\n", strings.Join(t.KeyFields, ", "))
			}

			for _, f := range t.Fields {
				fmt.Printf("  %-16s %s\n", f.Name, f.Type)
			}

			for _, r := range t.Relations {
				card := "one"
				if r.Cardinality == model.Collection {
					card = "many"
				}

				fmt.Printf("  %-16s -> %s (%s)\n", r.Name, r.Target, card)
			}

			fmt.Println()
		}

		return nil
	},
}

// printPlan walks every type in the record representation and prints
// the routines a generation run would produce.
func printPlan(registry *model.Registry) error {
	directives := directive.IncludeAll(registry)

	if inspectDirectives != "" {
		var err error
		if directives, err = directive.LoadConfig(inspectDirectives); err != nil {
			return err
		}

		if err := directives.Validate(registry); err != nil {
			return err
		}
	}

	w := walk.NewWalker(registry,
		support.NewRecordFactory(), support.NewRecordFactory(),
		directives, nil, nil)

	for _, t := range registry.Types() {
		if _, err := w.Walk(t.Name); err != nil {
			return err
		}
	}

	heading := color.New(color.FgCyan, color.Bold)

	for _, b := range w.Blueprints() {
		heading.Printf("%s\n", emit.RoutineName(b.Triple))

		for _, instr := range b.Instructions {
			name := instr.Member
			if instr.As != "" {
				name = fmt.Sprintf("%s (as %s)", instr.Member, instr.As)
			}

			fmt.Printf("  %-10s %s\n", strings.ToLower(instr.Kind.String()), name)
		}
	}

	for _, note := range w.Diagnostics().Infos {
		color.Yellow("note: %s", note)
	}

	return nil
}
