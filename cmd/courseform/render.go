package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/html"
	"github.com/goliatone/go-courseform/pkg/renderers/tui"
)

var (
	renderName   string
	renderInput  string
	renderOutput string
)

// renderCmd draws a form without interaction, optionally prefilled from a
// JSON document shaped like the API's form object.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the form to a file or stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := render.NewRegistry()
		page, err := html.New()
		if err != nil {
			return err
		}
		text, err := tui.New(tui.WithOutputFormat(tui.OutputFormatPrettyText))
		if err != nil {
			return err
		}
		if err := registry.Register(page, text); err != nil {
			return err
		}

		renderer, err := registry.Get(renderName)
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, registry.List())
		}

		component, err := prefilled(renderInput)
		if err != nil {
			return err
		}

		options := render.RenderOptions{Labels: cfg.Form.Labels, Action: "/"}
		selector, err := render.NewThemeSelector()
		if err != nil {
			return err
		}
		if options.Theme, err = render.ResolveTheme(selector, cfg.Theme); err != nil {
			return err
		}

		out, err := renderer.Render(context.Background(), render.ViewOf(component), options)
		if err != nil {
			return err
		}
		if renderOutput == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(renderOutput, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", renderOutput)
		return nil
	},
}

func prefilled(path string) (*registration.Component, error) {
	component := registration.New(registration.WithLogger(logger))
	if path == "" {
		return component, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var form registration.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	store := component.Store()
	store.SetScalarField(registration.FieldName, form.Name)
	store.SetScalarField(registration.FieldEmail, form.Email)
	for i, row := range form.Rows {
		if i >= store.Len() {
			component.Editor().AppendRow()
		}
		for _, field := range registration.RowFields {
			store.SetRowField(i, field, row.Value(field))
		}
	}
	return component, nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderName, "renderer", "r", "html", "renderer to use (html, tui)")
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "JSON file with form values")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
	rootCmd.AddCommand(renderCmd)
}
