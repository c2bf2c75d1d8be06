package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/tui"
)

var tuiOutput string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Fill in the registration form in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := tui.ParseOutputFormat(tuiOutput)
		if err != nil {
			return err
		}

		renderer, err := tui.New(
			tui.WithOutputFormat(format),
			tui.WithOutput(cmd.ErrOrStderr()),
			tui.WithLabels(cfg.Form.Labels),
			tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
			tui.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		component := registration.New(
			registration.WithNotifier(renderer.Notifier()),
			registration.WithNoticeMessage(cfg.Form.Notice),
			registration.WithLogger(logger),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := renderer.Run(ctx, component); err != nil {
			if errors.Is(err, tui.ErrQuit) || errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return nil
			}
			return err
		}

		out, err := renderer.Render(ctx, render.ViewOf(component), render.RenderOptions{Labels: cfg.Form.Labels})
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiOutput, "output", "o", string(tui.OutputFormatPrettyText), "result format: pretty or json")
	rootCmd.AddCommand(tuiCmd)
}
