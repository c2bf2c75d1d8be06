package tui

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/registration"
)

type menuAction int

const (
	actionEditName menuAction = iota
	actionEditEmail
	actionEditRow
	actionAddRow
	actionSubmit
	actionQuit
)

const (
	menuPrompt     = "¿Qué deseas hacer?"
	rowPrompt      = "Materia"
	fieldPrompt    = "Campo"
	quitPrompt     = "¿Salir sin enviar el formulario?"
	untitledCourse = "(sin nombre)"
)

// Notifier prints rejection notices through the prompt driver. Pass it to
// registration.New so Submit reports incomplete forms in the terminal.
func (r *Renderer) Notifier() registration.Notifier {
	return registration.NotifierFunc(func(ctx context.Context, notice registration.Notice) error {
		return r.driver.Info(ctx, r.theme.ErrorPrefix+notice.Message)
	})
}

// Run prompts until the user submits a complete form, quits, or aborts.
// A successful submit returns the summarized outcome; quitting returns
// ErrQuit and Ctrl+C returns ErrAborted. Rejected submits keep the loop
// going with the form unchanged.
func (r *Renderer) Run(ctx context.Context, component *registration.Component) (registration.Outcome, error) {
	if component == nil {
		return registration.Outcome{}, fmt.Errorf("tui: component is nil")
	}

	for {
		if err := ctx.Err(); err != nil {
			return registration.Outcome{}, err
		}

		choice, err := r.driver.Select(ctx, SelectConfig{
			Message: r.theme.PromptPrefix + menuPrompt,
			Options: r.menuOptions(),
		})
		if err != nil {
			return registration.Outcome{}, err
		}

		switch menuAction(choice) {
		case actionEditName:
			err = r.editScalar(ctx, component, registration.FieldName, r.labels.Name, component.Snapshot().Name)
		case actionEditEmail:
			err = r.editScalar(ctx, component, registration.FieldEmail, r.labels.Email, component.Snapshot().Email)
		case actionEditRow:
			err = r.editRow(ctx, component)
		case actionAddRow:
			component.Editor().AppendRow()
			r.logger.Debug("row appended", zap.Int("rows", component.Store().Len()))
		case actionSubmit:
			outcome, submitErr := component.Submit(ctx)
			if submitErr != nil {
				return outcome, submitErr
			}
			if outcome.Status == registration.StatusSummarized {
				return outcome, nil
			}
		case actionQuit:
			leave, confirmErr := r.driver.Confirm(ctx, ConfirmConfig{
				Message: r.theme.PromptPrefix + quitPrompt,
			})
			if confirmErr != nil {
				return registration.Outcome{}, confirmErr
			}
			if leave {
				return registration.Outcome{Status: component.Status(), Summary: component.Summary()}, ErrQuit
			}
		}
		if err != nil {
			return registration.Outcome{}, err
		}
	}
}

func (r *Renderer) menuOptions() []string {
	return []string{
		"Editar " + strings.ToLower(strings.TrimSuffix(plainLabel(r.labels.Name), ":")),
		"Editar " + strings.ToLower(strings.TrimSuffix(plainLabel(r.labels.Email), ":")),
		"Editar " + strings.ToLower(strings.TrimSuffix(plainLabel(r.labels.CourseName), ":")),
		plainLabel(r.labels.AddRow),
		plainLabel(r.labels.Submit),
		"Salir",
	}
}

func (r *Renderer) editScalar(ctx context.Context, component *registration.Component, field registration.ScalarField, label, current string) error {
	value, err := r.driver.Input(ctx, InputConfig{
		Message: r.theme.PromptPrefix + plainLabel(label),
		Default: current,
	})
	if err != nil {
		return err
	}
	component.Store().SetScalarField(field, value)
	return nil
}

func (r *Renderer) editRow(ctx context.Context, component *registration.Component) error {
	form := component.Snapshot()

	rowOptions := make([]string, 0, form.Len())
	for i, row := range form.Rows {
		title := row.CourseName
		if strings.TrimSpace(title) == "" {
			title = untitledCourse
		}
		rowOptions = append(rowOptions, fmt.Sprintf("%d. %s", i+1, title))
	}
	rowIdx := 0
	if len(rowOptions) > 1 {
		var err error
		rowIdx, err = r.driver.Select(ctx, SelectConfig{
			Message: r.theme.PromptPrefix + rowPrompt,
			Options: rowOptions,
		})
		if err != nil {
			return err
		}
	}
	if rowIdx < 0 || rowIdx >= form.Len() {
		return nil
	}

	fieldLabels := []string{
		plainLabel(r.labels.CourseName),
		plainLabel(r.labels.Date),
		plainLabel(r.labels.Credits),
		plainLabel(r.labels.Instructor),
	}
	fieldIdx, err := r.driver.Select(ctx, SelectConfig{
		Message: r.theme.PromptPrefix + fieldPrompt,
		Options: fieldLabels,
	})
	if err != nil {
		return err
	}
	if fieldIdx < 0 || fieldIdx >= len(registration.RowFields) {
		return nil
	}
	field := registration.RowFields[fieldIdx]

	value, err := r.driver.Input(ctx, InputConfig{
		Message: r.theme.PromptPrefix + fieldLabels[fieldIdx],
		Default: form.Rows[rowIdx].Value(field),
	})
	if err != nil {
		return err
	}
	component.Store().SetRowField(rowIdx, field, value)
	return nil
}
