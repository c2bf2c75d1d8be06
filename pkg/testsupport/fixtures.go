// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/goliatone/go-courseform/pkg/registration"
)

// MustLoadForm loads a JSON fixture shaped like the API form object.
func MustLoadForm(t *testing.T, path string) registration.Form {
	t.Helper()

	form, err := LoadForm(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadForm reads a JSON fixture into a Form, returning an error for callers
// managing setup outside of *testing.T.
func LoadForm(path string) (registration.Form, error) {
	if path == "" {
		return registration.Form{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return registration.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	var out registration.Form
	if err := json.Unmarshal(data, &out); err != nil {
		return registration.Form{}, fmt.Errorf("testsupport: unmarshal form: %w", err)
	}
	return out, nil
}

// CompleteForm returns a form that passes validation.
func CompleteForm() registration.Form {
	return registration.Form{
		Name:  "Ana",
		Email: "a@x.com",
		Rows: []registration.CourseRow{
			{CourseName: "Cálculo", Date: "2024-01-10", Credits: "4", Instructor: "Dr. Pérez"},
		},
	}
}

// Fill writes form into component through its store and row editor,
// appending rows as needed. Rows beyond len(form.Rows) are left untouched.
func Fill(component *registration.Component, form registration.Form) {
	store := component.Store()
	store.SetScalarField(registration.FieldName, form.Name)
	store.SetScalarField(registration.FieldEmail, form.Email)
	for i, row := range form.Rows {
		for i >= store.Len() {
			component.Editor().AppendRow()
		}
		for _, field := range registration.RowFields {
			store.SetRowField(i, field, row.Value(field))
		}
	}
}

// FilledComponent builds a component holding form.
func FilledComponent(form registration.Form, options ...registration.Option) *registration.Component {
	component := registration.New(options...)
	Fill(component, form)
	return component
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
