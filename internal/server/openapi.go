package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var apiDescription []byte

// LoadAPIDescription parses and validates the embedded OpenAPI document.
func LoadAPIDescription(ctx context.Context) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(apiDescription)
	if err != nil {
		return nil, fmt.Errorf("server: load api description: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("server: validate api description: %w", err)
	}
	return doc, nil
}

// documentedRoutes lists "METHOD /path" for every operation in doc.
func documentedRoutes(doc *openapi3.T) []string {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var routes []string
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			routes = append(routes, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(routes)
	return routes
}

// requestSchema returns the JSON request body schema of method+path.
func requestSchema(doc *openapi3.T, method, path string) (*openapi3.Schema, error) {
	if doc == nil || doc.Paths == nil {
		return nil, errors.New("server: api description not loaded")
	}
	item := doc.Paths.Value(path)
	if item == nil {
		return nil, fmt.Errorf("server: %s not described", path)
	}
	op := item.GetOperation(strings.ToUpper(method))
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("server: %s %s has no request body", method, path)
	}
	mt, ok := op.RequestBody.Value.Content["application/json"]
	if !ok || mt.Schema == nil || mt.Schema.Value == nil {
		return nil, fmt.Errorf("server: %s %s has no json schema", method, path)
	}
	return mt.Schema.Value, nil
}

// decodeValidated reads a JSON body, checks it against schema and then
// decodes it into target.
func decodeValidated(raw []byte, schema *openapi3.Schema, target any) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return badRequest(fmt.Errorf("invalid json: %w", err))
	}
	if schema != nil {
		if err := schema.VisitJSON(generic); err != nil {
			return badRequest(fmt.Errorf("invalid request: %w", err))
		}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return badRequest(fmt.Errorf("invalid request: %w", err))
	}
	return nil
}
