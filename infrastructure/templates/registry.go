// Package templates is the registry of named graph generators.
package templates

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"grapheditor/application/ports"
	"grapheditor/domain/document"
	pkgerrors "grapheditor/pkg/errors"
	"grapheditor/pkg/utils"
)

// Template is one registered generator
type Template struct {
	Info     ports.TemplateInfo
	Generate func(params map[string]interface{}) (document.Document, string, error)
}

// Registry implements ports.TemplateRegistry
type Registry struct {
	templates map[string]Template
}

// NewRegistry creates a registry holding the built-in generators
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template)}
	for _, t := range builtins() {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a generator
func (r *Registry) Register(t Template) {
	r.templates[t.Info.Name] = t
}

// List describes every generator, sorted by name
func (r *Registry) List() []ports.TemplateInfo {
	out := make([]ports.TemplateInfo, 0, len(r.templates))
	for _, name := range slices.Sorted(maps.Keys(r.templates)) {
		out = append(out, r.templates[name].Info)
	}
	return out
}

// Generate runs a generator. Parameters missing from params take their
// default; a missing required parameter is a validation error.
func (r *Registry) Generate(name string, params map[string]interface{}) (document.RawGraph, error) {
	t, ok := r.templates[name]
	if !ok {
		return document.RawGraph{}, pkgerrors.NewNotFoundError(fmt.Sprintf("graph template %q", name))
	}

	resolved, err := resolveParams(t.Info.Params, params)
	if err != nil {
		return document.RawGraph{}, err
	}

	doc, graphName, err := t.Generate(resolved)
	if err != nil {
		return document.RawGraph{}, err
	}

	raw, err := doc.ToRaw()
	if err != nil {
		return document.RawGraph{}, err
	}
	raw.Name = graphName
	return raw, nil
}

func resolveParams(specs []ports.TemplateParam, given map[string]interface{}) (map[string]interface{}, error) {
	resolved := make(map[string]interface{}, len(specs))
	for _, spec := range specs {
		if v, ok := given[spec.Name]; ok && v != nil {
			resolved[spec.Name] = v
			continue
		}
		if spec.Required {
			return nil, pkgerrors.NewValidationErrorf("missing required parameter '%s'", spec.Name).
				WithDetail("parameter", spec.Name)
		}
		if spec.Default != nil {
			resolved[spec.Name] = spec.Default
		}
	}
	return resolved, nil
}

// bind decodes resolved parameters into a typed struct and validates it
func bind(params map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return pkgerrors.NewValidationError("template parameters cannot be encoded").WithCause(err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return pkgerrors.NewValidationError("template parameters have the wrong type").WithCause(err)
	}
	return utils.ValidateStruct(target)
}

func merge(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
