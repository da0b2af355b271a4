// Package tools holds the named operations the chat assistant may call. The
// registry is built and validated once at startup.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/pageza/dininghall/backend/internal/service"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrInvalidTool      = errors.New("invalid tool definition")
)

var toolName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var supportedTypes = []string{"string", "integer", "number", "boolean", "object", "array"}

// Schema is the JSON schema subset understood by the model's function calling.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Object is a shorthand for an object schema.
func Object(required []string, props map[string]*Schema) Schema {
	return Schema{Type: "object", Properties: props, Required: required}
}

func String(desc string, enum ...string) *Schema {
	return &Schema{Type: "string", Description: desc, Enum: enum}
}

// Handler runs a tool on raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
	handler     Handler
}

// NewTool builds a tool whose arguments decode into In.
func NewTool[In, Out any](name, description string, params Schema, fn func(context.Context, In) (Out, error)) Tool {
	var h Handler
	if fn != nil {
		h = func(ctx context.Context, args json.RawMessage) (any, error) {
			var in In
			dec := json.NewDecoder(bytes.NewReader(args))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&in); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
			}
			return fn(ctx, in)
		}
	}
	return Tool{Name: name, Description: description, Parameters: params, handler: h}
}

// Registry maps tool names to tools in registration order.
type Registry struct {
	tools map[string]Tool
	order []string
}

var _ service.ToolInvoker = (*Registry)(nil)

// NewRegistry validates every tool and fails on the first bad definition.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := r.tools[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidTool, t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

func validate(t Tool) error {
	switch {
	case !toolName.MatchString(t.Name):
		return fmt.Errorf("%w: name %q is not snake_case", ErrInvalidTool, t.Name)
	case t.Description == "":
		return fmt.Errorf("%w: %s has no description", ErrInvalidTool, t.Name)
	case t.handler == nil:
		return fmt.Errorf("%w: %s has no handler", ErrInvalidTool, t.Name)
	case t.Parameters.Type != "object":
		return fmt.Errorf("%w: %s parameters must be an object", ErrInvalidTool, t.Name)
	}
	for prop, s := range t.Parameters.Properties {
		if s == nil || !slices.Contains(supportedTypes, s.Type) {
			return fmt.Errorf("%w: %s.%s has unsupported type", ErrInvalidTool, t.Name, prop)
		}
	}
	for _, req := range t.Parameters.Required {
		if _, ok := t.Parameters.Properties[req]; !ok {
			return fmt.Errorf("%w: %s requires undeclared %q", ErrInvalidTool, t.Name, req)
		}
	}
	return nil
}

// Tools lists the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Declarations() []service.FunctionDeclaration {
	decls := make([]service.FunctionDeclaration, 0, len(r.order))
	for _, t := range r.Tools() {
		params := t.Parameters
		decls = append(decls, service.FunctionDeclaration{Name: t.Name, Description: t.Description, Parameters: &params})
	}
	return decls
}

// Invoke checks args against the tool's schema and runs it.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}
	if err := checkArgs(t, args); err != nil {
		return nil, err
	}
	return t.handler(ctx, args)
}

func checkArgs(t Tool, args json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return fmt.Errorf("%w: %s: arguments must be an object", ErrInvalidArguments, t.Name)
	}
	for _, req := range t.Parameters.Required {
		v, ok := fields[req]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%w: %s: missing %q", ErrInvalidArguments, t.Name, req)
		}
	}
	for key, raw := range fields {
		s, ok := t.Parameters.Properties[key]
		if !ok {
			return fmt.Errorf("%w: %s: unexpected %q", ErrInvalidArguments, t.Name, key)
		}
		if string(raw) == "null" {
			continue
		}
		if !matchesType(s, raw) {
			return fmt.Errorf("%w: %s: %q must be %s", ErrInvalidArguments, t.Name, key, s.Type)
		}
	}
	return nil
}

func matchesType(s *Schema, raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch s.Type {
	case "string":
		str, ok := v.(string)
		return ok && (len(s.Enum) == 0 || slices.Contains(s.Enum, str))
	case "integer":
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	case "number":
		_, ok := v.(float64)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	}
	return false
}
