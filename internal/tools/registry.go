package tools

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/voyagent/voyagent/internal/service/reservation"
	"github.com/voyagent/voyagent/internal/service/trips"
	"github.com/voyagent/voyagent/internal/weather"
	"go.uber.org/zap"
)

// Session carries the authenticated identity into tool handlers.
type Session struct {
	UserID string
}

type Handler func(ctx context.Context, sess Session, args json.RawMessage) ToolResult

// Tool pairs a declared schema with its handler. Name, parameter shape and
// description are the contract the language model plans against; renaming a
// field or changing required/optional is a breaking interface change.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

type Registry struct {
	tools map[string]Tool
	log   *zap.Logger
}

// NewRegistry assembles the fixed tool set.
func NewRegistry(tripSvc trips.TripUseCase, resSvc reservation.ReservationUseCase, weatherClient *weather.Client, log *zap.Logger) *Registry {
	r := &Registry{tools: make(map[string]Tool), log: log}

	r.add(flightTools(tripSvc)...)
	r.add(airportTools(tripSvc)...)
	r.add(airlineTools(tripSvc)...)
	r.add(reservationTools(resSvc)...)
	r.add(paymentTools(resSvc)...)
	r.add(weatherTools(weatherClient)...)

	return r
}

func (r *Registry) add(tools ...Tool) {
	for _, t := range tools {
		r.tools[t.Name] = t
	}
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the tools in stable name order for the model's definitions.
func (r *Registry) All() []Tool {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Dispatch runs the named tool. An unknown name or a panicking handler
// becomes a structured Error result, never a raised error.
func (r *Registry) Dispatch(ctx context.Context, sess Session, name string, args json.RawMessage) (result ToolResult) {
	tool, ok := r.tools[name]
	if !ok {
		return Error("unknown_tool", "The requested tool does not exist.")
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("tool handler panicked", zap.String("tool", name), zap.Any("panic", rec))
			result = Error("internal_error", "The tool failed unexpectedly.")
		}
	}()

	return tool.Handler(ctx, sess, args)
}

// Schema helpers shared by the tool files.

func object(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func num(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func strArray(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// endpointSchema mirrors the departure/arrival shape used by reservation
// and boarding-pass tools.
func endpointSchema(kind string) map[string]any {
	return object(map[string]any{
		"cityName":    str("Name of the " + kind + " city"),
		"airportCode": str("Code of the " + kind + " airport"),
		"airportName": str("Name of the " + kind + " airport"),
		"timestamp":   str("ISO 8601 date of " + kind),
		"terminal":    str(kind + " terminal"),
		"gate":        str(kind + " gate"),
	}, "cityName", "airportCode", "timestamp")
}
