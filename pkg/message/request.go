package message

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/entrhq/tabcloner/pkg/types"
)

//go:embed request.schema.json
var requestSchemaJSON []byte

var (
	requestSchema     *gojsonschema.Schema
	requestSchemaErr  error
	requestSchemaOnce sync.Once
)

func loadRequestSchema() (*gojsonschema.Schema, error) {
	requestSchemaOnce.Do(func() {
		requestSchema, requestSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(requestSchemaJSON))
	})
	return requestSchema, requestSchemaErr
}

// Request is a parsed request.
type Request struct {
	Action Action
}

// wireRequest mirrors the JSON shape sent by the extension.
type wireRequest struct {
	Action string          `json:"action"`
	Data   *types.Snapshot `json:"data"`
}

// ParseError describes a payload that is not a valid request.
type ParseError struct {
	Details string
}

func (e *ParseError) Error() string {
	return "invalid request: " + e.Details
}

// Parse decodes and validates a request payload.
func Parse(payload []byte) (*Request, error) {
	if !json.Valid(payload) {
		return nil, &ParseError{Details: "payload is not valid JSON"}
	}

	schema, err := loadRequestSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, &ParseError{Details: err.Error()}
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &ParseError{Details: strings.Join(details, "; ")}
	}

	var wire wireRequest
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, &ParseError{Details: err.Error()}
	}

	return &Request{Action: actionFor(wire)}, nil
}

func actionFor(wire wireRequest) Action {
	switch wire.Action {
	case ActionCloneToSidekick:
		return CloneToSidekick{Snapshot: wire.Data}
	default:
		return Unknown{Action: wire.Action}
	}
}
