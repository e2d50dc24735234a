// Package asyncapi validates CloudEvent payloads against AsyncAPI component schemas.
package asyncapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// eventTypeKey binds a component schema to the CloudEvent type it describes.
const eventTypeKey = "x-event-type"

// EventValidator validates event payloads by CloudEvent type.
type EventValidator struct {
	schemas map[string]*jsonschema.Schema
}

type document struct {
	AsyncAPI   string `yaml:"asyncapi"`
	Components struct {
		Schemas map[string]map[string]interface{} `yaml:"schemas"`
	} `yaml:"components"`
}

// NewEventValidatorFromBytes compiles every component schema carrying x-event-type.
// Schemas must be self-contained; cross-schema $refs are not resolved.
func NewEventValidatorFromBytes(spec []byte) (*EventValidator, error) {
	var doc document
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse AsyncAPI spec: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	schemas := make(map[string]*jsonschema.Schema)

	for name, raw := range doc.Components.Schemas {
		eventType, _ := raw[eventTypeKey].(string)
		if eventType == "" {
			continue
		}

		parsed, err := toJSONValue(raw)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}

		uri := "asyncapi://schemas/" + name
		if err := compiler.AddResource(uri, parsed); err != nil {
			return nil, fmt.Errorf("schema %s: failed to add resource: %w", name, err)
		}
		compiled, err := compiler.Compile(uri)
		if err != nil {
			return nil, fmt.Errorf("schema %s: failed to compile: %w", name, err)
		}
		schemas[eventType] = compiled
	}

	return &EventValidator{schemas: schemas}, nil
}

// ValidatePayload validates data, any JSON-marshalable value, against the schema for eventType.
func (v *EventValidator) ValidatePayload(eventType string, data interface{}) error {
	schema, ok := v.schemas[eventType]
	if !ok {
		return fmt.Errorf("no schema found for event type: %s", eventType)
	}
	if data == nil {
		return fmt.Errorf("event data is required")
	}

	value, err := toJSONValue(data)
	if err != nil {
		return fmt.Errorf("failed to convert event data: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("event data validation failed for type %s: %w", eventType, err)
	}
	return nil
}

// SupportedEventTypes lists event types with a registered schema, sorted.
func (v *EventValidator) SupportedEventTypes() []string {
	types := make([]string, 0, len(v.schemas))
	for t := range v.schemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// toJSONValue round-trips v through encoding/json into the value model jsonschema expects.
func toJSONValue(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}
