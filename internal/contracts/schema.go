package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://fittingroom.example/"

var ErrSchemaViolation = errors.New("event violates contract schema")

var compiled = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	out := make(map[string]*jsonschema.Schema, len(All))
	for _, ev := range All {
		data, err := schemaFS.ReadFile(ev.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", ev.schemaFile, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", ev.schemaFile, err)
		}
		url := schemaBaseURL + ev.SchemaPath
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", ev.schemaFile, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", ev.schemaFile, err)
		}
		out[ev.Name] = sch
	}
	return out, nil
})

// Validate checks a serialized envelope against the schema of the event it
// names.
func Validate(body []byte) error {
	schemas, err := compiled()
	if err != nil {
		return err
	}

	var head struct {
		EventName string `json:"eventName"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	sch, ok := schemas[head.EventName]
	if !ok {
		return fmt.Errorf("%w: unknown event %q", ErrSchemaViolation, head.EventName)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaViolation, head.EventName, err)
	}
	return nil
}

// ValidateEnvelope marshals env and validates it.
func ValidateEnvelope(env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return Validate(body)
}
