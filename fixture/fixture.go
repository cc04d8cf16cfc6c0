// Package fixture reads scenario files that seed a handler instance and describe the
// request to send it.
//
// Fixtures are JSON or YAML:
//
//	storage:
//	  foo: bar
//	counters:
//	  visits: 3
//	secrets:
//	  api_key: s3cr3t
//	request:
//	  getValue: true
//	  key: foo
//	response:
//	  status: 200
//	expect:
//	  status: 200
//	  body: bar
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

var (
	// ErrRead indicates the fixture file could not be read.
	ErrRead = errors.New("unable to read fixture")

	// ErrParse indicates the fixture is neither valid JSON nor valid YAML.
	ErrParse = errors.New("unable to parse fixture")
)

// Fixture seeds mock state and describes one invocation.
type Fixture struct {
	Storage  map[string]any     `json:"storage"`
	Counters map[string]float64 `json:"counters"`
	Secrets  map[string]string  `json:"secrets"`
	Request  map[string]any     `json:"request"`
	Response Response           `json:"response"`
	Expect   *Expect            `json:"expect,omitempty"`
}

// Response is the initial state of the response object handed to the handler.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
}

// Expect describes the outcome a run should produce. Unset fields are not checked.
type Expect struct {
	Status *int `json:"status,omitempty"`
	Body   any  `json:"body,omitempty"`
}

// Load reads and parses the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	return Parse(data)
}

// Parse decodes a JSON or YAML fixture.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := parseJSONOrYAML(data, &f); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	return &f, nil
}

// parseJSONOrYAML is used in the same way as json.Unmarshal, but if the data is YAML
// it is converted to JSON first.
func parseJSONOrYAML(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	normalized, err := normalize(raw)
	if err != nil {
		return err
	}
	b, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}

func normalize(data any) (any, error) {
	switch data := data.(type) {
	case []any:
		out := make([]any, 0, len(data))
		for _, v := range data {
			v1, err := normalize(v)
			if err != nil {
				return nil, err
			}
			out = append(out, v1)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(data))
		for k, v := range data {
			v1, err := normalize(v)
			if err != nil {
				return nil, err
			}
			out[k] = v1
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(data))
		for k, v := range data {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("fixture contained a map key of type %T; only string keys are allowed", k)
			}
			v1, err := normalize(v)
			if err != nil {
				return nil, err
			}
			out[key] = v1
		}
		return out, nil
	default:
		return data, nil
	}
}
