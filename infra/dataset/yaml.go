package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/fleetpool/core/model"
)

// document is the mapping form of a YAML or JSON dataset. A bare list of
// journeys is accepted as well.
type document struct {
	Journeys []model.Journey `json:"journeys" yaml:"journeys"`
}

// ReadYAML decodes journeys from a YAML list or a mapping with a
// "journeys" key.
func ReadYAML(r io.Reader) ([]model.Journey, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	var out []model.Journey
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		out = doc.Journeys
	default:
		return nil, fmt.Errorf("%w: yaml root must be a list or mapping", model.ErrInvalidJourney)
	}
	if err := validateAll(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadJSON decodes journeys from a JSON array or an object with a
// "journeys" key.
func ReadJSON(r io.Reader) ([]model.Journey, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	var out []model.Journey
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		out = doc.Journeys
	}
	if err := validateAll(out); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteYAML writes journeys as a YAML mapping with a "journeys" key.
func WriteYAML(w io.Writer, journeys []model.Journey) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Journeys: journeys}); err != nil {
		return err
	}
	return enc.Close()
}
