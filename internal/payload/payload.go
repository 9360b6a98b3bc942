// Package payload defines the decoded weight-payload envelope and the sealed
// file codec that delivers it. The envelope is the one shape the scoring
// engine consumes; weight tables and mapping blocks stay in their authored
// raw form here, normalization happens engine-side.
package payload

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Envelope is the delivered payload: weight tables keyed by mode, plus the
// optional function/type mapping blocks.
type Envelope struct {
	Version string         `json:"version"`
	TS      int64          `json:"ts"`
	Weights map[string]any `json:"weights"`
	Mapping Mapping        `json:"mapping"`
}

// Mapping holds the raw authored mapping blocks. Both are optional; the
// engine substitutes built-in function metadata and falls back to heuristic
// type resolution when they are absent.
type Mapping struct {
	Funcs any `json:"funcs,omitempty"`
	Types any `json:"types,omitempty"`
}

// Modes lists the envelope's mode keys, sorted.
func (e *Envelope) Modes() []string {
	modes := make([]string, 0, len(e.Weights))
	for m := range e.Weights {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Parse decodes a plain JSON envelope.
func Parse(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	if env.Weights == nil {
		return nil, fmt.Errorf("payload: no weights block")
	}
	return &env, nil
}

// Encode serializes the envelope as JSON, the form that gets sealed.
func (e *Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return data, nil
}
