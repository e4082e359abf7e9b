package domain

import (
	json "github.com/goccy/go-json"
)

// MainPort is the canonical default data port between nodes.
const MainPort = "main"

// Item is a single unit of data flowing along a connection. The payload
// always lives under the "json" key; this shape is a compatibility contract
// and must not change.
type Item struct {
	JSON interface{} `json:"json"`
}

// Envelope maps an input or output port name to an ordered sequence of runs,
// each run being an ordered sequence of items. A node consuming one upstream
// value reads envelope[MainPort][0][0].JSON.
type Envelope map[string][][]Item

// WrapPayload wraps an arbitrary payload as a single run containing a single
// item on the main port: {main: [[{json: payload}]]}. Cross-workflow call
// payloads and trigger data use this exact shape.
func WrapPayload(payload interface{}) Envelope {
	return Envelope{
		MainPort: {{Item{JSON: payload}}},
	}
}

// NewEnvelope builds an envelope holding the given items as one run on the
// main port.
func NewEnvelope(items ...Item) Envelope {
	return Envelope{MainPort: {items}}
}

// Runs returns the runs present on the named port, or nil.
func (e Envelope) Runs(port string) [][]Item {
	if e == nil {
		return nil
	}
	return e[port]
}

// FirstItem returns the payload of the first item of the first run on the
// main port, reporting whether one exists.
func (e Envelope) FirstItem() (interface{}, bool) {
	runs := e.Runs(MainPort)
	if len(runs) == 0 || len(runs[0]) == 0 {
		return nil, false
	}
	return runs[0][0].JSON, true
}

// Items flattens every run on the named port into a single item sequence,
// preserving run order.
func (e Envelope) Items(port string) []Item {
	var out []Item
	for _, run := range e.Runs(port) {
		out = append(out, run...)
	}
	return out
}

// IsEmpty reports whether the envelope carries no items on any port.
func (e Envelope) IsEmpty() bool {
	for _, runs := range e {
		for _, run := range runs {
			if len(run) > 0 {
				return false
			}
		}
	}
	return true
}

// Clone deep-copies the envelope through a JSON round trip so a downstream
// node can never mutate what an upstream node produced.
func (e Envelope) Clone() (Envelope, error) {
	if e == nil {
		return nil, nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	var out Envelope
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
