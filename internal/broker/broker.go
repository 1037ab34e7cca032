// Package broker defines the byte-carrying transport collaborators outside
// the monitor/anchor core: a Source the monitor receives trace messages
// from, and a Sink the monitor (and anchor) send JSON messages to.
package broker

import (
	"context"
	"encoding/json"
)

// Source yields raw message payloads strictly in receive order.
type Source interface {
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Sink delivers raw message payloads to a downstream collaborator.
type Sink interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// TraceMessage is the inbound wire shape for the monitor's input. TS is a
// pointer so a missing "ts" field (nil) is distinguishable from an
// explicit "ts":0, and Tags is raw JSON so one non-numeric tag value can
// be ignored without dropping the whole message — spec.md §6 requires
// both: "unknown tag names are ignored; non-numeric values are ignored; a
// missing ts or tags drops the message."
type TraceMessage struct {
	TS   *int64                     `json:"ts"`
	Tags map[string]json.RawMessage `json:"tags"`
}

// NumericTags decodes only the tag values that parse as finite JSON
// numbers, silently ignoring the rest (non-numeric values, per spec.md
// §6). Returns ok=false if TS or Tags is absent, in which case the
// message must be dropped outright.
func (m TraceMessage) NumericTags() (ts int64, tags map[string]float64, ok bool) {
	if m.TS == nil || m.Tags == nil {
		return 0, nil, false
	}
	tags = make(map[string]float64, len(m.Tags))
	for name, raw := range m.Tags {
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		tags[name] = v
	}
	return *m.TS, tags, true
}

// EvidenceMessage is the outbound wire shape: the monitor's evidence
// output and the anchor's ingest input.
type EvidenceMessage struct {
	PropertyID string `json:"property_id"`
	StartTS    int64  `json:"start_ts"`
	EndTS      int64  `json:"end_ts"`
	TraceHash  string `json:"trace_hash"`
	CertHash   string `json:"cert_hash"`
	Verdict    string `json:"verdict"`
}
