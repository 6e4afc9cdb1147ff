// Package payload defines the tagged result contract between the agent and
// the chat UI, and the normalizer that shapes raw executor output into it.
//
// The wire field names (ok, sql, rows, rowCount, scalar, error) and their
// presence rules are consumed by the rendering layer and must not change.
package payload

import (
	"encoding/json"
	"fmt"

	"github.com/llamasql/llamasql/internal/store"
)

// Payload is the single result shape produced for every user turn: either a
// Success (OK true, rows and rowCount, optional scalar) or a Failure (OK
// false, error text, optional attempted SQL).
type Payload struct {
	OK       bool
	SQL      string
	Rows     []store.Row
	RowCount int

	// Scalar is only meaningful when HasScalar is set; a present nil scalar
	// (NULL query result) serializes as "scalar": null, while an unset one
	// omits the field entirely.
	Scalar    any
	HasScalar bool

	Error string
}

// Failure builds a failure payload. Pass sqlText "" when no SQL was
// identified or attempted; the field is then omitted from the wire form.
func Failure(sqlText, errText string) Payload {
	return Payload{OK: false, SQL: sqlText, Error: errText}
}

// Normalize converts the executor's raw output into a Payload. It never
// fails: error-shaped input becomes a Failure with best-effort message
// extraction, missing rows coerce to an empty sequence, and any internal
// panic is recovered into a Failure.
func Normalize(sqlText string, raw store.Raw) (p Payload) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("%v", r)
			if msg == "" {
				msg = "Unknown error"
			}
			p = Failure(sqlText, msg)
		}
	}()

	if raw.Err != "" {
		return Failure(sqlText, errorMessage(raw.Err))
	}

	rows := raw.Rows
	if rows == nil {
		rows = []store.Row{}
	}

	p = Payload{OK: true, SQL: sqlText, Rows: rows, RowCount: len(rows)}

	if len(rows) == 1 && rows[0] != nil && rows[0].Len() == 1 {
		switch v := rows[0].Oldest().Value; v.(type) {
		case nil, string, int, int64, float64:
			p.Scalar = v
			p.HasScalar = true
		}
	}

	return p
}

// errorMessage unwraps a JSON-encoded error with a string "message" field;
// anything else is returned verbatim.
func errorMessage(raw string) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return raw
	}
	if msg, ok := obj["message"].(string); ok {
		return msg
	}
	return raw
}

// Encode serializes the payload as its JSON string wire form.
func (p Payload) Encode() string {
	b, err := json.Marshal(p)
	if err != nil {
		// Payload marshalling only fails for values json cannot represent;
		// degrade to a minimal failure rather than propagate.
		return `{"ok":false,"error":"failed to encode result payload"}`
	}
	return string(b)
}

type successWire struct {
	OK       bool             `json:"ok"`
	SQL      string           `json:"sql"`
	Rows     []store.Row      `json:"rows"`
	RowCount int              `json:"rowCount"`
	Scalar   *json.RawMessage `json:"scalar,omitempty"`
}

type failureWire struct {
	OK    bool   `json:"ok"`
	SQL   string `json:"sql,omitempty"`
	Error string `json:"error"`
}

// MarshalJSON emits the tagged wire form. A pointer carries the scalar so
// "present but null" survives omitempty.
func (p Payload) MarshalJSON() ([]byte, error) {
	if !p.OK {
		return json.Marshal(failureWire{OK: false, SQL: p.SQL, Error: p.Error})
	}

	w := successWire{OK: true, SQL: p.SQL, Rows: p.Rows, RowCount: p.RowCount}
	if w.Rows == nil {
		w.Rows = []store.Row{}
	}
	if p.HasScalar {
		b, err := json.Marshal(p.Scalar)
		if err != nil {
			return nil, fmt.Errorf("marshalling scalar: %w", err)
		}
		raw := json.RawMessage(b)
		w.Scalar = &raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses either wire shape back into a Payload. Used by
// consumers of the turn endpoint (CLI rendering, tests).
func (p *Payload) UnmarshalJSON(data []byte) error {
	var probe struct {
		OK       bool        `json:"ok"`
		SQL      string      `json:"sql"`
		Rows     []store.Row `json:"rows"`
		RowCount int         `json:"rowCount"`
		Error    string      `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	*p = Payload{
		OK:       probe.OK,
		SQL:      probe.SQL,
		Rows:     probe.Rows,
		RowCount: probe.RowCount,
		Error:    probe.Error,
	}

	// Key presence, not value, distinguishes an absent scalar from a NULL one.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if rawScalar, ok := keys["scalar"]; ok {
		var v any
		if err := json.Unmarshal(rawScalar, &v); err != nil {
			return err
		}
		p.Scalar = v
		p.HasScalar = true
	}
	return nil
}
