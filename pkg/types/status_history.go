package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/vendorhub/ledger-backend/pkg/enums"
)

// StatusChange is one append-only audit record of a transaction status change.
type StatusChange struct {
	Status  enums.TransactionStatus `json:"status"`
	Note    string                  `json:"note,omitempty"`
	ActorID string                  `json:"actor_id,omitempty"`
	At      time.Time               `json:"at"`
}

// StatusHistory stores the ordered audit trail inside a JSONB column.
// It is only ever appended to.
type StatusHistory []StatusChange

// Append returns a new history with the change added. The receiver is not
// mutated so shared slices stay intact.
func (h StatusHistory) Append(change StatusChange) StatusHistory {
	next := make(StatusHistory, 0, len(h)+1)
	next = append(next, h...)
	return append(next, change)
}

// Value serializes the history to JSON.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(StatusHistory{})
	}
	return json.Marshal(h)
}

// Scan decodes JSONB into the history slice.
func (h *StatusHistory) Scan(value interface{}) error {
	if value == nil {
		*h = StatusHistory{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, h)
}

// JSONMap stores an arbitrary JSON object inside a JSONB column.
type JSONMap map[string]any

// Value serializes the map to JSON.
func (j *JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan decodes JSONB into the map.
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded JSONMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}
