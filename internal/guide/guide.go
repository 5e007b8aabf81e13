package guide

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Button is one labeled entry of the orientador screen, ordered by position.
type Button struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Table is the opaque spreadsheet document attached to a button. The server
// validates that the payload is well-formed JSON and otherwise stores it
// verbatim.
type Table struct {
	ButtonID  int64           `json:"button_id"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var (
	ErrButtonNotFound = errors.New("guide button not found")
	ErrTableNotFound  = errors.New("guide table not found")
)

type ButtonDTO struct {
	Label    string `json:"label"`
	Position *int   `json:"position,omitempty"`
}

func (dto *ButtonDTO) Validate() error {
	dto.Label = strings.TrimSpace(dto.Label)
	if dto.Label == "" {
		return errors.New("label is required")
	}
	if len(dto.Label) > 120 {
		return errors.New("label must be at most 120 characters")
	}
	return nil
}

type ReorderDTO struct {
	ButtonIDs []int64 `json:"button_ids"`
}

func (dto ReorderDTO) Validate() error {
	if len(dto.ButtonIDs) == 0 {
		return errors.New("button_ids is required")
	}
	seen := make(map[int64]struct{}, len(dto.ButtonIDs))
	for _, id := range dto.ButtonIDs {
		if _, dup := seen[id]; dup {
			return errors.New("button_ids must not repeat")
		}
		seen[id] = struct{}{}
	}
	return nil
}

type TableDTO struct {
	Payload json.RawMessage `json:"payload"`
}

func (dto TableDTO) Validate() error {
	if len(dto.Payload) == 0 {
		return errors.New("payload is required")
	}
	if !json.Valid(dto.Payload) {
		return errors.New("payload must be valid JSON")
	}
	return nil
}
