package storage

import (
	"encoding/json"
	"fmt"
)

// EncodeState marshals the JSON columns of rec.
//
// Postcondition: events encodes an empty list as [] rather than null.
func EncodeState(rec Record) (narrative, events []byte, err error) {
	narrative, err = json.Marshal(rec.Narrative)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding narrative: %w", err)
	}
	completed := rec.CompletedEvents
	if completed == nil {
		completed = []string{}
	}
	events, err = json.Marshal(completed)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding completed events: %w", err)
	}
	return narrative, events, nil
}

// DecodeState unmarshals the JSON columns into rec.
func DecodeState(rec *Record, narrative, events []byte) error {
	if err := json.Unmarshal(narrative, &rec.Narrative); err != nil {
		return fmt.Errorf("decoding narrative: %w", err)
	}
	if err := json.Unmarshal(events, &rec.CompletedEvents); err != nil {
		return fmt.Errorf("decoding completed events: %w", err)
	}
	return nil
}
