package state

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func encode(s State) ([]byte, error) {
	if s == nil {
		s = State{}
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

func decode(data []byte) (State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s == nil {
		s = State{}
	}
	for id, p := range s {
		if id == "" {
			delete(s, id)
			continue
		}
		// The map key is authoritative for identity.
		if p.PUUID != id {
			p.PUUID = id
			s[id] = p
		}
	}
	return s, nil
}
