// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/retroboard/models"
)

// Encode renders a registry snapshot as indented JSON, two spaces per
// level, matching the rooms.json files written by earlier servers.
func Encode(snap models.RegistrySnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a registry snapshot. Structural checks on boards and
// ledgers happen when the snapshot is restored.
func Decode(data []byte) (models.RegistrySnapshot, error) {
	var snap models.RegistrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("failed to decode snapshot: document is null")
	}
	return snap, nil
}
