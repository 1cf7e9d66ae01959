// Package fingerprint computes deterministic content checksums over the
// watched fields of a record. Two extractions of unchanged content
// always produce the same checksum regardless of field iteration order,
// so checksum inequality is the change signal of the merge engine.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Compute returns the hex-encoded SHA-256 checksum over the watched
// fields present in record. Fields are serialized as compact JSON with
// keys in ascending order; absent fields are skipped rather than
// serialized as null.
func Compute(record map[string]any, watched []string) (string, error) {
	names := make([]string, 0, len(watched))
	for _, name := range watched {
		if _, ok := record[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	serialized, err := serialize(record, names)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeAll returns the checksum over every field of record.
func ComputeAll(record map[string]any) (string, error) {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	return Compute(record, names)
}

// serialize writes the selected fields as a compact JSON object with the
// given key order. json.Marshal on the map would sort keys too, but the
// explicit loop keeps the canonical form independent of map semantics.
func serialize(record map[string]any, names []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: marshal key %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(record[name])
		if err != nil {
			return nil, fmt.Errorf("fingerprint: marshal field %q: %w", name, err)
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
