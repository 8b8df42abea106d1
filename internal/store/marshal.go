package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/solidarity/internal/ir"
)

// marshalBody converts a ledger record to canonical JSON TEXT for storage.
// Canonical bodies make the state digest a function of record content only.
func marshalBody(v any) (string, error) {
	val, err := ir.FromValue(v)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}
	data, err := ir.MarshalCanonical(val)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}
	return string(data), nil
}

// unmarshalBody decodes a stored body into out.
func unmarshalBody(data string, out any) error {
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("unmarshal body: %w", err)
	}
	return nil
}

// marshalObject converts IRObject to canonical JSON TEXT for storage.
func marshalObject(obj ir.IRObject) (string, error) {
	if obj == nil {
		obj = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal object: %w", err)
	}
	return string(data), nil
}

// unmarshalObject parses canonical JSON TEXT to IRObject.
// Integers beyond 2^53 survive because ir decodes through json.Number.
func unmarshalObject(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	return obj, nil
}

func marshalKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("marshal keys: %w", err)
	}
	return string(data), nil
}

func unmarshalKeys(data string) ([]string, error) {
	keys := []string{}
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	return keys, nil
}
