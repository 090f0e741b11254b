package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes hand-typed JSON payloads: unquoted keys, single quotes,
// trailing commas, comments and unclosed objects.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON converts Hjson (comments, unquoted keys, optional commas) into
// standard JSON.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("hjson parse error: %w", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal error: %w", err)
	}
	return string(jsonBytes), nil
}

// ParseHJSONToStruct decodes Hjson into a struct using its json tags.
//
// hjson-go only honours json tags when decoding through an intermediate
// JSON document, so the round trip is deliberate.
func ParseHJSONToStruct(hjsonData string, schema interface{}) error {
	jsonData, err := ParseHJSON(hjsonData)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonData), schema); err != nil {
		return fmt.Errorf("hjson unmarshal error: %w", err)
	}
	return nil
}

// SmartParse tries strict JSON, then repaired JSON, then Hjson, and returns
// the JSON text that decoded successfully.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), schema); err == nil {
			return converted, nil
		}
	}

	return "", fmt.Errorf("smart parse failed: input is neither JSON, repairable JSON nor Hjson")
}
