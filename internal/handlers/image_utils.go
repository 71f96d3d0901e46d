package handlers

import (
	"encoding/json"
	"strings"
)

// imageRef is the object form some clients send instead of a plain URL.
type imageRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// normalizeImages cleans the image list of an advertisement request. Mobile
// clients send URLs as plain strings, JSON-quoted strings, stringified
// arrays or {name, path} objects; junk values are dropped.
func normalizeImages(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}

	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		switch {
		case raw == "", raw == "null", raw == "undefined", raw == "[object Object]":
		case strings.HasPrefix(raw, "["):
			var arr []json.RawMessage
			if err := json.Unmarshal([]byte(raw), &arr); err != nil {
				continue
			}
			for _, item := range arr {
				add(imagePath(item))
			}
		case strings.HasPrefix(raw, "{"), strings.HasPrefix(raw, `"`):
			add(imagePath(json.RawMessage(raw)))
		default:
			add(raw)
		}
	}
	return result
}

func imagePath(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var ref imageRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return ""
	}
	if ref.Path != "" {
		return ref.Path
	}
	return ref.Name
}
