package config

import (
	"fmt"
	"strings"
)

// parseButtons parses "label=spec;label=spec". The label is everything before
// the last '=', so labels may contain '=' while specs may not.
func parseButtons(s string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, entry := range strings.Split(s, ";") {
		if strings.TrimSpace(entry) == "" {
			return nil, fmt.Errorf("%w: empty entry in %q", ErrInvalidButtons, s)
		}
		i := strings.LastIndex(entry, "=")
		if i < 0 {
			return nil, fmt.Errorf("%w: %q: missing '='", ErrInvalidButtons, entry)
		}
		label := strings.TrimSpace(entry[:i])
		spec := strings.TrimSpace(entry[i+1:])
		if label == "" {
			return nil, fmt.Errorf("%w: %q: empty label", ErrInvalidButtons, entry)
		}
		if spec == "" {
			return nil, fmt.Errorf("%w: %q: empty spec", ErrInvalidButtons, entry)
		}
		out[label] = spec
	}
	return out, nil
}

// parseOptions parses "key=value;key=value". The key ends at the first '=',
// so values may contain '='.
func parseOptions(s string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, entry := range strings.Split(s, ";") {
		if strings.TrimSpace(entry) == "" {
			return nil, fmt.Errorf("%w: empty entry in %q", ErrInvalidOptions, s)
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q: missing '='", ErrInvalidOptions, entry)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w: %q: empty key", ErrInvalidOptions, entry)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
