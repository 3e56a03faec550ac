package zoomrooms

import (
	"sort"
	"strings"
)

// PropertyMap holds key/value pairs scanned out of a status dump.
type PropertyMap map[string]string

// resultMarkers lead every structured response line.
var resultMarkers = []string{"*s ", "*r ", "*c "}

// ParseProperties extracts "key: value" pairs from lines that begin with
// linePrefix. The key loses its result marker, the value is trimmed and a
// later duplicate key overwrites an earlier one.
//
// Example:
//
//	*s Audio Input Line 1 Name: Mic A
//	*s Audio Input Line 1 Selected: on
//
// yields {"Audio Input Line 1 Name": "Mic A", "Audio Input Line 1 Selected": "on"}.
func ParseProperties(response, linePrefix string) PropertyMap {
	props := make(PropertyMap)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimLeft(line, " \t\r")
		if !strings.HasPrefix(line, linePrefix) {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(stripResultMarker(key))
		if key == "" {
			continue
		}
		props[key] = strings.TrimSpace(value)
	}
	return props
}

// Keys returns the keys in sorted order.
func (p PropertyMap) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stripResultMarker(s string) string {
	for _, marker := range resultMarkers {
		if strings.HasPrefix(s, marker) {
			return s[len(marker):]
		}
	}
	return s
}
