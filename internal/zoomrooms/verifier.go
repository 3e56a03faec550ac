package zoomrooms

import "strings"

// Verdict is the verifier's decision for an accumulated response.
type Verdict int

const (
	Incomplete Verdict = iota
	Success
	Error
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "incomplete"
	}
}

// Verifier decides whether a raw response is complete, successful or rejected.
// Its tables are fixed at construction.
type Verifier struct {
	markers   map[string]string
	terminals []string
	errors    []string
	successes []string
}

// NewVerifier returns a verifier for the Zoom Rooms command set.
func NewVerifier() *Verifier {
	markers := make(map[string]string, len(responseMarkers))
	for key, marker := range responseMarkers {
		markers[CommandKey(key)] = marker
	}
	return &Verifier{
		markers:   markers,
		terminals: []string{TokenOK, TokenBlockEnd},
		errors:    errorLiterals,
		successes: successLiterals,
	}
}

// Marker returns the expected response marker for a command.
func (v *Verifier) Marker(command string) (string, bool) {
	marker, ok := v.markers[CommandKey(command)]
	return marker, ok
}

// Check classifies the accumulated response to command.
//
// A family command is complete when the response contains its marker and ends
// with a terminal token. Anything else, or a family command without a marker,
// is judged by the generic success literals alone. A trailing error literal
// always wins.
func (v *Verifier) Check(command, response string) Verdict {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return Incomplete
	}
	if hasAnySuffix(trimmed, v.errors) {
		return Error
	}

	if commandFamily(command) != "" {
		if marker, ok := v.Marker(command); ok {
			if strings.Contains(response, marker) && hasAnySuffix(trimmed, v.terminals) {
				return Success
			}
			return Incomplete
		}
	}

	if hasAnySuffix(trimmed, v.successes) {
		return Success
	}
	return Incomplete
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, strings.TrimSpace(suffix)) {
			return true
		}
	}
	return false
}
