package restclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// APIError carries a non-2xx backend response to the caller. When the
// backend returns a structured field-error map each field's messages are
// available for per-field feedback; otherwise Message holds whatever the
// backend said.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// HasFieldErrors reports whether the backend returned per-field messages.
func (e *APIError) HasFieldErrors() bool { return len(e.Fields) > 0 }

// FieldSummary concatenates each field's messages into a readable multi-line
// summary, one field per line, fields in stable order.
func (e *APIError) FieldSummary() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return strings.Join(lines, "\n")
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	for key, value := range parsed {
		switch key {
		case "detail", "message", "error":
			var text string
			if err := json.Unmarshal(value, &text); err == nil && text != "" {
				apiErr.Message = text
			}
		default:
			var messages []string
			if err := json.Unmarshal(value, &messages); err == nil && len(messages) > 0 {
				if apiErr.Fields == nil {
					apiErr.Fields = map[string][]string{}
				}
				apiErr.Fields[key] = messages
				continue
			}
			var single string
			if err := json.Unmarshal(value, &single); err == nil && single != "" {
				if apiErr.Fields == nil {
					apiErr.Fields = map[string][]string{}
				}
				apiErr.Fields[key] = []string{single}
			}
		}
	}
	if apiErr.Message == "" && apiErr.Fields == nil {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
