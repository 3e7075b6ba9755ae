package arm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ResponseError is an error response of Azure Resource Manager.
type ResponseError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Method     string
	URL        string
	Details    []ErrorDetail
	Body       []byte
}

type ErrorDetail struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Target  string        `json:"target,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

func (e *ResponseError) Error() string {
	var sb strings.Builder
	switch {
	case e.Code != "" && e.Message != "":
		fmt.Fprintf(&sb, "(%s) %s", e.Code, e.Message)
	case e.Message != "":
		sb.WriteString(e.Message)
	case len(e.Body) > 0:
		fmt.Fprintf(&sb, "%s %s: %d %s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(string(e.Body)))
	default:
		fmt.Fprintf(&sb, "%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, "\nCode: %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, "\nMessage: %s", e.Message)
	}
	for _, d := range e.Details {
		fmt.Fprintf(&sb, "\n  (%s) %s", d.Code, d.Message)
	}
	return sb.String()
}

// NotFound reports whether the service answered 404.
func (e *ResponseError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details"`
}

// newResponseError decodes both the wrapped {"error": {...}} and the flat {"code", "message"}
// error shapes.
func newResponseError(resp *http.Response, body []byte) *ResponseError {
	e := &ResponseError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("x-ms-request-id"),
		Body:       body,
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.URL = resp.Request.URL.Redacted()
	}
	var wrapped struct {
		Error *errorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error != nil {
		e.Code, e.Message, e.Details = wrapped.Error.Code, wrapped.Error.Message, wrapped.Error.Details
		return e
	}
	var flat errorBody
	if err := json.Unmarshal(body, &flat); err == nil {
		e.Code, e.Message, e.Details = flat.Code, flat.Message, flat.Details
	}
	return e
}
