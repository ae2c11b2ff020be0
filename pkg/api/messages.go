package api

import "net/http"

type (
	// Request is the inbound request data a plan executes against
	Request struct {
		Header http.Header         `json:"header,omitempty"`
		Query  map[string][]string `json:"query,omitempty"`
		Method string              `json:"method"`
		Path   string              `json:"path"`
		Body   []byte              `json:"body,omitempty"`
	}

	// Response is the normalized result of a function entry
	Response struct {
		Header     map[string]string `json:"header"`
		Body       Value             `json:"body"`
		StatusCode int               `json:"statusCode"`
	}

	// PlanRegisteredResponse is returned when a plan registration succeeds
	PlanRegisteredResponse struct {
		Message string `json:"message"`
		PlanID  PlanID `json:"plan_id"`
		Units   int    `json:"units"`
	}

	// PlansListResponse lists the registered plan IDs
	PlansListResponse struct {
		Plans []PlanID `json:"plans"`
		Count int      `json:"count"`
	}

	// CatalogResponse lists the registered block families and actions
	CatalogResponse struct {
		Families map[string][]string `json:"families"`
		Count    int                 `json:"count"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Resources map[string]string `json:"resources,omitempty"`
		Service   string            `json:"service"`
		Status    string            `json:"status"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests. Block
	// failures carry the failing block's type and action so the caller can
	// locate the node in the plan
	ErrorResponse struct {
		Details map[string]any `json:"details,omitempty"`
		Error   string         `json:"error"`
		Type    string         `json:"type,omitempty"`
		Action  string         `json:"action,omitempty"`
		Status  int            `json:"status,omitempty"`
	}
)

const (
	// HeaderAccountID carries the calling account's identifier
	HeaderAccountID = "X-Account-ID"

	// HeaderAccountName carries the calling account's display name
	HeaderAccountName = "X-Account-Name"

	// HeaderAccountRoles carries the calling account's comma-separated roles
	HeaderAccountRoles = "X-Account-Roles"

	// HeaderFault marks an execute response as a failed execution and holds
	// the error kind
	HeaderFault = "X-Blockplan-Fault"
)

// NewResponse creates a Response with the given status and body and an
// empty header set
func NewResponse(status int, body Value) *Response {
	return &Response{
		Header:     map[string]string{},
		Body:       body,
		StatusCode: status,
	}
}

// QueryValue returns the first query value for the given name
func (r *Request) QueryValue(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	vals, ok := r.Query[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// HeaderValue returns the first header value for the given name
func (r *Request) HeaderValue(name string) (string, bool) {
	if r == nil || r.Header == nil {
		return "", false
	}
	vals := r.Header.Values(name)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
