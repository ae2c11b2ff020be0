package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Client talks to a running blockplan service
	Client struct {
		httpClient *http.Client
		baseURL    string
	}

	// Execution describes one plan invocation
	Execution struct {
		Body    any
		Header  http.Header
		Query   url.Values
		Account *Account
		Method  string
	}

	// Account identifies the caller of an execution
	Account struct {
		ID    string
		Name  string
		Roles []string
	}

	// ExecuteResult is the response produced by a plan
	ExecuteResult struct {
		Header     http.Header
		Body       json.RawMessage
		StatusCode int
	}

	// ExecuteError is returned when the service reports a failed execution
	ExecuteError struct {
		Response   api.ErrorResponse
		StatusCode int
	}
)

var (
	ErrRegisterPlan = errors.New("failed to register plan")
	ErrGetPlan      = errors.New("failed to get plan")
	ErrDeletePlan   = errors.New("failed to delete plan")
	ErrCatalog      = errors.New("failed to get catalog")
	ErrExecute      = errors.New("plan execution failed")
)

const (
	routePlan    = "/engine/plan"
	routeCatalog = "/engine/catalog"

	contentTypeJSON = "application/json"
)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RegisterPlan builds the plan and stores it with the service
func (c *Client) RegisterPlan(
	ctx context.Context, p *Plan,
) (*api.PlanRegisteredResponse, error) {
	plan, err := p.Build()
	if err != nil {
		return nil, err
	}
	return c.PutPlan(ctx, plan)
}

// PutPlan stores a plan document with the service
func (c *Client) PutPlan(
	ctx context.Context, plan *api.Plan,
) (*api.PlanRegisteredResponse, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPut,
		c.url("%s/%s", routePlan, plan.ID), bytes.NewBuffer(data), nil,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusCreated {
		return nil, statusError(ErrRegisterPlan, resp)
	}

	var result api.PlanRegisteredResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPlan retrieves a registered plan
func (c *Client) GetPlan(
	ctx context.Context, id api.PlanID,
) (*api.Plan, error) {
	resp, err := c.do(ctx, http.MethodGet,
		c.url("%s/%s", routePlan, id), nil, nil,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(ErrGetPlan, resp)
	}

	var result api.Plan
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeletePlan removes a registered plan
func (c *Client) DeletePlan(ctx context.Context, id api.PlanID) error {
	resp, err := c.do(ctx, http.MethodDelete,
		c.url("%s/%s", routePlan, id), nil, nil,
	)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent {
		return statusError(ErrDeletePlan, resp)
	}
	return nil
}

// Catalog lists the block families and actions the service supports
func (c *Client) Catalog(
	ctx context.Context,
) (*api.CatalogResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url(routeCatalog), nil, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(ErrCatalog, resp)
	}

	var result api.CatalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Execute runs a registered plan. A response the plan produced is returned
// whatever its status; a failed execution returns an *ExecuteError
func (c *Client) Execute(
	ctx context.Context, id api.PlanID, ex *Execution,
) (*ExecuteResult, error) {
	if ex == nil {
		ex = &Execution{}
	}
	method := ex.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if ex.Body != nil {
		data, err := json.Marshal(ex.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(data)
	}

	target := c.url("%s/%s/execute", routePlan, id)
	if len(ex.Query) > 0 {
		target += "?" + ex.Query.Encode()
	}

	resp, err := c.do(ctx, method, target, body, ex.headers())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get(api.HeaderFault) != "" {
		res := &ExecuteError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, &res.Response); err != nil {
			return nil, err
		}
		return nil, res
	}

	return &ExecuteResult{
		Header:     resp.Header,
		Body:       data,
		StatusCode: resp.StatusCode,
	}, nil
}

// Decode unmarshals the response body into v
func (r *ExecuteResult) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

func (e *ExecuteError) Error() string {
	msg := fmt.Sprintf("%s: status %d: %s",
		ErrExecute, e.StatusCode, e.Response.Error)
	if e.Response.Type != "" {
		msg = fmt.Sprintf("%s (%s/%s)",
			msg, e.Response.Type, e.Response.Action)
	}
	return msg
}

func (e *ExecuteError) Unwrap() error {
	return ErrExecute
}

func (ex *Execution) headers() http.Header {
	res := ex.Header.Clone()
	if res == nil {
		res = http.Header{}
	}
	if ex.Body != nil {
		res.Set("Content-Type", contentTypeJSON)
	}
	if a := ex.Account; a != nil {
		res.Set(api.HeaderAccountID, a.ID)
		if a.Name != "" {
			res.Set(api.HeaderAccountName, a.Name)
		}
		if len(a.Roles) > 0 {
			res.Set(api.HeaderAccountRoles, strings.Join(a.Roles, ","))
		}
	}
	return res
}

func (c *Client) do(
	ctx context.Context, method, target string, body io.Reader,
	header http.Header,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	return c.httpClient.Do(req)
}

func (c *Client) url(format string, args ...any) string {
	path := fmt.Sprintf(format, args...)
	return c.baseURL + path
}

func statusError(base error, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%w: status %d, body: %s",
		base, resp.StatusCode, string(body))
}
