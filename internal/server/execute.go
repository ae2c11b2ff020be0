package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/blockplan/internal/operator"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
	"github.com/kode4food/blockplan/pkg/log"
)

const faultKindUnknown = "internal"

// executePlan runs a registered plan against the inbound request. The
// plan's response is written as-is. A failed execution is reported as an
// ErrorResponse marked with the fault header
func (s *Server) executePlan(c *gin.Context) {
	planID := api.PlanID(c.Param("planID"))
	plan, ok := s.lookupPlan(planID)
	if !ok {
		s.planNotFound(c)
		return
	}

	body, err := io.ReadAll(
		http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.MaxBodyBytes),
	)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, api.ErrorResponse{
			Error:  err.Error(),
			Status: status,
		})
		return
	}

	op, err := operator.New(s.dispatcher, plan)
	if err != nil {
		s.writeFault(c, err)
		return
	}

	ec := state.New(c.Request.Context(), state.Dependencies{
		Logger:  s.deps.Logger.With(log.PlanID(planID)),
		Redis:   s.deps.Redis,
		Files:   s.deps.Files,
		Limits:  s.deps.Limits,
		Utils:   op.Utils(),
		Account: accountFrom(c.Request.Header),
		Request: &api.Request{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Header: c.Request.Header.Clone(),
			Query:  c.Request.URL.Query(),
			Body:   body,
		},
	})

	res, err := op.Do(ec)
	if err != nil {
		s.writeFault(c, err)
		return
	}

	for k, v := range res.Header {
		c.Header(k, v)
	}
	c.JSON(res.StatusCode, res.Body)
}

func (s *Server) writeFault(c *gin.Context, err error) {
	status := statusFor(err)
	kind := faultKindUnknown
	if fe, ok := fault.As(err); ok {
		kind = string(fe.Kind)
	}
	if status >= http.StatusInternalServerError {
		s.deps.Logger.Error("Plan execution failed",
			log.PlanID(c.Param("planID")),
			log.Error(err))
	}
	c.Header(api.HeaderFault, kind)
	c.JSON(status, errorResponse(err, status))
}

// statusFor maps a failed execution to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, fault.ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fault.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse renders an error, including the failing block's key and
// diagnostic fields when the error is a domain error
func errorResponse(err error, status int) api.ErrorResponse {
	res := api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	}
	if fe, ok := fault.As(err); ok {
		res.Type = fe.Key.Type
		res.Action = fe.Key.Action
		res.Details = fe.Fields()
	}
	return res
}

// accountFrom reads the calling account from the account headers, or
// returns nil for an anonymous request
func accountFrom(h http.Header) *state.Account {
	id := strings.TrimSpace(h.Get(api.HeaderAccountID))
	if id == "" {
		return nil
	}
	acct := &state.Account{
		ID:   id,
		Name: strings.TrimSpace(h.Get(api.HeaderAccountName)),
	}
	for role := range strings.SplitSeq(h.Get(api.HeaderAccountRoles), ",") {
		if role = strings.TrimSpace(role); role != "" {
			acct.Roles = append(acct.Roles, role)
		}
	}
	return acct
}
