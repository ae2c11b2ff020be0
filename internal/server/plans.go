package server

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/blockplan/internal/operator"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/log"
)

var (
	ErrInvalidJSON    = errors.New("invalid JSON request")
	ErrPlanNotFound   = errors.New("plan not found")
	ErrPlanIDMismatch = errors.New("plan ID in URL does not match body")
)

func (s *Server) listPlans(c *gin.Context) {
	s.mu.RLock()
	ids := slices.Sorted(maps.Keys(s.plans))
	s.mu.RUnlock()

	c.JSON(http.StatusOK, api.PlansListResponse{
		Plans: ids,
		Count: len(ids),
	})
}

func (s *Server) getPlan(c *gin.Context) {
	plan, ok := s.lookupPlan(api.PlanID(c.Param("planID")))
	if !ok {
		s.planNotFound(c)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// putPlan validates and hydrates a plan before storing it, so a stored plan
// never fails with a configuration error at execution time
func (s *Server) putPlan(c *gin.Context) {
	planID := api.PlanID(c.Param("planID"))

	var plan api.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	if plan.ID == "" {
		plan.ID = planID
	}
	if plan.ID != planID {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", ErrPlanIDMismatch, plan.ID),
			Status: http.StatusBadRequest,
		})
		return
	}

	op, err := operator.New(s.dispatcher, &plan)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err, http.StatusBadRequest))
		return
	}

	s.mu.Lock()
	_, replaced := s.plans[planID]
	s.plans[planID] = op.Plan()
	s.mu.Unlock()

	status, msg := http.StatusCreated, "Plan registered"
	if replaced {
		status, msg = http.StatusOK, "Plan updated"
	}
	s.deps.Logger.Info(msg,
		log.PlanID(planID),
		slog.Int("units", len(plan.Units)))

	c.JSON(status, api.PlanRegisteredResponse{
		Message: msg,
		PlanID:  planID,
		Units:   len(plan.Units),
	})
}

func (s *Server) deletePlan(c *gin.Context) {
	planID := api.PlanID(c.Param("planID"))

	s.mu.Lock()
	_, ok := s.plans[planID]
	delete(s.plans, planID)
	s.mu.Unlock()

	if !ok {
		s.planNotFound(c)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Plan deleted",
	})
}

func (s *Server) lookupPlan(id api.PlanID) (*api.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	return plan, ok
}

func (s *Server) planNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, api.ErrorResponse{
		Error:  fmt.Sprintf("%s: %s", ErrPlanNotFound, c.Param("planID")),
		Status: http.StatusNotFound,
	})
}
