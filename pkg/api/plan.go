package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type (
	// Plan is the wire form of an Operator: an ordered list of units plus a
	// library of reusable sub-plans ("custom utils")
	Plan struct {
		Utils map[string]*Template `json:"utils,omitempty" validate:"dive,required"`
		ID    PlanID               `json:"id" validate:"required"`
		Units []*UnitSpec          `json:"units" validate:"required,min=1,dive,required"`
	}

	// UnitSpec is the wire form of one sequentially executed unit
	UnitSpec struct {
		Feature *FeatureSpec `json:"feature" validate:"required"`
		ID      UnitID       `json:"id" validate:"required"`
	}

	// FeatureSpec is the wire form of a unit's function entry
	FeatureSpec struct {
		Template *Template   `json:"template,omitempty" validate:"required_if=Kind block"`
		Kind     FeatureKind `json:"kind" validate:"required,oneof=block"`
	}

	// PlanID identifies a registered plan
	PlanID string

	// UnitID identifies a unit within a plan
	UnitID string

	// FeatureKind discriminates function entry variants
	FeatureKind string
)

const (
	// FeatureBlock is a function entry that runs a block tree
	FeatureBlock FeatureKind = "block"
)

var (
	ErrInvalidPlan   = errors.New("invalid plan")
	ErrDuplicateUnit = errors.New("duplicate unit id")
)

var planValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural integrity of the plan document
func (p *Plan) Validate() error {
	if err := planValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	seen := make(map[UnitID]struct{}, len(p.Units))
	for _, u := range p.Units {
		if _, ok := seen[u.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateUnit, u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}
