package builder

import (
	"maps"
	"slices"

	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Plan is an immutable builder for a plan document
	Plan struct {
		utils map[string]*Block
		id    api.PlanID
		units []unit
	}

	unit struct {
		root *Block
		id   api.UnitID
	}
)

// NewPlan creates a plan builder with the specified ID
func NewPlan(id api.PlanID) *Plan {
	return &Plan{id: id, utils: map[string]*Block{}}
}

// WithUnit appends a block unit. Units run in the order they are added
func (p *Plan) WithUnit(id api.UnitID, root *Block) *Plan {
	res := *p
	res.units = append(slices.Clone(p.units), unit{id: id, root: root})
	return &res
}

// WithUtil registers a custom util under id
func (p *Plan) WithUtil(id string, root *Block) *Plan {
	res := *p
	res.utils = maps.Clone(p.utils)
	res.utils[id] = root
	return &res
}

// Build creates the plan document and validates it
func (p *Plan) Build() (*api.Plan, error) {
	res := &api.Plan{
		ID:    p.id,
		Units: make([]*api.UnitSpec, len(p.units)),
	}
	if len(p.utils) > 0 {
		res.Utils = make(map[string]*api.Template, len(p.utils))
		for id, root := range p.utils {
			res.Utils[id] = root.Template()
		}
	}
	for i, u := range p.units {
		res.Units[i] = &api.UnitSpec{
			ID: u.id,
			Feature: &api.FeatureSpec{
				Kind:     api.FeatureBlock,
				Template: u.root.Template(),
			},
		}
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}
