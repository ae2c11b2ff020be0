package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/blockplan/pkg/api"
)

func validPlan() *api.Plan {
	return &api.Plan{
		ID: "plan",
		Units: []*api.UnitSpec{
			{
				ID: "first",
				Feature: &api.FeatureSpec{
					Kind: api.FeatureBlock,
					Template: &api.Template{
						Type: "primitive", Action: "null",
					},
				},
			},
		},
	}
}

func TestPlanValidate(t *testing.T) {
	assert.NoError(t, validPlan().Validate())
}

func TestPlanValidateErrors(t *testing.T) {
	t.Run("missing_id", func(t *testing.T) {
		p := validPlan()
		p.ID = ""
		assert.ErrorIs(t, p.Validate(), api.ErrInvalidPlan)
	})

	t.Run("no_units", func(t *testing.T) {
		p := validPlan()
		p.Units = nil
		assert.ErrorIs(t, p.Validate(), api.ErrInvalidPlan)
	})

	t.Run("unknown_feature", func(t *testing.T) {
		p := validPlan()
		p.Units[0].Feature.Kind = "http"
		assert.ErrorIs(t, p.Validate(), api.ErrInvalidPlan)
	})

	t.Run("missing_template", func(t *testing.T) {
		p := validPlan()
		p.Units[0].Feature.Template = nil
		assert.ErrorIs(t, p.Validate(), api.ErrInvalidPlan)
	})

	t.Run("duplicate_unit", func(t *testing.T) {
		p := validPlan()
		p.Units = append(p.Units, p.Units[0])
		assert.ErrorIs(t, p.Validate(), api.ErrDuplicateUnit)
	})
}
