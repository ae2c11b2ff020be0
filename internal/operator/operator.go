package operator

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/log"
)

// Operator is a hydrated plan, ready to execute
type Operator struct {
	utils map[string]*api.Template
	id    api.PlanID
	units []*Unit
}

var (
	ErrInvalidUtil = errors.New("invalid custom util")
	ErrRollback    = errors.New("failed to roll back open transactions")
)

// New validates a plan and hydrates every unit and custom util with the
// Dispatcher
func New(d *block.Dispatcher, p *api.Plan) (*Operator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	utils := make(map[string]*api.Template, len(p.Utils))
	for id, t := range p.Utils {
		b, err := d.Hydrate(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidUtil, id, err)
		}
		utils[id] = b.Template()
	}

	units := make([]*Unit, 0, len(p.Units))
	for _, spec := range p.Units {
		f, err := NewFeature(d, spec.Feature)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidUnit, spec.ID, err)
		}
		units = append(units, NewUnit(spec.ID, f))
	}

	return &Operator{
		id:    p.ID,
		utils: utils,
		units: units,
	}, nil
}

func (o *Operator) ID() api.PlanID {
	return o.id
}

// Units returns the units in execution order
func (o *Operator) Units() []*Unit {
	return o.units
}

// Utils returns the custom util library, for use as an Execution's
// dependency
func (o *Operator) Utils() map[string]*api.Template {
	return maps.Clone(o.utils)
}

// Do runs the units in declared order, stopping at the first failure, and
// returns the response of the last unit. Transactions still open when the
// units are done are rolled back
func (o *Operator) Do(ec *state.Execution) (res *api.Response, err error) {
	logger := ec.Logger().With(log.PlanID(o.id))
	logger.Debug("Plan started", slog.Int("units", len(o.units)))

	defer func() {
		if cerr := ec.Close(); cerr != nil {
			logger.Error("Rollback failed", log.Error(cerr))
			if err == nil {
				res, err = nil, fmt.Errorf("%w: %w", ErrRollback, cerr)
			}
		}
	}()

	for _, u := range o.units {
		res, err = u.Do(ec)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Plan completed")
	return res, nil
}

// Plan re-serializes the operator
func (o *Operator) Plan() *api.Plan {
	units := make([]*api.UnitSpec, len(o.units))
	for i, u := range o.units {
		units[i] = &api.UnitSpec{
			ID:      u.id,
			Feature: u.feature.Spec(),
		}
	}
	var utils map[string]*api.Template
	if len(o.utils) > 0 {
		utils = o.Utils()
	}
	return &api.Plan{
		ID:    o.id,
		Utils: utils,
		Units: units,
	}
}
