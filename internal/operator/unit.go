package operator

import (
	"errors"
	"log/slog"

	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/log"
)

type (
	// Unit is one sequentially executed step of an Operator
	Unit struct {
		feature Feature
		id      api.UnitID
		status  Status
	}

	// Status tracks the progress of a Unit
	Status string
)

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var ErrInvalidUnit = errors.New("invalid unit")

// NewUnit creates a pending unit
func NewUnit(id api.UnitID, f Feature) *Unit {
	return &Unit{
		id:      id,
		feature: f,
		status:  StatusPending,
	}
}

func (u *Unit) ID() api.UnitID {
	return u.id
}

func (u *Unit) Status() Status {
	return u.status
}

func (u *Unit) Feature() Feature {
	return u.feature
}

// Do runs the unit's feature and publishes its response into the return
// register, replacing the previous unit's response
func (u *Unit) Do(ec *state.Execution) (*api.Response, error) {
	logger := ec.Logger().With(log.UnitID(u.id))
	u.status = StatusRunning
	logger.Debug("Unit started",
		slog.String("kind", string(u.feature.Kind())))

	res, err := u.feature.Do(ec)
	if err != nil {
		u.status = StatusFailed
		logger.Warn("Unit failed",
			log.Status(u.status),
			log.Error(err))
		return nil, err
	}

	ec.SetReturnData(res)
	u.status = StatusCompleted
	logger.Debug("Unit completed",
		slog.Int("status_code", res.StatusCode))
	return res, nil
}
