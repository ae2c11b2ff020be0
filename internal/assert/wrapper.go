package assert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/config"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// Wrapper wraps testify assertions with blockplan-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *require.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus blockplan-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    require.New(t),
	}
}

// PlanValid asserts that a plan passes validation
func (w *Wrapper) PlanValid(p *api.Plan) {
	w.Helper()
	w.NoError(p.Validate())
	w.NotEmpty(p.ID)
	w.NotEmpty(p.Units)
}

// PlanInvalid asserts that a plan fails validation and returns the error
func (w *Wrapper) PlanInvalid(p *api.Plan, contains string) error {
	w.Helper()
	err := p.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
	return err
}

// RoundTrip hydrates a template and asserts that serializing the result
// reproduces it, both structurally and as JSON
func (w *Wrapper) RoundTrip(
	d *block.Dispatcher, t *api.Template,
) block.Block {
	w.Helper()
	b, err := d.Hydrate(t)
	w.Require.NoError(err)
	w.Equal(t, b.Template())

	want, err := json.Marshal(t)
	w.Require.NoError(err)
	got, err := json.Marshal(b.Template())
	w.Require.NoError(err)
	w.JSONEq(string(want), string(got))
	return b
}

// Fault asserts that err is a domain error of the given kind attributed to
// the given block, and returns it
func (w *Wrapper) Fault(
	err error, kind fault.Kind, typ, action string,
) *fault.Error {
	w.Helper()
	fe, ok := fault.As(err)
	w.Require.True(ok, "expected a domain error, got %v", err)
	w.Equal(kind, fe.Kind)
	w.Equal(fault.Key{Type: typ, Action: action}, fe.Key)
	return fe
}

// Completed asserts that a block completed with the expected value
func (w *Wrapper) Completed(res block.Result, err error, expected api.Value) {
	w.Helper()
	w.Require.NoError(err)
	w.Equal(block.SignalNone, res.Signal)
	w.True(expected.Equal(res.Value),
		"expected %s, got %s", expected, res.Value,
	)
}

// Signal asserts that a block completed with the expected signal
func (w *Wrapper) Signal(res block.Result, err error, sig block.Signal) {
	w.Helper()
	w.Require.NoError(err)
	w.Equal(sig, res.Signal)
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= 65535)
	w.True(cfg.Limits.MaxStackDepth > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
