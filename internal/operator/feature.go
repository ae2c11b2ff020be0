package operator

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

type (
	// Feature is the function entry of a Unit
	Feature interface {
		// Kind identifies the feature variant
		Kind() api.FeatureKind

		// Do runs the feature and normalizes its outcome into a Response
		Do(ec *state.Execution) (*api.Response, error)

		// Spec re-serializes the feature
		Spec() *api.FeatureSpec
	}

	// BlockFeature runs a block tree
	BlockFeature struct {
		root block.Block
		key  fault.Key
		ext  api.Extra
	}
)

const unitBoundary = "unit"

var (
	ErrUnknownFeature = errors.New("unknown feature kind")
	ErrSignalEscaped  = errors.New("signal escaped unit")
)

var _ Feature = (*BlockFeature)(nil)

// NewFeature hydrates a feature from its wire form
func NewFeature(d *block.Dispatcher, spec *api.FeatureSpec) (Feature, error) {
	switch spec.Kind {
	case api.FeatureBlock:
		return NewBlockFeature(d, spec.Template)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, spec.Kind)
	}
}

// NewBlockFeature hydrates the block tree of a feature
func NewBlockFeature(
	d *block.Dispatcher, t *api.Template,
) (*BlockFeature, error) {
	root, err := d.Hydrate(t)
	if err != nil {
		return nil, err
	}
	return &BlockFeature{
		root: root,
		key:  fault.Key{Type: t.Type, Action: t.Action},
		ext:  t.Extra,
	}, nil
}

func (*BlockFeature) Kind() api.FeatureKind {
	return api.FeatureBlock
}

// Root returns the hydrated block tree
func (f *BlockFeature) Root() block.Block {
	return f.root
}

func (f *BlockFeature) Spec() *api.FeatureSpec {
	return &api.FeatureSpec{
		Kind:     api.FeatureBlock,
		Template: f.root.Template(),
	}
}

// Do runs the block tree with a fresh Scratch. A respond signal yields its
// response; a completed value is normalized by ValueResponse. A break or
// continue that reaches the unit is a runtime error
func (f *BlockFeature) Do(ec *state.Execution) (*api.Response, error) {
	res, err := f.root.Do(ec, block.NewScratch())
	if err != nil {
		return nil, err
	}

	switch res.Signal {
	case block.SignalRespond:
		return res.Response, nil
	case block.SignalBreak, block.SignalContinue:
		return nil, fault.Runtime(f.key, f.ext, ErrSignalEscaped).
			WithContext(fault.Signal{
				Signal:   res.Signal.String(),
				Boundary: unitBoundary,
			})
	default:
		return ValueResponse(res.Value), nil
	}
}

// ValueResponse normalizes a completed value. Null becomes an empty 200.
// A record with an integer statusCode supplies the status, header, and
// body fields. Any other value becomes the body of a 200
func ValueResponse(v api.Value) *api.Response {
	rec, ok := v.AsRecord()
	if !ok {
		return api.NewResponse(http.StatusOK, v)
	}
	status, ok := rec.Get("statusCode").AsInteger()
	if !ok || http.StatusText(int(status)) == "" {
		return api.NewResponse(http.StatusOK, v)
	}

	res := api.NewResponse(int(status), rec.Get("body"))
	if header, ok := rec.Get("header").AsRecord(); ok {
		for _, k := range header.SortedNames() {
			res.Header[string(k)] = header.Get(k).String()
		}
	}
	return res
}
