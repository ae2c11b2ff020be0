package catalog

import (
	"errors"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
)

// ShareData blocks move values between blocks through the scratch
// context, the active loop, the return register, and the scoped stack
const ShareData block.Type = "share-data"

const (
	ShareSet        block.Action = "set"
	ShareGet        block.Action = "get"
	ShareLoopIndex  block.Action = "loop-index"
	ShareLoopItem   block.Action = "loop-item"
	ShareLoopKey    block.Action = "loop-key"
	ShareReturnData block.Action = "return-data"
	ShareFrameValue block.Action = "frame-value"
)

const slotName = "name"

var ErrNotInLoop = errors.New("no active loop")

func registerShareData(d *block.Dispatcher) {
	f := d.Family(ShareData)
	name := block.One(slotName)
	f.Register(ShareSet, block.Eval(setVar, name, block.One(slotValue)))
	f.Register(ShareGet, block.Eval(getVar, name))
	f.Register(ShareLoopIndex, block.Eval(loopIndex))
	f.Register(ShareLoopItem, block.Eval(loopItem))
	f.Register(ShareLoopKey, block.Eval(loopKey))
	f.Register(ShareReturnData, block.Eval(returnData))
	f.Register(ShareFrameValue, block.Eval(frameValue, name))
}

func setVar(c *block.Call) (api.Value, error) {
	name, err := c.In.String(slotName)
	if err != nil {
		return api.Null, err
	}
	v := c.In.Value(slotValue)
	c.Scratch.Set(name, v)
	return v, nil
}

func getVar(c *block.Call) (api.Value, error) {
	name, err := c.In.String(slotName)
	if err != nil {
		return api.Null, err
	}
	v, _ := c.Scratch.Get(name)
	return v, nil
}

func loopIndex(c *block.Call) (api.Value, error) {
	l, ok := c.Scratch.Loop()
	if !ok {
		return api.Null, ErrNotInLoop
	}
	return api.Integer(int64(l.Index)), nil
}

func loopItem(c *block.Call) (api.Value, error) {
	l, ok := c.Scratch.Loop()
	if !ok {
		return api.Null, ErrNotInLoop
	}
	return l.Item, nil
}

func loopKey(c *block.Call) (api.Value, error) {
	l, ok := c.Scratch.Loop()
	if !ok {
		return api.Null, ErrNotInLoop
	}
	if l.Key == "" {
		return api.Null, nil
	}
	return api.String(l.Key), nil
}

// returnData exposes the response of the most recently completed unit
func returnData(c *block.Call) (api.Value, error) {
	r, ok := c.Exec.ReturnData()
	if !ok {
		return api.Null, nil
	}
	return responseValue(r), nil
}

func frameValue(c *block.Call) (api.Value, error) {
	name, err := c.In.String(slotName)
	if err != nil {
		return api.Null, err
	}
	v, _ := c.Exec.Stack().Lookup(api.Name(name))
	return v, nil
}

func responseValue(r *api.Response) api.Value {
	header := make(api.Args, len(r.Header))
	for k, v := range r.Header {
		header[api.Name(k)] = api.String(v)
	}
	return api.Record(api.Args{
		"statusCode": api.Integer(int64(r.StatusCode)),
		"header":     api.Record(header),
		"body":       r.Body,
	})
}
