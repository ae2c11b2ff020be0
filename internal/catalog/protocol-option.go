package catalog

import (
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
)

// ProtocolOption blocks read the inbound request and build the response
const ProtocolOption block.Type = "protocol-option"

const (
	Respond       block.Action = "respond"
	RequestBody   block.Action = "request-body"
	RequestMethod block.Action = "request-method"
	RequestHeader block.Action = "request-header"
	RequestQuery  block.Action = "request-query"
	RequestPath   block.Action = "request-path"
)

const (
	slotStatus = "status"
	slotHeader = "header"
)

func registerProtocolOption(d *block.Dispatcher) {
	f := d.Family(ProtocolOption)
	f.Register(Respond, block.Eager(respond,
		block.One(slotStatus),
		block.Optional(slotHeader),
		block.Optional(slotBody),
	))
	f.Register(RequestBody, block.Eval(requestBody))
	f.Register(RequestMethod, block.Eval(requestMethod))
	f.Register(RequestPath, block.Eval(requestPath))
	f.Register(RequestHeader,
		block.Eval(requestHeader, block.One(slotName)),
	)
	f.Register(RequestQuery, block.Eval(requestQuery, block.One(slotName)))
}

// respond short-circuits the function entry with a complete response
func respond(c *block.Call) (block.Result, error) {
	status, err := c.In.Integer(slotStatus)
	if err != nil {
		return block.Result{}, err
	}
	if http.StatusText(int(status)) == "" {
		return block.Result{}, block.Invalid(
			slotStatus, "http status code", api.Integer(status),
		)
	}
	header, err := c.In.RecordOr(slotHeader)
	if err != nil {
		return block.Result{}, err
	}
	resp := api.NewResponse(int(status), c.In.Value(slotBody))
	for _, k := range header.SortedNames() {
		resp.Header[string(k)] = header.Get(k).String()
	}
	return block.Respond(resp), nil
}

// requestBody decodes a JSON body, falling back to the raw text
func requestBody(c *block.Call) (api.Value, error) {
	body := c.Exec.Request().Body
	if len(body) == 0 {
		return api.Null, nil
	}
	if !gjson.ValidBytes(body) {
		return api.String(string(body)), nil
	}
	return api.ValueOf(gjson.ParseBytes(body).Value()), nil
}

func requestMethod(c *block.Call) (api.Value, error) {
	return api.String(c.Exec.Request().Method), nil
}

func requestPath(c *block.Call) (api.Value, error) {
	return api.String(c.Exec.Request().Path), nil
}

func requestHeader(c *block.Call) (api.Value, error) {
	name, err := c.In.String(slotName)
	if err != nil {
		return api.Null, err
	}
	if v, ok := c.Exec.Request().HeaderValue(name); ok {
		return api.String(v), nil
	}
	return api.Null, nil
}

func requestQuery(c *block.Call) (api.Value, error) {
	name, err := c.In.String(slotName)
	if err != nil {
		return api.Null, err
	}
	if v, ok := c.Exec.Request().QueryValue(name); ok {
		return api.String(v), nil
	}
	return api.Null, nil
}
