package catalog

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// CommonUtil blocks are stateless value transformations
const CommonUtil block.Type = "common-util"

const (
	Base64Encode block.Action = "endecode-base64-encode"
	Base64Decode block.Action = "endecode-base64-decode"
	URLEncode    block.Action = "endecode-url-encode"
	URLDecode    block.Action = "endecode-url-decode"
	StringConcat block.Action = "string-concat"
	JSONEncode   block.Action = "json-encode"
	JSONDecode   block.Action = "json-decode"
	JSONPath     block.Action = "json-path"
	UUIDGenerate block.Action = "uuid-generate"
	Sleep        block.Action = "sleep"
)

const (
	slotValue        = "value"
	slotValues       = "values"
	slotDocument     = "document"
	slotPath         = "path"
	slotMilliseconds = "milliseconds"
)

var (
	ErrBadEncoding  = errors.New("malformed encoded input")
	ErrSleepTooLong = errors.New("sleep exceeds the configured maximum")
)

func registerCommonUtil(d *block.Dispatcher) {
	f := d.Family(CommonUtil)
	value := block.One(slotValue)
	f.Register(Base64Encode, block.Eval(base64Encode, value))
	f.Register(Base64Decode, block.Eval(base64Decode, value))
	f.Register(URLEncode, block.Eval(urlEncode, value))
	f.Register(URLDecode, block.Eval(urlDecode, value))
	f.Register(StringConcat,
		block.Eval(stringConcat, block.Many(slotValues)),
	)
	f.Register(JSONEncode, block.Eval(jsonEncode, value))
	f.Register(JSONDecode, block.Eval(jsonDecode, value))
	f.Register(JSONPath, block.Eval(jsonPath,
		block.One(slotDocument), block.One(slotPath),
	))
	f.Register(UUIDGenerate, block.Eval(uuidGenerate))
	f.Register(Sleep, block.Eval(sleep, block.One(slotMilliseconds)))
}

func base64Encode(c *block.Call) (api.Value, error) {
	s, err := c.In.String(slotValue)
	if err != nil {
		return api.Null, err
	}
	return api.String(base64.StdEncoding.EncodeToString([]byte(s))), nil
}

func base64Decode(c *block.Call) (api.Value, error) {
	s, err := c.In.String(slotValue)
	if err != nil {
		return api.Null, err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return api.Null, badEncoding(slotValue, "base64", err)
	}
	return api.String(string(data)), nil
}

func urlEncode(c *block.Call) (api.Value, error) {
	s, err := c.In.String(slotValue)
	if err != nil {
		return api.Null, err
	}
	return api.String(url.QueryEscape(s)), nil
}

func urlDecode(c *block.Call) (api.Value, error) {
	s, err := c.In.String(slotValue)
	if err != nil {
		return api.Null, err
	}
	res, err := url.QueryUnescape(s)
	if err != nil {
		return api.Null, badEncoding(slotValue, "url-encoded", err)
	}
	return api.String(res), nil
}

func stringConcat(c *block.Call) (api.Value, error) {
	items, err := c.In.List(slotValues)
	if err != nil {
		return api.Null, err
	}
	var sb strings.Builder
	for _, item := range items {
		if item.IsNull() {
			continue
		}
		sb.WriteString(item.String())
	}
	return api.String(sb.String()), nil
}

func jsonEncode(c *block.Call) (api.Value, error) {
	data, err := json.Marshal(c.In.Value(slotValue))
	if err != nil {
		return api.Null, err
	}
	return api.String(string(data)), nil
}

func jsonDecode(c *block.Call) (api.Value, error) {
	s, err := c.In.String(slotValue)
	if err != nil {
		return api.Null, err
	}
	res, err := decodeJSON([]byte(s))
	if err != nil {
		return api.Null, badEncoding(slotValue, "json", err)
	}
	return res, nil
}

func jsonPath(c *block.Call) (api.Value, error) {
	path, err := c.In.String(slotPath)
	if err != nil {
		return api.Null, err
	}
	doc := c.In.Value(slotDocument)
	src, ok := doc.AsString()
	if !ok {
		data, err := json.Marshal(doc)
		if err != nil {
			return api.Null, err
		}
		src = string(data)
	}
	if !gjson.Valid(src) {
		return api.Null, badEncoding(slotDocument, "json", nil)
	}
	res := gjson.Get(src, path)
	if !res.Exists() {
		return api.Null, nil
	}
	return api.ValueOf(res.Value()), nil
}

func uuidGenerate(*block.Call) (api.Value, error) {
	return api.String(uuid.NewString()), nil
}

func sleep(c *block.Call) (api.Value, error) {
	ms, err := c.In.Integer(slotMilliseconds)
	if err != nil {
		return api.Null, err
	}
	if ms < 0 {
		return api.Null, block.Invalid(
			slotMilliseconds, "non-negative integer", api.Integer(ms),
		)
	}
	// compared in milliseconds so a huge value cannot wrap the Duration
	if limit := c.Exec.Limits().MaxSleep; ms > limit.Milliseconds() {
		return api.Null, fault.WithContext(
			fmt.Errorf("%w: %dms > %s", ErrSleepTooLong, ms, limit),
			fault.InvalidArgument{
				Slot:     slotMilliseconds,
				Expected: fmt.Sprintf("at most %d", limit.Milliseconds()),
				Actual:   api.KindInteger.String(),
			},
		)
	}

	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
		return api.Null, nil
	case <-c.Context().Done():
		return api.Null, c.Context().Err()
	}
}

func decodeJSON(data []byte) (api.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return api.Null, err
	}
	if dec.More() {
		return api.Null, ErrBadEncoding
	}
	return api.ValueOf(raw), nil
}

func badEncoding(slot, format string, cause error) error {
	err := fmt.Errorf("%w: %s", ErrBadEncoding, format)
	if cause != nil {
		err = fmt.Errorf("%w: %w", err, cause)
	}
	return fault.WithContext(err, fault.InvalidArgument{
		Slot:     slot,
		Expected: format,
		Actual:   api.KindString.String(),
	})
}
