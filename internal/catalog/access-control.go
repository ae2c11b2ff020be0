package catalog

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
)

// AccessControl blocks consult the calling account and guard the plan
// against overuse
const AccessControl block.Type = "access-control"

const (
	RequireAccount block.Action = "require-account"
	AccountID      block.Action = "account-id"
	HasRole        block.Action = "has-role"
	RateLimit      block.Action = "rate-limit"
)

const (
	slotRole   = "role"
	slotLimit  = "limit"
	slotWindow = "window"

	rateLimitPrefix  = "rate-limit:"
	headerRetryAfter = "Retry-After"

	maxRateWindow = 366 * 24 * time.Hour
)

func registerAccessControl(d *block.Dispatcher) {
	f := d.Family(AccessControl)
	f.Register(RequireAccount, block.Eager(requireAccount))
	f.Register(AccountID, block.Eval(accountID))
	f.Register(HasRole, block.Eval(hasRole, block.One(slotRole)))
	f.Register(RateLimit, block.Eager(rateLimit,
		block.One(slotKey), block.One(slotLimit), block.One(slotWindow),
	))
}

// requireAccount yields the calling account, or responds 401 when the
// request is anonymous
func requireAccount(c *block.Call) (block.Result, error) {
	acct, ok := c.Exec.Accounts().Current()
	if !ok {
		return block.Respond(errorResponse(
			http.StatusUnauthorized, "account required",
		)), nil
	}
	roles := make([]api.Value, len(acct.Roles))
	for i, r := range acct.Roles {
		roles[i] = api.String(r)
	}
	return block.Completed(api.Record(api.Args{
		"id":    api.String(acct.ID),
		"name":  api.String(acct.Name),
		"roles": api.List(roles...),
	})), nil
}

func accountID(c *block.Call) (api.Value, error) {
	if acct, ok := c.Exec.Accounts().Current(); ok {
		return api.String(acct.ID), nil
	}
	return api.Null, nil
}

func hasRole(c *block.Call) (api.Value, error) {
	role, err := c.In.String(slotRole)
	if err != nil {
		return api.Null, err
	}
	return api.Boolean(c.Exec.Accounts().HasRole(role)), nil
}

// rateLimit counts hits on key within a fixed window of milliseconds. It
// yields the remaining allowance, or responds 429 once the limit is passed
func rateLimit(c *block.Call) (block.Result, error) {
	key, err := c.In.String(slotKey)
	if err != nil {
		return block.Result{}, err
	}
	limit, err := c.In.Integer(slotLimit)
	if err != nil {
		return block.Result{}, err
	}
	windowMS, err := c.In.Integer(slotWindow)
	if err != nil {
		return block.Result{}, err
	}
	if windowMS <= 0 || windowMS > maxRateWindow.Milliseconds() {
		return block.Result{}, block.Invalid(slotWindow,
			fmt.Sprintf("integer in (0, %d]", maxRateWindow.Milliseconds()),
			api.Integer(windowMS),
		)
	}

	store, err := c.Exec.Redis()
	if err != nil {
		return block.Result{}, storageErr("increment", key, err)
	}
	window := time.Duration(windowMS) * time.Millisecond
	count, err := store.Increment(c.Context(), rateLimitPrefix+key, window)
	if err != nil {
		return block.Result{}, storageErr("increment", key, err)
	}

	if count > limit {
		resp := errorResponse(http.StatusTooManyRequests,
			fmt.Sprintf("rate limit of %d exceeded", limit),
		)
		retry := int64(math.Ceil(window.Seconds()))
		resp.Header[headerRetryAfter] = strconv.FormatInt(retry, 10)
		return block.Respond(resp), nil
	}
	return block.Completed(api.Integer(limit - count)), nil
}

func errorResponse(status int, msg string) *api.Response {
	return api.NewResponse(status, api.Record(api.Args{
		"error": api.String(msg),
	}))
}
