package state

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/blockplan/internal/stack"
	"github.com/kode4food/blockplan/internal/storage"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/log"
)

type (
	// Execution is the ambient state of one plan execution
	Execution struct {
		ctx          context.Context
		logger       *slog.Logger
		transactions *TransactionManager
		accounts     *AccountManager
		redis        *storage.RedisStore
		files        *storage.FileStore
		request      *api.Request
		utils        map[string]*api.Template
		stack        *stack.Manager
		returnData   *api.Response
		id           string
		limits       Limits
	}

	// Dependencies are the collaborators an Execution is built from. Any
	// field may be left empty
	Dependencies struct {
		Logger  *slog.Logger
		Redis   *storage.RedisStore
		Files   *storage.FileStore
		Request *api.Request
		Account *Account
		Utils   map[string]*api.Template
		Limits  Limits
	}

	// Limits bound the resources a single execution may consume
	Limits struct {
		MaxStackDepth     int
		MaxLoopIterations int
		MaxSleep          time.Duration
	}
)

const (
	DefaultMaxStackDepth     = 64
	DefaultMaxLoopIterations = 10_000
	DefaultMaxSleep          = 30 * time.Second
)

var (
	ErrNoFileStore = errors.New("file store is not configured")
)

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MaxStackDepth:     DefaultMaxStackDepth,
		MaxLoopIterations: DefaultMaxLoopIterations,
		MaxSleep:          DefaultMaxSleep,
	}
}

// New creates the execution context for one plan run
func New(ctx context.Context, deps Dependencies) *Execution {
	id := uuid.NewString()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Execution{
		ctx:          ctx,
		id:           id,
		logger:       logger.With(log.ExecutionID(id)),
		transactions: NewTransactionManager(),
		accounts:     NewAccountManager(deps.Account),
		redis:        deps.Redis,
		files:        deps.Files,
		request:      deps.Request,
		utils:        deps.Utils,
		stack:        stack.NewManager(),
		limits:       deps.Limits.withDefaults(),
	}
}

// ID returns the unique identifier of this execution
func (e *Execution) ID() string {
	return e.id
}

// Context returns the context collaborator calls are bound to
func (e *Execution) Context() context.Context {
	return e.ctx
}

func (e *Execution) Logger() *slog.Logger {
	return e.logger
}

func (e *Execution) Transactions() *TransactionManager {
	return e.transactions
}

func (e *Execution) Accounts() *AccountManager {
	return e.accounts
}

// Redis returns the Redis connector, or an error when none is configured
func (e *Execution) Redis() (*storage.RedisStore, error) {
	if e.redis == nil {
		return nil, storage.ErrRedisNotConfigured
	}
	return e.redis, nil
}

// Files returns the file connector, or an error when none is configured
func (e *Execution) Files() (*storage.FileStore, error) {
	if e.files == nil {
		return nil, ErrNoFileStore
	}
	return e.files, nil
}

// Request returns the inbound request data. It is never nil
func (e *Execution) Request() *api.Request {
	if e.request == nil {
		return &api.Request{}
	}
	return e.request
}

func (e *Execution) Stack() *stack.Manager {
	return e.stack
}

func (e *Execution) Limits() Limits {
	return e.limits
}

// Util returns the template of a registered custom util
func (e *Execution) Util(id string) (*api.Template, bool) {
	t, ok := e.utils[id]
	return t, ok
}

// SetReturnData publishes the result of the most recently completed unit,
// replacing any previous result
func (e *Execution) SetReturnData(r *api.Response) {
	e.returnData = r
}

// ReturnData returns the result of the most recently completed unit
func (e *Execution) ReturnData() (*api.Response, bool) {
	return e.returnData, e.returnData != nil
}

// Close rolls back any transaction that is still open
func (e *Execution) Close() error {
	open := e.transactions.Open()
	if open == 0 {
		return nil
	}
	e.logger.Warn("Rolling back open transactions",
		slog.Int("count", open))
	return e.transactions.RollbackAll(e.ctx)
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxStackDepth <= 0 {
		l.MaxStackDepth = def.MaxStackDepth
	}
	if l.MaxLoopIterations <= 0 {
		l.MaxLoopIterations = def.MaxLoopIterations
	}
	if l.MaxSleep <= 0 {
		l.MaxSleep = def.MaxSleep
	}
	return l
}
