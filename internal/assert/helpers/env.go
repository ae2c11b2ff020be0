package helpers

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/catalog"
	"github.com/kode4food/blockplan/internal/config"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/internal/storage"
	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// TestEnv holds the collaborators needed to run blocks in tests: an
	// in-memory Redis, an in-memory blob bucket, and the full catalog
	TestEnv struct {
		Dispatcher *block.Dispatcher
		Redis      *miniredis.Miniredis
		Store      *storage.RedisStore
		Files      *storage.FileStore
		Config     *config.Config
		Cleanup    func()
	}

	// ExecOption customizes an Execution created by a TestEnv
	ExecOption func(*execSetup)

	execSetup struct {
		ctx  context.Context
		deps state.Dependencies
	}
)

const testRedisPrefix = "test"

// NewTestConfig creates a default configuration with debug logging enabled
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	return cfg
}

// NewTestEnv creates a test environment backed by miniredis and memblob
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)

	cfg := NewTestConfig()
	cfg.Redis.Addr = server.Addr()
	cfg.Redis.Prefix = testRedisPrefix

	store := storage.NewRedisStore(cfg.Redis)
	files, err := storage.OpenFileStore(
		context.Background(), cfg.BlobURL, cfg.BlobPrefix,
	)
	require.NoError(t, err)

	cleanup := func() {
		_ = files.Close()
		_ = store.Close()
		server.Close()
	}

	return &TestEnv{
		Dispatcher: catalog.NewDispatcher(),
		Redis:      server,
		Store:      store,
		Files:      files,
		Config:     cfg,
		Cleanup:    cleanup,
	}
}

// WithTestEnv creates a test environment, executes the provided function
// with it, and ensures cleanup happens automatically
func WithTestEnv(t *testing.T, fn func(*TestEnv)) {
	t.Helper()
	env := NewTestEnv(t)
	defer env.Cleanup()
	fn(env)
}

// NewExecution creates an Execution wired to the environment's
// collaborators
func (e *TestEnv) NewExecution(opts ...ExecOption) *state.Execution {
	s := &execSetup{
		ctx: context.Background(),
		deps: state.Dependencies{
			Redis:  e.Store,
			Files:  e.Files,
			Limits: e.Config.Limits,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return state.New(s.ctx, s.deps)
}

// Hydrate resolves a template with the full catalog
func (e *TestEnv) Hydrate(t *testing.T, tmpl *api.Template) block.Block {
	t.Helper()
	b, err := e.Dispatcher.Hydrate(tmpl)
	require.NoError(t, err)
	return b
}

// Run hydrates a template and evaluates it in a fresh Execution
func (e *TestEnv) Run(
	t *testing.T, tmpl *api.Template, opts ...ExecOption,
) (block.Result, error) {
	t.Helper()
	return e.RunIn(t, e.NewExecution(opts...), tmpl)
}

// RunIn hydrates a template and evaluates it in the given Execution
func (e *TestEnv) RunIn(
	t *testing.T, ec *state.Execution, tmpl *api.Template,
) (block.Result, error) {
	t.Helper()
	return e.Hydrate(t, tmpl).Do(ec, block.NewScratch())
}

// WithContext binds the Execution to ctx
func WithContext(ctx context.Context) ExecOption {
	return func(s *execSetup) {
		s.ctx = ctx
	}
}

// WithRequest sets the inbound request
func WithRequest(r *api.Request) ExecOption {
	return func(s *execSetup) {
		s.deps.Request = r
	}
}

// WithAccount sets the calling account
func WithAccount(a *state.Account) ExecOption {
	return func(s *execSetup) {
		s.deps.Account = a
	}
}

// WithUtils registers custom utils
func WithUtils(utils map[string]*api.Template) ExecOption {
	return func(s *execSetup) {
		s.deps.Utils = utils
	}
}

// WithLimits overrides the execution limits
func WithLimits(l state.Limits) ExecOption {
	return func(s *execSetup) {
		s.deps.Limits = l
	}
}

// WithoutRedis leaves the Redis collaborator unconfigured
func WithoutRedis() ExecOption {
	return func(s *execSetup) {
		s.deps.Redis = nil
	}
}

// WithoutFiles leaves the file collaborator unconfigured
func WithoutFiles() ExecOption {
	return func(s *execSetup) {
		s.deps.Files = nil
	}
}
