// Package orapool provides a concurrency-safe session pool for orax. It
// layers client-side acquire accounting over the driver's native session
// pool, so checkouts block fairly under contention and sessions above the
// configured maximum are never opened.
package orapool

import (
	"context"

	"github.com/jackc/puddle"
	orax "github.com/orastack/orax"
	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
	errors "golang.org/x/xerrors"
)

// Config is the configuration struct for creating a pool. Modify a Config
// returned by ParseConfig rather than constructing one from scratch.
type Config struct {
	ConnConfig *oraconn.Config

	// Driver opens the native pool. Defaults to the loaded client library;
	// tests inject a scripted driver here.
	Driver oraconn.Driver

	// AfterConnect is called after a session is checked out from the native
	// pool, but before it is added to the client-side pool.
	AfterConnect func(context.Context, *orax.Session) error

	// BeforeAcquire is called before a pooled session is handed out. It must
	// return true to allow the acquisition or false to discard the session
	// and acquire a different one.
	BeforeAcquire func(*orax.Session) bool

	Logger   orax.Logger
	LogLevel orax.LogLevel
}

// Pool is a concurrency-safe session pool.
type Pool struct {
	p      *puddle.Pool
	native oraconn.Pool
	cfg    *Config

	sessionCfg orax.SessionConfig
}

// Connect creates a new Pool, opens the native pool and warms it to the
// configured minimum session count. See oraconn.ParseConfig for the
// connString format.
func Connect(ctx context.Context, connString string) (*Pool, error) {
	config, err := ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	return ConnectConfig(ctx, config)
}

// ParseConfig builds a Config from connString.
func ParseConfig(connString string) (*Config, error) {
	connConfig, err := oraconn.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	return &Config{ConnConfig: connConfig}, nil
}

// ConnectConfig creates a new Pool from config.
func ConnectConfig(ctx context.Context, config *Config) (*Pool, error) {
	if config.ConnConfig == nil {
		return nil, errors.New("config.ConnConfig must not be nil")
	}

	driver := config.Driver
	if driver == nil {
		var err error
		driver, err = oraconn.NewNativeDriver(config.ConnConfig.ClientLibPath)
		if err != nil {
			return nil, err
		}
	}

	native, err := driver.CreatePool(ctx, config.ConnConfig.PoolConfig())
	if err != nil {
		return nil, err
	}

	p := &Pool{
		native: native,
		cfg:    config,
		sessionCfg: orax.SessionConfig{
			Logger:   config.Logger,
			LogLevel: config.LogLevel,
			Buffers: oratype.BufferConfig{
				TextExpansionFactor: config.ConnConfig.TextExpansionFactor,
				MaxLongFetchSize:    config.ConnConfig.MaxLongFetchSize,
			},
		},
	}

	p.p = puddle.NewPool(
		func(ctx context.Context) (interface{}, error) {
			conn, err := native.Checkout(ctx, oraconn.SessionFromPool|oraconn.SessionPuritySelf)
			if err != nil {
				return nil, err
			}

			if config.AfterConnect != nil {
				sess := orax.NewSession(conn, p.sessionCfg)
				if err := config.AfterConnect(ctx, sess); err != nil {
					_ = native.Return(conn)
					return nil, err
				}
			}

			return conn, nil
		},
		func(value interface{}) {
			_ = native.Return(value.(oraconn.Conn))
		},
		int32(config.ConnConfig.MaxSessions),
	)

	if err := p.warm(ctx, config.ConnConfig.MinSessions); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// warm establishes min sessions up front so the first callers do not pay
// session creation latency.
func (p *Pool) warm(ctx context.Context, min int) error {
	if min < 1 {
		min = 1
	}
	resources := make([]*puddle.Resource, 0, min)
	for len(resources) < min {
		res, err := p.p.Acquire(ctx)
		if err != nil {
			for _, r := range resources {
				r.Release()
			}
			return err
		}
		resources = append(resources, res)
	}
	for _, res := range resources {
		res.Release()
	}
	return nil
}

// Acquire checks a session out of the pool, blocking until one is available
// or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*orax.Session, error) {
	for {
		res, err := p.p.Acquire(ctx)
		if err != nil {
			return nil, err
		}

		sess := p.wrap(res)
		if p.cfg.BeforeAcquire == nil || p.cfg.BeforeAcquire(sess) {
			return sess, nil
		}

		res.Destroy()
	}
}

// Get checks a session out of the pool, waiting indefinitely when every
// session is busy. It is Acquire without a deadline.
func (p *Pool) Get() (*orax.Session, error) {
	return p.Acquire(context.Background())
}

func (p *Pool) wrap(res *puddle.Resource) *orax.Session {
	sess := orax.NewSession(res.Value().(oraconn.Conn), p.sessionCfg)
	sess.BindRelease(res.Release)
	return sess
}

// Name is the server-assigned name of the native pool.
func (p *Pool) Name() string { return p.native.Name() }

// OpenCount reports the number of sessions currently established by the
// native pool.
func (p *Pool) OpenCount() int { return p.native.OpenCount() }

// Stat returns a snapshot of client-side pool statistics.
func (p *Pool) Stat() *Stat { return &Stat{s: p.p.Stat()} }

// Close destroys the client-side pool, waits for checked-out sessions to
// come back and tears down the native pool.
func (p *Pool) Close() {
	p.p.Close()
	_ = p.native.Close(context.Background())
}
