package orax

import (
	"context"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/orastack/orax/oraconn"
	"github.com/orastack/orax/oratype"
	"github.com/pkg/errors"
)

// SessionConfig carries the per-session knobs. The zero value is usable.
type SessionConfig struct {
	Logger   Logger
	LogLevel LogLevel

	// Buffers controls output buffer sizing for statements prepared on this
	// session.
	Buffers oratype.BufferConfig
}

// Session is one checked-out database session. It is not safe for concurrent
// use. Sessions from a pool go back with Release; dedicated sessions end
// with Close.
type Session struct {
	conn oraconn.Conn
	cfg  SessionConfig

	// release returns a pooled session to its pool. nil for dedicated
	// sessions.
	release func()

	done bool
}

// NewSession wraps an established connection. Most callers get sessions from
// orapool instead.
func NewSession(conn oraconn.Conn, cfg SessionConfig) *Session {
	if cfg.LogLevel == 0 {
		cfg.LogLevel = LogLevelDebug
	}
	return &Session{conn: conn, cfg: cfg}
}

// Connect establishes a single dedicated session outside any pool.
func Connect(ctx context.Context, connString string) (*Session, error) {
	cfg, err := oraconn.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	conn, err := oraconn.Connect(ctx, nil, cfg)
	if err != nil {
		return nil, err
	}

	return NewSession(conn, SessionConfig{
		Buffers: oratype.BufferConfig{
			TextExpansionFactor: cfg.TextExpansionFactor,
			MaxLongFetchSize:    cfg.MaxLongFetchSize,
		},
	}), nil
}

// BindRelease attaches the pool return hook. Used by orapool.
func (s *Session) BindRelease(release func()) { s.release = release }

// Conn exposes the underlying connection for descriptor operations.
func (s *Session) Conn() oraconn.Conn { return s.conn }

// Prepare readies a statement for repeated execution on this session.
func (s *Session) Prepare(ctx context.Context, sql string) (*Stmt, error) {
	if s.done {
		return nil, ErrSessionReleased
	}

	s.log(ctx, LogLevelDebug, "Prepare", map[string]interface{}{"sql": sql})

	raw, err := s.conn.Prepare(ctx, sql)
	if err != nil {
		s.log(ctx, LogLevelError, "Prepare failed", map[string]interface{}{"sql": sql, "err": err})
		return nil, err
	}
	return &Stmt{sess: s, raw: raw, sql: sql}, nil
}

// Ping checks that the session is still alive.
func (s *Session) Ping(ctx context.Context) error {
	if s.done {
		return ErrSessionReleased
	}
	return s.conn.Ping(ctx)
}

var versionRegexp = regexp.MustCompile(`\d+\.\d+\.\d+(\.\d+)*`)

// ServerVersion parses the server's version banner. The banner carries five
// components; only the first three participate in comparisons.
func (s *Session) ServerVersion() (*semver.Version, error) {
	banner := s.conn.ServerVersion()
	m := versionRegexp.FindString(banner)
	if m == "" {
		return nil, errors.Errorf("no version in banner %q", banner)
	}
	v, err := semver.NewVersion(splitN(m, '.', 3))
	if err != nil {
		return nil, errors.WithMessagef(err, "banner %q", banner)
	}
	return v, nil
}

// splitN keeps at most n dot-separated components of s.
func splitN(s string, sep byte, n int) string {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			count++
			if count == n {
				return s[:i]
			}
		}
	}
	return s
}

// Release returns a pooled session to its pool, or closes a dedicated one.
// A released session is dead to the caller either way.
func (s *Session) Release() {
	if s.done {
		return
	}
	s.done = true
	if s.release != nil {
		s.release()
		return
	}
	_ = s.conn.Close(context.Background())
}

// Close ends a dedicated session. Pooled sessions use Release.
func (s *Session) Close(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	if s.release != nil {
		s.release()
		return nil
	}
	return s.conn.Close(ctx)
}

func (s *Session) log(ctx context.Context, level LogLevel, msg string, data map[string]interface{}) {
	if s.cfg.Logger == nil || s.cfg.LogLevel < level {
		return
	}
	s.cfg.Logger.Log(ctx, level, msg, data)
}

func (s *Session) shouldLog(level LogLevel) bool {
	return s.cfg.Logger != nil && s.cfg.LogLevel >= level
}
