// Package oramock is a scripted in-memory implementation of the oraconn
// driver boundary. Tests register users and per-statement scripts on a
// Driver, then run the full session, statement and conversion stack against
// it without a database or client library.
package oramock

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/orastack/orax/oraconn"
	"golang.org/x/crypto/pbkdf2"
)

const credentialIterations = 4096

type credential struct {
	salt []byte
	hash []byte
}

// Driver is a scripted driver. One Driver may back any number of pools and
// dedicated connections; its scripts are shared by all of them.
type Driver struct {
	mu      sync.Mutex
	users   map[string]credential
	scripts map[string]*Script
	banner  string

	poolSeq int
}

// NewDriver returns an empty scripted driver. Register users and scripts
// before connecting.
func NewDriver() *Driver {
	return &Driver{
		users:   make(map[string]credential),
		scripts: make(map[string]*Script),
		banner:  "Oracle Database 19c Enterprise Edition Release 19.3.0.0.0 - Production",
	}
}

// SetServerBanner overrides the version banner reported by sessions.
func (d *Driver) SetServerBanner(banner string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.banner = banner
}

// RegisterUser adds credentials the driver will accept. The password itself
// is not retained.
func (d *Driver) RegisterUser(user, password string) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	hash := pbkdf2.Key([]byte(password), salt, credentialIterations, 32, sha256.New)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user] = credential{salt: salt, hash: hash}
}

func (d *Driver) authenticate(user, password string) error {
	d.mu.Lock()
	cred, ok := d.users[user]
	d.mu.Unlock()

	if ok {
		hash := pbkdf2.Key([]byte(password), cred.salt, credentialIterations, 32, sha256.New)
		if subtle.ConstantTimeCompare(hash, cred.hash) == 1 {
			return nil
		}
	}
	return &oraconn.OraError{Code: oraconn.ErrCodeInvalidCredentials, Message: "invalid username/password; logon denied"}
}

func (d *Driver) script(sql string) (*Script, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.scripts[sql]
	if !ok {
		return nil, &oraconn.OraError{Code: 900, Message: "invalid SQL statement"}
	}
	return s, nil
}

// CreatePool implements oraconn.Driver.
func (d *Driver) CreatePool(ctx context.Context, cfg oraconn.PoolConfig) (oraconn.Pool, error) {
	if cfg.Homogeneous {
		if err := d.authenticate(cfg.User, cfg.Password); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	d.poolSeq++
	name := fmt.Sprintf("OMOCK_POOL_%d", d.poolSeq)
	d.mu.Unlock()

	max := cfg.MaxSessions
	if max < 1 {
		max = 1
	}
	return &Pool{driver: d, cfg: cfg, name: name, max: max}, nil
}

// Connect implements oraconn.Driver.
func (d *Driver) Connect(ctx context.Context, database, user, password string) (oraconn.Conn, error) {
	if err := d.authenticate(user, password); err != nil {
		return nil, err
	}
	return newConn(d, nil), nil
}

// Pool is the scripted native session pool. It enforces the configured
// maximum strictly: a checkout beyond it fails with the pool-exhausted code
// rather than opening another session.
type Pool struct {
	driver *Driver
	cfg    oraconn.PoolConfig
	name   string
	max    int

	mu     sync.Mutex
	open   int
	closed bool
}

// Checkout implements oraconn.Pool. It never blocks; callers that want
// blocking semantics layer it on top, which is exactly what orapool does.
func (p *Pool) Checkout(ctx context.Context, flags oraconn.SessionFlags) (oraconn.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, &oraconn.OraError{Code: 24416, Message: "session pool is closed"}
	}
	if p.open >= p.max {
		return nil, &oraconn.OraError{Code: oraconn.ErrCodePoolExhausted, Message: "cannot open further sessions"}
	}
	p.open++
	return newConn(p.driver, p), nil
}

// Return implements oraconn.Pool.
func (p *Pool) Return(conn oraconn.Conn) error {
	c, ok := conn.(*Conn)
	if !ok {
		return fmt.Errorf("foreign connection returned to %s", p.name)
	}
	c.shutdown()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open > 0 {
		p.open--
	}
	return nil
}

// Name implements oraconn.Pool.
func (p *Pool) Name() string { return p.name }

// OpenCount implements oraconn.Pool.
func (p *Pool) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Close implements oraconn.Pool.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// descriptor is one live server-side object handed out by a fetch.
type descriptor struct {
	kind    oraconn.TypeCode
	content []byte
	text    string
	stmt    *Stmt
}

// Conn is one scripted session.
type Conn struct {
	driver *Driver
	pool   *Pool

	mu          sync.Mutex
	nextHandle  uint64
	descriptors map[uint64]*descriptor
	closed      bool
	pingErr     error
}

func newConn(d *Driver, p *Pool) *Conn {
	return &Conn{
		driver:      d,
		pool:        p,
		nextHandle:  1,
		descriptors: make(map[uint64]*descriptor),
	}
}

// FailPing makes subsequent pings report err. Used to test session health
// handling.
func (c *Conn) FailPing(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pingErr = err
}

func (c *Conn) register(desc *descriptor) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.nextHandle
	c.nextHandle++
	c.descriptors[h] = desc
	return h
}

func (c *Conn) descriptor(handle uint64) (*descriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.descriptors[handle]
	if !ok {
		return nil, &oraconn.OraError{Code: 22922, Message: "nonexistent LOB value"}
	}
	return d, nil
}

// OpenDescriptors reports how many descriptors are still allocated, for leak
// assertions in tests.
func (c *Conn) OpenDescriptors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.descriptors)
}

// Prepare implements oraconn.Conn.
func (c *Conn) Prepare(ctx context.Context, sql string) (oraconn.Stmt, error) {
	if c.closed {
		return nil, &oraconn.OraError{Code: 3113, Message: "end-of-file on communication channel"}
	}
	script, err := c.driver.script(sql)
	if err != nil {
		return nil, err
	}
	return newStmt(c, script), nil
}

// Ping implements oraconn.Conn.
func (c *Conn) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &oraconn.OraError{Code: 3113, Message: "end-of-file on communication channel"}
	}
	return c.pingErr
}

// ServerVersion implements oraconn.Conn.
func (c *Conn) ServerVersion() string {
	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()
	return c.driver.banner
}

// RowidText implements oraconn.Conn.
func (c *Conn) RowidText(handle uint64) (string, error) {
	d, err := c.descriptor(handle)
	if err != nil {
		return "", err
	}
	if d.kind != oraconn.TypeCodeRowID {
		return "", &oraconn.OraError{Code: 1410, Message: "invalid ROWID"}
	}
	return d.text, nil
}

// LobLength implements oraconn.Conn.
func (c *Conn) LobLength(ctx context.Context, handle uint64) (int64, error) {
	d, err := c.descriptor(handle)
	if err != nil {
		return 0, err
	}
	return int64(len(d.content)), nil
}

// LobRead implements oraconn.Conn.
func (c *Conn) LobRead(ctx context.Context, handle uint64, offset int64, p []byte) (int, error) {
	d, err := c.descriptor(handle)
	if err != nil {
		return 0, err
	}
	if offset < 0 || offset > int64(len(d.content)) {
		return 0, &oraconn.OraError{Code: 22990, Message: "LOB offset out of range"}
	}
	return copy(p, d.content[offset:]), nil
}

// OpenCursor implements oraconn.Conn.
func (c *Conn) OpenCursor(handle uint64) (oraconn.Stmt, error) {
	d, err := c.descriptor(handle)
	if err != nil {
		return nil, err
	}
	if d.kind != oraconn.TypeCodeCursor || d.stmt == nil {
		return nil, &oraconn.OraError{Code: 24338, Message: "statement handle not executed"}
	}

	c.mu.Lock()
	delete(c.descriptors, handle)
	c.mu.Unlock()
	return d.stmt, nil
}

// DescriptorFree implements oraconn.Conn.
func (c *Conn) DescriptorFree(handle uint64) error {
	if handle == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.descriptors, handle)
	return nil
}

func (c *Conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.descriptors = make(map[uint64]*descriptor)
}

// Close implements oraconn.Conn.
func (c *Conn) Close(ctx context.Context) error {
	c.shutdown()
	return nil
}
