package oraconn

import (
	"context"
	"errors"
	"fmt"
)

// Well-known server error codes the engine inspects. Everything else is
// passed through verbatim.
const (
	ErrCodeInvalidCredentials = 1017  // invalid username/password
	ErrCodeAccountLocked      = 28000 // the account is locked
	ErrCodePoolExhausted      = 24418 // cannot open further sessions
	ErrCodeValueTooLarge      = 6502  // numeric or value error on an OUT bind
)

// OraError is a server-reported error. Code and Message are propagated
// exactly as received; the engine never renumbers or rewrites them.
type OraError struct {
	Code    int
	Message string
}

func (e *OraError) Error() string {
	return fmt.Sprintf("ORA-%05d: %s", e.Code, e.Message)
}

// IsAuthError reports whether err is a server rejection of the supplied
// credentials.
func IsAuthError(err error) bool {
	var oraErr *OraError
	if errors.As(err, &oraErr) {
		return oraErr.Code == ErrCodeInvalidCredentials || oraErr.Code == ErrCodeAccountLocked
	}
	return false
}

// IsPoolExhausted reports whether err means the native pool had no session
// to give out and no headroom to grow.
func IsPoolExhausted(err error) bool {
	var oraErr *OraError
	if errors.As(err, &oraErr) {
		return oraErr.Code == ErrCodePoolExhausted
	}
	return false
}

type connectError struct {
	config *Config
	msg    string
	err    error
}

func (e *connectError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("failed to connect to `database=%s user=%s`: %s", e.config.Database, e.config.User, e.msg)
	}
	return fmt.Sprintf("failed to connect to `database=%s user=%s`: %s (%s)", e.config.Database, e.config.User, e.msg, e.err.Error())
}

func (e *connectError) Unwrap() error {
	return e.err
}

type parseConfigError struct {
	connString string
	msg        string
	err        error
}

func (e *parseConfigError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("cannot parse `%s`: %s", redactPassword(e.connString), e.msg)
	}
	return fmt.Sprintf("cannot parse `%s`: %s (%s)", redactPassword(e.connString), e.msg, e.err.Error())
}

func (e *parseConfigError) Unwrap() error {
	return e.err
}

// Timeout reports whether err was caused by a context deadline or
// cancellation while waiting on the driver.
func Timeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
