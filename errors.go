package orax

import "github.com/pkg/errors"

// ErrNoRows occurs when rows are expected but none are returned.
var ErrNoRows = errors.New("no rows in result set")

// ErrStmtClosed occurs when a closed statement is executed or queried.
var ErrStmtClosed = errors.New("statement is closed")

// ErrSessionReleased occurs when a released session is used.
var ErrSessionReleased = errors.New("session is released")
