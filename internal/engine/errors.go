package engine

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies an operation failure.
type Kind int

const (
	KindIO Kind = iota
	KindNotFound
	KindPermission
	KindHash
)

var kindNames = [...]string{
	KindIO:         "io",
	KindNotFound:   "not_found",
	KindPermission: "permission",
	KindHash:       "hash",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// OpError is a failed filesystem operation. Every error the engine counts
// or emits is an *OpError so consumers can report the operation, the path
// and the failure class without parsing message strings.
type OpError struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// opErr wraps err with its classification. Already-wrapped errors pass
// through unchanged so the original operation is preserved.
func opErr(op, path string, err error) *OpError {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe
	}
	return &OpError{Op: op, Path: path, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	default:
		return KindIO
	}
}
