package assets

import (
	"errors"
	"fmt"
)

// ErrorKind classifies asset failures.
type ErrorKind int

const (
	// KindIO wraps a filesystem error.
	KindIO ErrorKind = iota + 1
	// KindInvalidAssetType reports an unknown asset type name.
	KindInvalidAssetType
	// KindAssetNotFound reports a lookup of an asset that is not loaded.
	KindAssetNotFound
	// KindFormat reports malformed input such as a bad custom type id.
	KindFormat
	// KindOther covers everything else.
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindInvalidAssetType:
		return "invalid asset type"
	case KindAssetNotFound:
		return "asset not found"
	case KindFormat:
		return "format error"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by every failing asset operation.
type Error struct {
	Kind ErrorKind
	Name string
	Err  error
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrIO               = &Error{Kind: KindIO}
	ErrInvalidAssetType = &Error{Kind: KindInvalidAssetType}
	ErrAssetNotFound    = &Error{Kind: KindAssetNotFound}
	ErrFormat           = &Error{Kind: KindFormat}
	ErrOther            = &Error{Kind: KindOther}
)

func (e *Error) Error() string {
	msg := "assets: " + e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrAssetNotFound)
// holds regardless of the asset name.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, name string, err error) *Error {
	return &Error{Kind: kind, Name: name, Err: err}
}
