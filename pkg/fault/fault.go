// Package fault defines the error taxonomy shared by the texture pipeline.
//
// Three kinds of failure are distinguished:
//  1. FormatError: a magic tag, version, format code, tile mode or component
//     selector that is not recognized. Never retryable.
//  2. TruncatedDataError: a declared size or offset reaches past the bytes
//     actually available.
//  3. ErrUnsupported: a structurally valid entry that the pipeline
//     deliberately does not decode (it is excluded, not failed).
//
// TextureError attaches the texture name and mip index to any of the above.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupported marks an entry that is skipped rather than failed.
var ErrUnsupported = errors.New("unsupported feature")

// FormatError reports an unrecognized magic, version, format code or tile mode.
type FormatError struct {
	What  string // field being interpreted, e.g. "surface format"
	Value uint64 // offending raw value
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized %s: 0x%x", e.What, e.Value)
}

// Formatf returns a *FormatError for the given field and value.
func Formatf(what string, value uint64) error {
	return &FormatError{What: what, Value: value}
}

// TruncatedDataError reports that fewer bytes are available than declared.
type TruncatedDataError struct {
	What string
	Need int
	Have int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("%s truncated: need %d bytes, have %d", e.What, e.Need, e.Have)
}

// Truncated returns a *TruncatedDataError.
func Truncated(what string, need, have int) error {
	return &TruncatedDataError{What: what, Need: need, Have: have}
}

// TextureError carries the texture name and mip level a failure belongs to.
// Mip is -1 when the failure is not specific to one level.
type TextureError struct {
	Name string
	Mip  int
	Err  error
}

func (e *TextureError) Error() string {
	if e.Mip < 0 {
		return fmt.Sprintf("texture %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("texture %q mip %d: %v", e.Name, e.Mip, e.Err)
}

func (e *TextureError) Unwrap() error { return e.Err }

// IsFormat reports whether err is, or wraps, a *FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsTruncated reports whether err is, or wraps, a *TruncatedDataError.
func IsTruncated(err error) bool {
	var te *TruncatedDataError
	return errors.As(err, &te)
}
