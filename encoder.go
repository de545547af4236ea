package persist

import (
	"errors"
	"fmt"

	"github.com/pthm/persist/lib/encoding"
)

// Token is an alias for encoding.Token for convenience.
type Token = encoding.Token

// Mode is an alias for encoding.Mode for convenience.
type Mode = encoding.Mode

// Token modes.
const (
	ModePlain     = encoding.ModePlain
	ModeSigned    = encoding.ModeSigned
	ModeEncrypted = encoding.ModeEncrypted
)

// MaxTokenLen is the length limit every produced token respects.
const MaxTokenLen = encoding.MaxLen

// IsToken reports whether s carries the token header. Strings that do not
// are left to other producers of identifiers.
func IsToken(s string) bool {
	return encoding.IsToken(s)
}

// wrapEncodingError wraps encoding package errors with persist sentinel errors.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrTokenTooLarge) {
		return fmt.Errorf("%w: %w", ErrTokenTooLarge, err)
	}
	if errors.Is(err, encoding.ErrMalformedToken) {
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return err
}

// wrapDecodeError is wrapEncodingError for decode paths, where every failure
// is a malformed token whatever codec produced it.
func wrapDecodeError(err error) error {
	err = wrapEncodingError(err)
	if err != nil && !errors.Is(err, ErrMalformedToken) {
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return err
}
