package persist

import "errors"

// Sentinel errors for token and dispatch operations.
var (
	ErrTokenTooLarge  = errors.New("persist: token too large")
	ErrMalformedToken = errors.New("persist: malformed token")
	ErrUnknownTag     = errors.New("persist: no handler for tag")
)

// IsTokenTooLarge checks if err reports a token over the length limit.
// The caller must shorten the tag or the payload.
func IsTokenTooLarge(err error) bool {
	return errors.Is(err, ErrTokenTooLarge)
}

// IsMalformed checks if err reports a token that could not be decoded,
// including tampered tokens and tokens from a previous key.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedToken)
}

// IsUnknownTag checks if err reports a token whose tag has no handler.
func IsUnknownTag(err error) bool {
	return errors.Is(err, ErrUnknownTag)
}
