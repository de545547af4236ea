package persist

import "github.com/pthm/persist/lib/encoding"

// Codec is implemented by *encoding.Codec. The registry depends on this
// interface so tests and applications can substitute their own.
//
// Decode must not panic on arbitrary input; every failure should wrap
// encoding.ErrMalformedToken.
type Codec interface {
	Encode(tag string, payload any) (string, error)
	Decode(token string) (encoding.Token, error)
}

var _ Codec = (*encoding.Codec)(nil)
