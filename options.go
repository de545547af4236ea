package persist

import (
	"log/slog"

	"github.com/pthm/persist/lib/encoding"
)

// Option configures NewRegistry.
type Option func(*options)

type options struct {
	key    []byte
	mode   encoding.Mode
	codec  Codec
	logger *slog.Logger
}

// WithKey sets the cipher secret. Tokens stay valid across restarts for as
// long as the same secret is configured. Any length is accepted; it is
// stretched into subkeys.
// If not provided, a random key is generated and tokens from a previous run
// become undecodable.
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPassphrase is WithKey for a string secret.
func WithPassphrase(passphrase string) Option {
	return WithKey([]byte(passphrase))
}

// WithMode sets the mode new tokens are produced in. Defaults to
// ModeEncrypted. Tokens in every mode are accepted when decoding.
func WithMode(mode encoding.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithCodec replaces the codec entirely. WithKey and WithMode are ignored.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
