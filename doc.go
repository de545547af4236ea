// Package persist attaches application state to the short opaque
// identifiers a chat or UI platform echoes back when a user interacts with
// a component or submits a modal.
//
// An application picks a tag for each handler and embeds a JSON payload in
// the identifier when it builds the interactive element. When the
// identifier comes back, the registry decodes it and calls the handler for
// that tag with the payload. No server-side session storage is involved;
// the identifier is the state.
//
// # Core Concepts
//
// Handlers are registered on an explicitly constructed Registry. C is the
// host's event context type, passed through untouched:
//
//	reg := persist.NewRegistry[*Event](persist.WithPassphrase(secret))
//	reg.Component("buy", shop.buy)
//	reg.Modal("feedback", shop.feedback)
//
// Tokens are produced with the same registry:
//
//	id, err := reg.Token("buy", map[string]any{"item": 42})
//
// and the host's event hooks hand inbound identifiers to the registry:
//
//	result, err := reg.HandleComponent(ctx, ev, ev.CustomID)
//
// Component and modal tags live in separate namespaces.
//
// # Token Format
//
// Tokens are at most 100 characters: a fixed marker, a mode byte, a
// separator, then a base64url body. See package lib/encoding for the exact
// layout. Producing a token that would exceed the limit fails with
// ErrTokenTooLarge; nothing is truncated.
//
// # Security Model
//
// Payloads are protected in one of three modes:
//   - Encrypted (default): AES-256-GCM, opaque and tamper-evident
//   - Signed: HMAC-authenticated, visible but tamper-proof
//   - Plain: visible and unauthenticated
//
// The key comes from WithKey or PERSIST_CIPHER_KEY. Without one, a random
// key is generated at startup and tokens issued before a restart stop
// decoding. That is expected: stale tokens are dropped like any other
// malformed token.
//
// This package does not authenticate the remote party and does not prevent
// replay of a valid token.
//
// # Error Handling
//
// Dispatch never fails because of its input. Identifiers without the token
// header are ignored, malformed or tampered tokens are logged at info level
// and dropped, and tokens whose tag has no handler are a debug-level no-op.
// Result.Outcome tells the caller which of these happened. The only error
// HandleComponent and HandleModal return is the handler's own, and handler
// panics are not recovered.
package persist
