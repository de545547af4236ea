// Package encoding packs a (tag, payload) pair into a bounded token string
// and back.
//
// A token is laid out as:
//
//	p <mode> ~ <base64url body>
//
// The first byte is the fixed Marker, the second selects the Mode and the
// third is the Separator. The body is the base64url (unpadded) encoding of a
// msgpack envelope [tag, json] which is optionally signed or encrypted
// according to the mode. The whole token never exceeds MaxLen characters.
//
// The header is versioned by its mode byte: new layouts get new mode letters
// and existing letters never change meaning.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pthm/persist/lib/cipher"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// Marker is the first character of every token.
	Marker = 'p'

	// Separator ends the fixed header.
	Separator = '~'

	// HeaderLen is the length of marker, mode and separator.
	HeaderLen = 3

	// MaxLen is the host platform's hard limit on identifier length.
	MaxLen = 100
)

// Sentinel errors for encoding and decoding tokens.
var (
	ErrTokenTooLarge  = errors.New("encoding: token exceeds length limit")
	ErrMalformedToken = errors.New("encoding: malformed token")
	ErrCipherRequired = errors.New("encoding: mode requires a cipher")
	ErrUnknownMode    = errors.New("encoding: unknown mode")
)

// b64 is strict so that a flipped trailing character cannot decode to the
// same bytes.
var b64 = base64.RawURLEncoding.Strict()

// Token is a decoded token.
type Token struct {
	Mode    Mode
	Tag     string
	Payload json.RawMessage
}

// envelope frames the tag and the JSON payload without escaping either.
type envelope struct {
	_msgpack struct{} `msgpack:",as_array"`
	Tag      string
	Body     []byte
}

// Codec encodes and decodes tokens. It is safe for concurrent use.
type Codec struct {
	cipher *cipher.Cipher
	mode   Mode
}

// NewCodec creates a codec that produces tokens in the given mode.
// A nil cipher restricts the codec to ModePlain.
func NewCodec(c *cipher.Cipher, mode Mode) (*Codec, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	if mode != ModePlain && c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCipherRequired, mode)
	}
	return &Codec{cipher: c, mode: mode}, nil
}

// Mode returns the mode used by Encode.
func (c *Codec) Mode() Mode {
	return c.mode
}

// IsToken reports whether s carries the token header. It does not validate
// the mode or the body.
func IsToken(s string) bool {
	return len(s) >= HeaderLen && s[0] == Marker && s[2] == Separator
}

// Encode packs tag and payload using the codec's mode.
func (c *Codec) Encode(tag string, payload any) (string, error) {
	return c.EncodeMode(c.mode, tag, payload)
}

// EncodeMode packs tag and payload using an explicit mode.
// It fails with ErrTokenTooLarge rather than truncating.
func (c *Codec) EncodeMode(mode Mode, tag string, payload any) (string, error) {
	token, err := c.assemble(mode, tag, payload)
	if err != nil {
		return "", err
	}
	if len(token) > MaxLen {
		return "", fmt.Errorf("%w: %d characters for tag %q, limit %d", ErrTokenTooLarge, len(token), tag, MaxLen)
	}
	return token, nil
}

// Measure returns the length the token for tag and payload would have in
// the given mode, ignoring the MaxLen limit.
func (c *Codec) Measure(mode Mode, tag string, payload any) (int, error) {
	token, err := c.assemble(mode, tag, payload)
	if err != nil {
		return 0, err
	}
	return len(token), nil
}

func (c *Codec) assemble(mode Mode, tag string, payload any) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	if mode != ModePlain && c.cipher == nil {
		return "", fmt.Errorf("%w: %s", ErrCipherRequired, mode)
	}

	data, err := marshalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("encoding: marshal payload: %w", err)
	}

	packed, err := msgpack.Marshal(&envelope{Tag: tag, Body: data})
	if err != nil {
		return "", fmt.Errorf("encoding: pack envelope: %w", err)
	}

	switch mode {
	case ModeSigned:
		packed = c.cipher.Sign(packed)
	case ModeEncrypted:
		packed = c.cipher.Encrypt(packed)
	}

	buf := make([]byte, HeaderLen, HeaderLen+b64.EncodedLen(len(packed)))
	buf[0], buf[1], buf[2] = Marker, byte(mode), Separator
	buf = b64.AppendEncode(buf, packed)
	return string(buf), nil
}

// Decode unpacks a token. Every failure wraps ErrMalformedToken.
func (c *Codec) Decode(token string) (Token, error) {
	if len(token) < HeaderLen {
		return Token{}, malformed("shorter than header")
	}
	if len(token) > MaxLen {
		return Token{}, malformed("longer than %d characters", MaxLen)
	}
	if token[0] != Marker || token[2] != Separator {
		return Token{}, malformed("missing header")
	}

	mode := Mode(token[1])
	if !mode.Valid() {
		return Token{}, malformed("unknown mode %q", token[1])
	}

	raw, err := b64.DecodeString(token[HeaderLen:])
	if err != nil {
		return Token{}, fmt.Errorf("%w: body: %w", ErrMalformedToken, err)
	}

	if mode != ModePlain && c.cipher == nil {
		return Token{}, malformed("%s token without cipher", mode)
	}

	switch mode {
	case ModeSigned:
		raw, err = c.cipher.Verify(raw)
	case ModeEncrypted:
		raw, err = c.cipher.Decrypt(raw)
	}
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	env, err := unpackEnvelope(raw)
	if err != nil {
		return Token{}, fmt.Errorf("%w: envelope: %w", ErrMalformedToken, err)
	}
	if !json.Valid(env.Body) {
		return Token{}, malformed("payload is not valid JSON")
	}

	return Token{
		Mode:    mode,
		Tag:     env.Tag,
		Payload: json.RawMessage(env.Body),
	}, nil
}

// unpackEnvelope reads an envelope field by field. Declared lengths are
// checked against the remaining input before anything is allocated, so a
// short body cannot claim a multi-gigabyte field.
func unpackEnvelope(raw []byte) (envelope, error) {
	r := bytes.NewReader(raw)
	dec := msgpack.NewDecoder(r)

	n, err := dec.DecodeArrayLen()
	if err != nil {
		return envelope{}, err
	}
	if n != 2 {
		return envelope{}, fmt.Errorf("%d fields, want 2", n)
	}

	tag, err := readField(dec, r)
	if err != nil {
		return envelope{}, fmt.Errorf("tag: %w", err)
	}
	body, err := readField(dec, r)
	if err != nil {
		return envelope{}, fmt.Errorf("body: %w", err)
	}
	if r.Len() != 0 {
		return envelope{}, fmt.Errorf("%d trailing bytes", r.Len())
	}

	return envelope{Tag: string(tag), Body: body}, nil
}

// readField reads a str or bin field. r must be the decoder's reader.
func readField(dec *msgpack.Decoder, r *bytes.Reader) ([]byte, error) {
	n, err := dec.DecodeBytesLen()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if n > r.Len() {
		return nil, fmt.Errorf("declared length %d exceeds remaining %d bytes", n, r.Len())
	}
	buf := make([]byte, n)
	if err := dec.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// marshalJSON produces compact JSON without HTML escaping, which would
// otherwise triple the size of <, > and &.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedToken}, args...)...)
}
