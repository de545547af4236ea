package encoding

import "fmt"

// Mode is the header byte that selects how a token body is protected.
type Mode byte

const (
	// ModePlain leaves the envelope readable and unauthenticated.
	ModePlain Mode = 'r'

	// ModeSigned leaves the envelope readable but appends an HMAC.
	ModeSigned Mode = 's'

	// ModeEncrypted makes the envelope opaque and tamper-evident.
	ModeEncrypted Mode = 'e'
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePlain, ModeSigned, ModeEncrypted:
		return true
	}
	return false
}

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeSigned:
		return "signed"
	case ModeEncrypted:
		return "encrypted"
	}
	return fmt.Sprintf("Mode(%q)", byte(m))
}

// ParseMode parses "plain", "signed" or "encrypted".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "plain":
		return ModePlain, nil
	case "signed":
		return ModeSigned, nil
	case "encrypted":
		return ModeEncrypted, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so modes can be read
// from configuration.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
