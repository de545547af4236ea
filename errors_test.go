package persist

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/persist/lib/cipher"
	"github.com/pthm/persist/lib/encoding"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrTokenTooLarge,
		ErrMalformedToken,
		ErrUnknownTag,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsTokenTooLarge(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrTokenTooLarge", ErrTokenTooLarge, true},
		{"wrapped", fmt.Errorf("wrapped: %w", ErrTokenTooLarge), true},
		{"encoding cause only", encoding.ErrTokenTooLarge, false},
		{"ErrMalformedToken", ErrMalformedToken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTokenTooLarge(tt.err); got != tt.expect {
				t.Errorf("IsTokenTooLarge(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrMalformedToken", ErrMalformedToken, true},
		{"wrapped", fmt.Errorf("wrapped: %w", ErrMalformedToken), true},
		{"ErrUnknownTag", ErrUnknownTag, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMalformed(tt.err); got != tt.expect {
				t.Errorf("IsMalformed(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsUnknownTag(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrUnknownTag", ErrUnknownTag, true},
		{"wrapped", fmt.Errorf("component %q: %w", "buy", ErrUnknownTag), true},
		{"ErrMalformedToken", ErrMalformedToken, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnknownTag(tt.err); got != tt.expect {
				t.Errorf("IsUnknownTag(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestWrapEncodingError(t *testing.T) {
	other := errors.New("json: unsupported type")

	tests := []struct {
		name          string
		err           error
		wantTooLarge  bool
		wantMalformed bool
	}{
		{"too large", fmt.Errorf("%w: 120 characters", encoding.ErrTokenTooLarge), true, false},
		{"malformed", fmt.Errorf("%w: body", encoding.ErrMalformedToken), false, true},
		{"other", other, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapEncodingError(tt.err)
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("wrapped error lost its cause: %v", wrapped)
			}
			if got := IsTokenTooLarge(wrapped); got != tt.wantTooLarge {
				t.Errorf("IsTokenTooLarge = %v, want %v", got, tt.wantTooLarge)
			}
			if got := IsMalformed(wrapped); got != tt.wantMalformed {
				t.Errorf("IsMalformed = %v, want %v", got, tt.wantMalformed)
			}
		})
	}

	if wrapEncodingError(nil) != nil {
		t.Error("wrapEncodingError(nil) should be nil")
	}
}

func TestWrapDecodeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"encoding malformed", fmt.Errorf("%w: missing header", encoding.ErrMalformedToken)},
		{"cipher failure", cipher.ErrDecryptFailed},
		{"foreign codec error", errors.New("custom codec: bad token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapDecodeError(tt.err)
			if !IsMalformed(wrapped) {
				t.Errorf("wrapDecodeError(%v) = %v, want ErrMalformedToken", tt.err, wrapped)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("wrapped error lost its cause: %v", wrapped)
			}
		})
	}
}
