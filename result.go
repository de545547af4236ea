package persist

import "fmt"

// Outcome is what a dispatch did with an inbound identifier.
type Outcome int

const (
	// OutcomeIgnored means the identifier does not carry the token header
	// and belongs to some other producer.
	OutcomeIgnored Outcome = iota

	// OutcomeMalformed means the identifier looked like a token but could
	// not be decoded. Result.Err wraps ErrMalformedToken.
	OutcomeMalformed

	// OutcomeUnknownTag means the token decoded but no handler is registered
	// for its tag in this class. Result.Err wraps ErrUnknownTag.
	OutcomeUnknownTag

	// OutcomeHandled means the handler ran.
	OutcomeHandled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnknownTag:
		return "unknown-tag"
	case OutcomeHandled:
		return "handled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result describes one dispatch.
//
// Malformed tokens and unknown tags are contained: they are reported here,
// not as the error returned by HandleComponent or HandleModal. That error
// only ever comes from the handler itself.
type Result struct {
	Outcome Outcome
	Class   Class
	Tag     string

	// Value is the component handler's return value. Always nil for modals.
	Value any

	// Err explains OutcomeMalformed and OutcomeUnknownTag.
	Err error
}

// Handled reports whether a handler ran.
func (r Result) Handled() bool {
	return r.Outcome == OutcomeHandled
}
