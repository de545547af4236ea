package persist

import "encoding/json"

// Payload is the JSON an application embedded in a token, handed back
// verbatim to the handler. Handlers interpret their own shape per tag:
//
//	func (s *Shop) buy(ctx context.Context, ev *Event, p persist.Payload) (any, error) {
//	    var order struct{ Item int `json:"item"` }
//	    if err := p.Decode(&order); err != nil {
//	        return nil, err
//	    }
//	    ...
//	}
//
// An empty Payload is JSON null.
type Payload json.RawMessage

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	return json.Unmarshal(p.bytes(), v)
}

// Value unmarshals the payload into its generic JSON form
// (map[string]any, []any, string, float64, bool or nil).
func (p Payload) Value() (any, error) {
	var v any
	err := p.Decode(&v)
	return v, err
}

// MarshalJSON implements json.Marshaler, so a Payload can be embedded in a
// new token unchanged.
func (p Payload) MarshalJSON() ([]byte, error) {
	return p.bytes(), nil
}

func (p Payload) String() string {
	return string(p.bytes())
}

func (p Payload) bytes() []byte {
	if len(p) == 0 {
		return []byte("null")
	}
	return p
}
