package persist

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPayloadDecode(t *testing.T) {
	var order struct {
		Item int `json:"item"`
	}
	if err := Payload(`{"item":42}`).Decode(&order); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if order.Item != 42 {
		t.Errorf("Item = %d, want 42", order.Item)
	}
}

func TestPayloadValue(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    any
	}{
		{"object", Payload(`{"a":[1,"b"]}`), map[string]any{"a": []any{float64(1), "b"}}},
		{"string", Payload(`"hello"`), "hello"},
		{"bool", Payload(`true`), true},
		{"null", Payload(`null`), nil},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.payload.Value()
			if err != nil {
				t.Fatalf("Value() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Value() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPayloadMarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]any{"prev": Payload(`{"n":1}`), "none": Payload(nil)})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if got, want := string(out), `{"none":null,"prev":{"n":1}}`; got != want {
		t.Errorf("json.Marshal() = %s, want %s", got, want)
	}
}
