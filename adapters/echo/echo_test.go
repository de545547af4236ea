package persistecho

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pthm/persist"
)

func quiet() Option {
	return WithRegistryOptions(persist.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func post(t *testing.T, e *echo.Echo, path string, in Interaction) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestMountComponent(t *testing.T) {
	e := echo.New()
	reg := Mount(e, WithKey([]byte("echo-test")), quiet())

	reg.Component("buy", func(ctx context.Context, c echo.Context, p persist.Payload) (any, error) {
		var order struct {
			Item int `json:"item"`
		}
		if err := p.Decode(&order); err != nil {
			return nil, err
		}
		return order.Item * 2, nil
	})

	token, err := reg.Token("buy", map[string]any{"item": 21})
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	rec := post(t, e, "/interactions", Interaction{Type: "component", CustomID: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Outcome != "handled" || resp.Tag != "buy" || resp.Value != float64(42) {
		t.Errorf("response = %+v, want handled buy 42", resp)
	}
}

func TestMountModal(t *testing.T) {
	e := echo.New()
	reg := Mount(e, WithPath("/hooks"), quiet())

	called := false
	reg.Modal("feedback", func(ctx context.Context, c echo.Context, p persist.Payload) error {
		called = true
		return nil
	})

	token, _ := reg.Token("feedback", nil)
	rec := post(t, e, "/hooks", Interaction{Type: "modal", CustomID: token})
	if rec.Code != http.StatusOK || !called {
		t.Errorf("status = %d, called = %v", rec.Code, called)
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	MountGroup(e.Group("/bot"), quiet())

	rec := post(t, e, "/bot/interactions", Interaction{Type: "component", CustomID: "plain-button"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decode(t, rec); resp.Outcome != "ignored" {
		t.Errorf("outcome = %q, want ignored", resp.Outcome)
	}
}

func TestMalformedTokenContained(t *testing.T) {
	e := echo.New()
	Mount(e, quiet())

	rec := post(t, e, "/interactions", Interaction{Type: "component", CustomID: "pe~garbage"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decode(t, rec); resp.Outcome != "malformed" {
		t.Errorf("outcome = %q, want malformed", resp.Outcome)
	}
}

func TestUnknownInteractionType(t *testing.T) {
	e := echo.New()
	Mount(e, quiet())

	rec := post(t, e, "/interactions", Interaction{Type: "autocomplete", CustomID: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerError(t *testing.T) {
	e := echo.New()
	reg := Mount(e, quiet())
	reg.Component("fail", func(ctx context.Context, c echo.Context, p persist.Payload) (any, error) {
		return nil, errors.New("boom")
	})

	token, _ := reg.Token("fail", nil)
	rec := post(t, e, "/interactions", Interaction{Type: "component", CustomID: token})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandlerWritesResponse(t *testing.T) {
	e := echo.New()
	reg := Mount(e, quiet())
	reg.Component("custom", func(ctx context.Context, c echo.Context, p persist.Payload) (any, error) {
		return nil, c.String(http.StatusAccepted, "deferred")
	})

	token, _ := reg.Token("custom", nil)
	rec := post(t, e, "/interactions", Interaction{Type: "component", CustomID: token})
	if rec.Code != http.StatusAccepted || rec.Body.String() != "deferred" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
