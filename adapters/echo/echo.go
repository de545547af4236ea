// Package persistecho serves persistent tokens over an Echo HTTP endpoint.
//
// Hosts that receive platform interactions as webhooks can forward them to
// a mounted endpoint instead of calling the registry directly:
//
//	e := echo.New()
//	reg := persistecho.Mount(e, persistecho.WithKey(key))
//	reg.Component("buy", buy)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/bot", verifySignature)
//	reg := persistecho.MountGroup(g)
//
// Handlers receive the echo.Context of the request as their event context.
package persistecho

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pthm/persist"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path    string
	persist []persist.Option
}

// WithKey sets the cipher secret for the registry.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.persist = append(o.persist, persist.WithKey(key))
	}
}

// WithRegistryOptions passes options through to persist.NewRegistry.
func WithRegistryOptions(opts ...persist.Option) Option {
	return func(o *options) {
		o.persist = append(o.persist, opts...)
	}
}

// WithPath sets the route the endpoint is mounted on.
// Defaults to "/interactions".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// Interaction is the request body accepted by the endpoint.
type Interaction struct {
	// Type is "component" or "modal".
	Type     string `json:"type"`
	CustomID string `json:"custom_id"`
}

// Response is written for every interaction the registry accepted,
// including ignored and malformed ones.
type Response struct {
	Outcome string `json:"outcome"`
	Tag     string `json:"tag,omitempty"`
	Value   any    `json:"value,omitempty"`
}

// Mount creates a registry and mounts the interactions endpoint on an Echo
// instance.
func Mount(e *echo.Echo, opts ...Option) *persist.Registry[echo.Context] {
	m := newMounted(opts)
	e.POST(m.path, m.handle)
	return m.reg
}

// MountGroup creates a registry and mounts the interactions endpoint on an
// Echo group, so it shares the group's middleware.
func MountGroup(g *echo.Group, opts ...Option) *persist.Registry[echo.Context] {
	m := newMounted(opts)
	g.POST(m.path, m.handle)
	return m.reg
}

type mounted struct {
	reg  *persist.Registry[echo.Context]
	path string
}

func newMounted(opts []Option) *mounted {
	o := &options{path: "/interactions"}
	for _, opt := range opts {
		opt(o)
	}
	return &mounted{
		reg:  persist.NewRegistry[echo.Context](o.persist...),
		path: o.path,
	}
}

func (m *mounted) handle(c echo.Context) error {
	var in Interaction
	if err := c.Bind(&in); err != nil {
		return err
	}

	ctx := c.Request().Context()

	var (
		result persist.Result
		err    error
	)
	switch in.Type {
	case "component":
		result, err = m.reg.HandleComponent(ctx, c, in.CustomID)
	case "modal":
		result, err = m.reg.HandleModal(ctx, c, in.CustomID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown interaction type")
	}
	if err != nil {
		return err
	}

	// A handler may already have written its own response.
	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusOK, Response{
		Outcome: result.Outcome.String(),
		Tag:     result.Tag,
		Value:   result.Value,
	})
}
