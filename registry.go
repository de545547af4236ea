package persist

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/pthm/persist/lib/cipher"
	"github.com/pthm/persist/lib/encoding"
)

// entry is one registered handler. Entries are compared by pointer so a
// Handle only removes its own registration.
type entry[C any] struct {
	fn callback[C]
}

// Registry manages handler registration and dispatch of inbound tokens.
//
// C is the host's event context type. The registry never inspects it; it is
// passed through to handlers unchanged.
type Registry[C any] struct {
	mu     sync.RWMutex
	codec  Codec
	logger *slog.Logger
	tables [numClasses]map[string]*entry[C]
}

// NewRegistry creates a registry. Without WithKey or WithCodec a random key
// is generated and tokens will not survive a restart.
//
// Panics if the codec cannot be constructed (for example an unknown mode).
func NewRegistry[C any](opts ...Option) *Registry[C] {
	o := &options{mode: encoding.ModeEncrypted}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	codec := o.codec
	if codec == nil {
		c, err := newCodec(o)
		if err != nil {
			panic(fmt.Sprintf("persist: failed to create codec: %v", err))
		}
		codec = c
	}

	reg := &Registry[C]{
		codec:  codec,
		logger: o.logger,
	}
	for i := range reg.tables {
		reg.tables[i] = make(map[string]*entry[C])
	}
	return reg
}

func newCodec(o *options) (*encoding.Codec, error) {
	var (
		c   *cipher.Cipher
		err error
	)
	if len(o.key) > 0 {
		c, err = cipher.New(o.key)
	} else {
		c, err = cipher.Generate()
		o.logger.Info("no cipher key configured, using a random key; tokens will not survive a restart")
	}
	if err != nil {
		return nil, err
	}
	return encoding.NewCodec(c, o.mode)
}

// Codec returns the registry's codec.
func (reg *Registry[C]) Codec() Codec {
	return reg.codec
}

// Component registers a handler for component tokens carrying tag.
// A later registration for the same tag replaces this one.
func (reg *Registry[C]) Component(tag string, h ComponentHandler[C]) *Handle {
	return reg.register(ClassComponent, tag, callback[C](h))
}

// Modal registers a handler for modal tokens carrying tag.
// A later registration for the same tag replaces this one.
func (reg *Registry[C]) Modal(tag string, h ModalHandler[C]) *Handle {
	return reg.register(ClassModal, tag, func(ctx context.Context, c C, p Payload) (any, error) {
		return nil, h(ctx, c, p)
	})
}

func (reg *Registry[C]) register(class Class, tag string, fn callback[C]) *Handle {
	e := &entry[C]{fn: fn}

	reg.mu.Lock()
	_, replaced := reg.tables[class][tag]
	reg.tables[class][tag] = e
	reg.mu.Unlock()

	if replaced {
		reg.logger.Debug("replaced persistent handler", "class", class, "tag", tag)
	} else {
		reg.logger.Debug("registered persistent handler", "class", class, "tag", tag)
	}

	return &Handle{
		class: class,
		tag:   tag,
		remove: func() bool {
			reg.mu.Lock()
			defer reg.mu.Unlock()
			if reg.tables[class][tag] != e {
				return false
			}
			delete(reg.tables[class], tag)
			return true
		},
	}
}

// Tags returns the registered tags of a class in sorted order.
func (reg *Registry[C]) Tags(class Class) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return slices.Sorted(maps.Keys(reg.tables[class]))
}

// Close removes every handler. Tokens dispatched afterwards resolve to
// OutcomeUnknownTag.
func (reg *Registry[C]) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i := range reg.tables {
		clear(reg.tables[i])
	}
}

// Token produces a token for tag and payload. It fails with
// ErrTokenTooLarge if the result would exceed MaxTokenLen; shorten the tag
// or the payload.
func (reg *Registry[C]) Token(tag string, payload any) (string, error) {
	token, err := reg.codec.Encode(tag, payload)
	if err != nil {
		return "", wrapEncodingError(err)
	}
	return token, nil
}

// HandleComponent dispatches a component activation carrying rawID.
//
// The returned error is the handler's own. Foreign identifiers, malformed
// tokens and unknown tags are reported through Result only.
func (reg *Registry[C]) HandleComponent(ctx context.Context, c C, rawID string) (Result, error) {
	return reg.dispatch(ctx, ClassComponent, c, rawID)
}

// HandleModal dispatches a modal submission carrying rawID.
func (reg *Registry[C]) HandleModal(ctx context.Context, c C, rawID string) (Result, error) {
	return reg.dispatch(ctx, ClassModal, c, rawID)
}

func (reg *Registry[C]) dispatch(ctx context.Context, class Class, c C, rawID string) (Result, error) {
	if !encoding.IsToken(rawID) {
		return Result{Outcome: OutcomeIgnored, Class: class}, nil
	}

	token, err := reg.codec.Decode(rawID)
	if err != nil {
		err = wrapDecodeError(err)
		reg.logger.Info("interaction made with invalid persistent token, skipping",
			"class", class,
			"error", err)
		return Result{Outcome: OutcomeMalformed, Class: class, Err: err}, nil
	}

	reg.mu.RLock()
	e := reg.tables[class][token.Tag]
	reg.mu.RUnlock()

	if e == nil {
		reg.logger.Debug("no persistent handler for tag", "class", class, "tag", token.Tag)
		return Result{
			Outcome: OutcomeUnknownTag,
			Class:   class,
			Tag:     token.Tag,
			Err:     fmt.Errorf("%w: %s %q", ErrUnknownTag, class, token.Tag),
		}, nil
	}

	value, err := e.fn(ctx, c, Payload(token.Payload))
	return Result{
		Outcome: OutcomeHandled,
		Class:   class,
		Tag:     token.Tag,
		Value:   value,
	}, err
}
