package persist

import (
	"context"
	"fmt"
)

// Class is the kind of interaction a token is used for. Each class has its
// own tag namespace, so a component tag and a modal tag may collide.
type Class int

const (
	// ClassComponent covers interactive component activations.
	ClassComponent Class = iota

	// ClassModal covers modal submissions.
	ClassModal

	numClasses
)

func (c Class) String() string {
	switch c {
	case ClassComponent:
		return "component"
	case ClassModal:
		return "modal"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ComponentHandler handles a component activation. C is the host's event
// context, opaque to persist. The returned value is handed back to the
// caller of HandleComponent in Result.Value.
type ComponentHandler[C any] func(ctx context.Context, c C, p Payload) (any, error)

// ModalHandler handles a modal submission.
type ModalHandler[C any] func(ctx context.Context, c C, p Payload) error

// callback is the common shape both handler kinds are stored as.
type callback[C any] func(ctx context.Context, c C, p Payload) (any, error)

// Handle refers to one registration.
type Handle struct {
	class  Class
	tag    string
	remove func() bool
}

// Class returns the class the handler was registered in.
func (h *Handle) Class() Class {
	return h.class
}

// Tag returns the tag the handler was registered under.
func (h *Handle) Tag() string {
	return h.tag
}

// Remove unregisters the handler. It reports false if the registration was
// already removed or replaced by a later one for the same tag.
func (h *Handle) Remove() bool {
	return h.remove()
}
