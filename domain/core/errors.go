package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrStateNotFound = fmt.Errorf("%w: selection state", ErrNotFound)
	ErrViewNotFound  = fmt.Errorf("%w: view", ErrNotFound)

	// Input errors
	ErrUnknownFacet  = errors.New("unknown facet")
	ErrUnknownView   = errors.New("unknown view")
	ErrCorruptState  = errors.New("corrupt selection state")
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrNotEnoughData = errors.New("not enough data to render")

	// Source errors
	ErrSourceUnreachable = errors.New("data source unreachable")
	ErrMalformedSource   = errors.New("malformed data source")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewUnknownFacetError(facet string) error {
	return fmt.Errorf("%w: %q", ErrUnknownFacet, facet)
}

func NewUnknownViewError(view string) error {
	return fmt.Errorf("%w: %q", ErrUnknownView, view)
}

func NewMalformedSourceError(source string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrMalformedSource, source, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownFacet) ||
		errors.Is(err, ErrUnknownView)
}

func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceUnreachable) ||
		errors.Is(err, ErrMalformedSource)
}
