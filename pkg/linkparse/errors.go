package linkparse

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies domain-level resolution failures.
type ParseErrorKind int

const (
	// ParseNoMatch means no registered pattern matched the URL.
	ParseNoMatch ParseErrorKind = iota
	// ParseNotFound means the provider API succeeded but returned an empty result set.
	ParseNotFound
	// ParseRestricted means playback was explicitly denied (rights/VIP).
	ParseRestricted
	// ParseUnavailable means playback was denied for any other reason.
	ParseUnavailable
)

// RequestError is a network-class failure: a non-2xx/3xx HTTP status from a
// provider API. Callers may treat these as transient, unlike ParseError.
type RequestError struct {
	Platform string
	Status   int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("[%s] request failed with HTTP %d", e.Platform, e.Status)
}

// ParseError is a domain-class failure: the provider answered, but the link
// cannot be resolved to a playable result.
type ParseError struct {
	Platform string
	Kind     ParseErrorKind
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Platform, e.Message)
}

func newParseError(platform string, kind ParseErrorKind, message string) *ParseError {
	return &ParseError{Platform: platform, Kind: kind, Message: message}
}

// AsRequestError unwraps err as a RequestError, if it is one.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	ok := errors.As(err, &re)
	return re, ok
}

// AsParseError unwraps err as a ParseError, if it is one.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	ok := errors.As(err, &pe)
	return pe, ok
}
