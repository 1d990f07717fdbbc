// Package linkparse provides pattern-based music link resolution for chat bots.
package linkparse

import (
	"context"
	"regexp"
	"time"
)

// Platform identifies the music service a parser handles.
type Platform struct {
	Name        string // Short machine name (e.g. "ncm").
	DisplayName string // Human-readable name for attribution.
}

// ContentType distinguishes the kinds of payload a result can carry.
type ContentType int

const (
	// ContentTypeImage is a cover or still image reference.
	ContentTypeImage ContentType = iota
	// ContentTypeAudio is a playable audio stream reference.
	ContentTypeAudio
)

// ContentItem is one piece of a result's payload.
type ContentItem struct {
	Type     ContentType
	URL      string
	Duration int // Whole seconds, audio only. 0 means unknown.
}

// Author holds attribution for a resolved result.
type Author struct {
	Name   string
	Avatar string
}

// Result is the normalized output handed back to the host framework.
// It is only constructed once both metadata and a playable URL were obtained;
// missing optional metadata degrades to zero values.
type Result struct {
	Title     string
	Text      string
	Author    *Author
	Contents  []ContentItem
	Timestamp time.Time // Zero value means no timestamp.
	URL       string    // Canonical source URL.
	Platform  Platform
}

// ContentFactory builds the pieces of a Result. Parsers depend on this
// capability contract via injection rather than constructing results directly.
type ContentFactory interface {
	NewAuthor(name, avatar string) *Author
	NewAudioContent(url string, durationSecs int) ContentItem
	NewImageContents(urls []string) []ContentItem
	NewResult(platform Platform, title, text string, author *Author, contents []ContentItem, timestamp time.Time, url string) *Result
}

// Match is the regex match context for one dispatch call.
type Match struct {
	text   string
	groups map[string]string
}

func newMatch(re *regexp.Regexp, submatch []string) *Match {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(submatch) {
			groups[name] = submatch[i]
		}
	}
	return &Match{text: submatch[0], groups: groups}
}

// Text returns the entire matched text.
func (m *Match) Text() string {
	return m.text
}

// Group returns the named capture group, or "" when absent.
func (m *Match) Group(name string) string {
	return m.groups[name]
}

// HandlerFunc produces a parsed result from a URL match.
type HandlerFunc func(ctx context.Context, m *Match) (*Result, error)

// Pattern associates one URL regex with a handler.
type Pattern struct {
	Label  string // Display label for the pattern (e.g. "music.163.com/song").
	Regex  *regexp.Regexp
	Handle HandlerFunc
}

// Parser is one platform's set of URL patterns and handlers.
type Parser interface {
	// Platform returns the parser's identity.
	Platform() Platform
	// Patterns returns the ordered (label, regex, handler) table registered
	// for this parser. First match wins across all registered parsers.
	Patterns() []Pattern
}

// Redirector resolves a URL by following HTTP redirects and re-running
// pattern dispatch against the final destination.
type Redirector interface {
	ResolveWithRedirect(ctx context.Context, url string) (*Result, error)
}
