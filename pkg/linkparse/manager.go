package linkparse

import (
	"context"
	"net/http"
)

// maxRedispatchDepth bounds how many times a short link may redirect into
// another resolvable URL before dispatch gives up.
const maxRedispatchDepth = 3

type registeredPattern struct {
	platform Platform
	pattern  Pattern
}

// Manager holds the ordered dispatch table built from every registered
// parser's patterns. The first pattern matching an incoming URL wins; the
// table guarantees first-match semantics only, not pattern exclusivity.
type Manager struct {
	patterns []registeredPattern
	client   *http.Client
}

// NewManager creates an empty link manager. Parsers are registered afterwards,
// in dispatch priority order.
func NewManager() *Manager {
	return &Manager{
		client: newHTTPClient(),
	}
}

// Register appends all of a parser's patterns to the dispatch table.
func (m *Manager) Register(p Parser) {
	for _, pattern := range p.Patterns() {
		m.patterns = append(m.patterns, registeredPattern{platform: p.Platform(), pattern: pattern})
	}
}

// Resolve dispatches the URL to the first matching handler.
func (m *Manager) Resolve(ctx context.Context, url string) (*Result, error) {
	for _, rp := range m.patterns {
		if submatch := rp.pattern.Regex.FindStringSubmatch(url); submatch != nil {
			return rp.pattern.Handle(ctx, newMatch(rp.pattern.Regex, submatch))
		}
	}

	return nil, newParseError("linkparse", ParseNoMatch, "no handler found for URL")
}

// CanResolve checks if any registered pattern matches the given URL.
func (m *Manager) CanResolve(url string) bool {
	for _, rp := range m.patterns {
		if rp.pattern.Regex.MatchString(url) {
			return true
		}
	}
	return false
}

type redispatchDepthKey struct{}

// ResolveWithRedirect follows the URL's redirect chain and re-runs pattern
// dispatch against the final destination. Handlers for short-link patterns
// delegate here instead of following redirects themselves.
func (m *Manager) ResolveWithRedirect(ctx context.Context, url string) (*Result, error) {
	depth, _ := ctx.Value(redispatchDepthKey{}).(int)
	if depth >= maxRedispatchDepth {
		return nil, newParseError("linkparse", ParseNoMatch, "redirect chain did not reach a resolvable URL")
	}

	dest, err := finalURL(ctx, m.client, url, nil)
	if err != nil {
		return nil, err
	}

	return m.Resolve(context.WithValue(ctx, redispatchDepthKey{}, depth+1), dest)
}
