// Package cookie loads per-domain session cookie strings for platform parsers.
package cookie

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Jar maps domains to raw cookie header strings. Parsers that need a logged-in
// session (e.g. NCM VIP playback) read their domain's string at construction;
// refreshing or persisting cookies is out of scope here.
type Jar struct {
	cookies map[string]string
}

// Load reads a jar from a JSON file of the form
// {"music.163.com": "MUSIC_U=...; os=pc"}. A missing file yields an empty jar;
// the bot then runs without sessions rather than failing startup.
func Load(path string) (*Jar, error) {
	jar := &Jar{cookies: make(map[string]string)}

	if path == "" {
		return jar, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return jar, nil
		}
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	if err := json.Unmarshal(data, &jar.cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}

	for domain, value := range jar.cookies {
		jar.cookies[domain] = strings.TrimSpace(value)
	}

	return jar, nil
}

// CookieString returns the cookie header string for a domain, or "" when the
// jar holds nothing for it.
func (j *Jar) CookieString(domain string) string {
	return j.cookies[domain]
}
