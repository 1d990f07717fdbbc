// Package text provides text parsing and URL classification for chat messages.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MessageType classifies an incoming chat message.
type MessageType int

const (
	// MessageTypeResolvableLink is a message with a URL some registered parser handles.
	MessageTypeResolvableLink MessageType = iota
	// MessageTypeMusicLink is a message with a known music-platform URL no parser handles.
	MessageTypeMusicLink
	// MessageTypeFreeText is any other message.
	MessageTypeFreeText
)

// Message is the parsed form of one chat message.
type Message struct {
	Type MessageType
	Text string
	URLs []string
}

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	musicDomains = map[string]bool{
		"music.163.com":   true,
		"y.music.163.com": true,
		"163cn.tv":        true,
		"music.126.net":   true,
		"youtube.com":     true,
		"youtu.be":        true,
		"music.apple.com": true,
		"soundcloud.com":  true,
		"bandcamp.com":    true,
	}
)

// Parser extracts and classifies URLs from chat message text. canResolve is
// consulted to decide whether a registered platform parser handles a URL; a
// nil predicate means no parser handles anything.
type Parser struct {
	canResolve func(string) bool
}

func NewParser(canResolve func(string) bool) *Parser {
	return &Parser{canResolve: canResolve}
}

func (p *Parser) ParseMessage(text string) Message {
	text = p.normalizeText(text)
	urls := p.extractURLs(text)

	return Message{
		Type: p.classifyMessage(urls),
		Text: text,
		URLs: urls,
	}
}

func (p *Parser) normalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return text
}

func (p *Parser) extractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	var cleanURLs []string

	for _, match := range matches {
		cleanURL := p.cleanURL(match)
		if cleanURL != "" {
			cleanURLs = append(cleanURLs, cleanURL)
		}
	}

	return cleanURLs
}

func (p *Parser) cleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;")

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if u.Host == "" {
		return ""
	}

	// Strip tracking parameters so dedup keys stay stable.
	q := u.Query()
	for _, param := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"} {
		q.Del(param)
	}
	q.Del("si")
	u.RawQuery = q.Encode()

	return u.String()
}

func (p *Parser) classifyMessage(urls []string) MessageType {
	if p.canResolve != nil {
		for _, u := range urls {
			if p.canResolve(u) {
				return MessageTypeResolvableLink
			}
		}
	}

	for _, u := range urls {
		if p.isMusicURL(u) {
			return MessageTypeMusicLink
		}
	}

	return MessageTypeFreeText
}

func (p *Parser) isMusicURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(u.Hostname())
	hostname = strings.TrimPrefix(hostname, "www.")
	hostname = strings.TrimPrefix(hostname, "m.")

	if musicDomains[hostname] {
		return true
	}

	// Media hosts use rotating numbered subdomains (e.g. m701.music.126.net).
	return strings.HasSuffix(hostname, ".music.126.net")
}
