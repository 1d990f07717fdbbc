package text

import (
	"reflect"
	"strings"
	"testing"
)

func TestParser_ParseMessage_Classification(t *testing.T) {
	canResolve := func(u string) bool {
		return strings.Contains(u, "music.163.com")
	}
	parser := NewParser(canResolve)

	tests := []struct {
		name     string
		text     string
		expected MessageType
	}{
		{
			name:     "resolvable NCM link",
			text:     "listen to this https://music.163.com/song?id=123",
			expected: MessageTypeResolvableLink,
		},
		{
			name:     "music link without a parser",
			text:     "https://soundcloud.com/artist/track",
			expected: MessageTypeMusicLink,
		},
		{
			name:     "numbered media subdomain",
			text:     "http://m701.music.126.net/x/song.mp3",
			expected: MessageTypeMusicLink,
		},
		{
			name:     "plain text",
			text:     "what a great song",
			expected: MessageTypeFreeText,
		},
		{
			name:     "non-music URL",
			text:     "https://example.com/article",
			expected: MessageTypeFreeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := parser.ParseMessage(tt.text)
			if msg.Type != tt.expected {
				t.Errorf("ParseMessage(%q).Type = %v, want %v", tt.text, msg.Type, tt.expected)
			}
		})
	}
}

func TestParser_ParseMessage_NilPredicate(t *testing.T) {
	parser := NewParser(nil)

	msg := parser.ParseMessage("https://music.163.com/song?id=123")
	if msg.Type != MessageTypeMusicLink {
		t.Errorf("Type = %v, want MessageTypeMusicLink without a predicate", msg.Type)
	}
}

func TestParser_ExtractURLs(t *testing.T) {
	parser := NewParser(nil)

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "single URL with trailing punctuation",
			text:     "check https://music.163.com/song?id=1!",
			expected: []string{"https://music.163.com/song?id=1"},
		},
		{
			name:     "tracking params stripped",
			text:     "https://example.com/t?id=1&utm_source=share&si=abc",
			expected: []string{"https://example.com/t?id=1"},
		},
		{
			name:     "multiple URLs",
			text:     "https://a.example/1 and https://b.example/2",
			expected: []string{"https://a.example/1", "https://b.example/2"},
		},
		{
			name:     "no URLs",
			text:     "just words",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := parser.ParseMessage(tt.text)
			if !reflect.DeepEqual(msg.URLs, tt.expected) {
				t.Errorf("URLs = %v, want %v", msg.URLs, tt.expected)
			}
		})
	}
}

func TestParser_NormalizeText(t *testing.T) {
	parser := NewParser(nil)

	msg := parser.ParseMessage("  hello\n\n  world  ")
	if msg.Text != "hello world" {
		t.Errorf("Text = %q, want %q", msg.Text, "hello world")
	}
}
