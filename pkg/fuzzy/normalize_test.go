package fuzzy

import (
	"testing"
)

func TestNormalizer_NormalizeTitle(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{name: "lowercases and trims", title: "  My Song  ", expected: "my song"},
		{name: "strips feat tail", title: "My Song (feat. Someone)", expected: "my song"},
		{name: "strips remaster tail", title: "My Song - Remastered", expected: "my song"},
		{name: "strips remix tail", title: "My Song (Club Remix)", expected: "my song"},
		{name: "strips dashed remix tail", title: "My Song - Club Remix", expected: "my song"},
		{name: "strips accents", title: "Café del Mar", expected: "cafe del mar"},
		{name: "strips punctuation", title: "Song! Title?", expected: "song title"},
		{name: "cjk preserved", title: "晴天", expected: "晴天"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.NormalizeTitle(tt.title); got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_NormalizeArtist(t *testing.T) {
	n := NewNormalizer()

	if got := n.NormalizeArtist("Artist and Band"); got != "artist & band" {
		t.Errorf("NormalizeArtist() = %q, want %q", got, "artist & band")
	}
}

func TestNormalizer_Key(t *testing.T) {
	n := NewNormalizer()

	a := n.Key("Jay Chou", "晴天")
	b := n.Key("jay  chou", "晴天!")
	if a != b {
		t.Errorf("Key() unstable: %q vs %q", a, b)
	}
	if a != "jay chou|晴天" {
		t.Errorf("Key() = %q, want %q", a, "jay chou|晴天")
	}

	if n.Key("Artist", "My Song (Club Remix)") != n.Key("Artist", "My Song") {
		t.Errorf("Key() treats a remix variant as a different song")
	}
}
