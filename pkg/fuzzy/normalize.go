// Package fuzzy normalizes track metadata into stable comparison keys.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)[\(\[][^\)\]]*(?:feat\.?|ft\.?|featuring)[^\)\]]*[\)\]]?|(?:feat\.?|ft\.?|featuring)\s+.+$`)
	remixRegex      = regexp.MustCompile(`(?i)[\(\[][^\)\]]*remix[^\)\]]*[\)\]]?|-\s*[^-]*remix.*$`)
	versionRegex    = regexp.MustCompile(`(?i)[\(\[][^\)\]]*(?:remaster(?:ed)?|deluxe|extended|radio edit|clean|explicit)[^\)\]]*[\)\]]?|-\s*(?:remaster(?:ed)?|deluxe|extended|radio edit|clean|explicit).*$`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) NormalizeArtist(artist string) string {
	artist = n.basicNormalize(artist)

	artist = strings.ReplaceAll(artist, " and ", " & ")
	artist = strings.ReplaceAll(artist, " feat ", " feat. ")
	artist = strings.ReplaceAll(artist, " ft ", " ft. ")

	return artist
}

// NormalizeTitle strips feat/remix/version tails before the generic cleanup
// so they are removed while the bracketing that delimits them still exists.
func (n *Normalizer) NormalizeTitle(title string) string {
	title = featRegex.ReplaceAllString(title, " ")
	title = remixRegex.ReplaceAllString(title, " ")
	title = versionRegex.ReplaceAllString(title, " ")

	return n.basicNormalize(title)
}

// Key builds a stable dedup key for a resolved song.
func (n *Normalizer) Key(artist, title string) string {
	return n.NormalizeArtist(artist) + "|" + n.NormalizeTitle(title)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}
