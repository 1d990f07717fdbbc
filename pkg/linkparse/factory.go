package linkparse

import (
	"time"
)

// StdFactory is the default ContentFactory implementation. It performs no
// downloading or validation; downstream consumers decide what to do with the
// URLs a result carries.
type StdFactory struct{}

// NewStdFactory creates the default content factory.
func NewStdFactory() *StdFactory {
	return &StdFactory{}
}

// NewAuthor builds an author reference.
func (f *StdFactory) NewAuthor(name, avatar string) *Author {
	return &Author{Name: name, Avatar: avatar}
}

// NewAudioContent builds an audio content item. durationSecs of 0 means unknown.
func (f *StdFactory) NewAudioContent(url string, durationSecs int) ContentItem {
	return ContentItem{Type: ContentTypeAudio, URL: url, Duration: durationSecs}
}

// NewImageContents builds one image content item per URL, preserving order.
func (f *StdFactory) NewImageContents(urls []string) []ContentItem {
	items := make([]ContentItem, 0, len(urls))
	for _, u := range urls {
		items = append(items, ContentItem{Type: ContentTypeImage, URL: u})
	}
	return items
}

// NewResult assembles the final parsed result.
func (f *StdFactory) NewResult(platform Platform, title, text string, author *Author, contents []ContentItem, timestamp time.Time, url string) *Result {
	return &Result{
		Title:     title,
		Text:      text,
		Author:    author,
		Contents:  contents,
		Timestamp: timestamp,
		URL:       url,
		Platform:  platform,
	}
}
