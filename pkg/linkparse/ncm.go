package linkparse

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// NCMAPIBase is the NetEase Cloud Music API host.
	NCMAPIBase = "https://music.163.com"
	// NCMShortLinkBase is the NetEase short link host.
	NCMShortLinkBase = "https://163cn.tv"
	// NCMReferer is sent with every NCM API request.
	NCMReferer = "https://music.163.com"
	// ncmDefaultBitrate is the playback bitrate requested from the API unless
	// overridden with WithNCMBitrate.
	ncmDefaultBitrate = 320000
	// ncmCoverParam is appended to cover URLs for a higher resolution variant.
	ncmCoverParam = "?param=640y640"
	// ncmRestrictedCode is the provider code signalling a rights/VIP restriction.
	ncmRestrictedCode = 404
)

var (
	ncmShortRegex    = regexp.MustCompile(`163cn\.tv/(?P<short_key>\w+)`)
	ncmYSongRegex    = regexp.MustCompile(`y\.music\.163\.com/m/song\?.*id=(?P<song_id>\d+)`)
	ncmHashSongRegex = regexp.MustCompile(`music\.163\.com/#/song\?.*id=(?P<song_id>\d+)`)
	ncmSongRegex     = regexp.MustCompile(`music\.163\.com/song\?.*id=(?P<song_id>\d+)`)
	ncmDirectRegex   = regexp.MustCompile(`https?://[^/]*music\.126\.net/.*\.mp3(?:\?.*)?`)
	ncmOuterRegex    = regexp.MustCompile(`https?://music\.163\.com/song/media/outer/url\?[^>\s]+`)
)

// ncmSongDetailResponse is the relevant slice of the song detail API response.
type ncmSongDetailResponse struct {
	Songs []ncmSong `json:"songs"`
}

type ncmSong struct {
	Name     string      `json:"name"`
	Alias    []string    `json:"alias"`
	Album    ncmAlbum    `json:"album"`
	Duration int64       `json:"duration"` // Milliseconds.
	Artists  []ncmArtist `json:"artists"`
}

type ncmAlbum struct {
	Name   string `json:"name"`
	PicURL string `json:"picUrl"`
}

type ncmArtist struct {
	Name      string `json:"name"`
	Img1v1URL string `json:"img1v1Url"`
}

// ncmPlayerURLResponse is the relevant slice of the playback URL API response.
type ncmPlayerURLResponse struct {
	Data []ncmPlayEntry `json:"data"`
}

type ncmPlayEntry struct {
	URL  string `json:"url"`
	Code int    `json:"code"`
}

// NCMParser resolves NetEase Cloud Music links: song pages, short links,
// direct-hosted mp3 URLs and private outer links.
type NCMParser struct {
	factory    ContentFactory
	redirector Redirector
	client     *http.Client
	headers    map[string]string
	apiBase    string
	shortBase  string
	bitrate    int
}

// NCMOption customizes an NCMParser.
type NCMOption func(*NCMParser)

// WithNCMCookie sets the session cookie string sent with API requests.
// Without it some songs resolve to a restricted playback response.
func WithNCMCookie(cookie string) NCMOption {
	return func(p *NCMParser) {
		if cookie != "" {
			p.headers["Cookie"] = cookie
		}
	}
}

// WithNCMAPIBase overrides the API host.
func WithNCMAPIBase(base string) NCMOption {
	return func(p *NCMParser) {
		p.apiBase = strings.TrimRight(base, "/")
	}
}

// WithNCMShortLinkBase overrides the short link host.
func WithNCMShortLinkBase(base string) NCMOption {
	return func(p *NCMParser) {
		p.shortBase = strings.TrimRight(base, "/")
	}
}

// WithNCMBitrate overrides the playback bitrate requested from the API.
func WithNCMBitrate(bitrate int) NCMOption {
	return func(p *NCMParser) {
		if bitrate > 0 {
			p.bitrate = bitrate
		}
	}
}

// WithNCMHTTPClient overrides the HTTP client used for API requests.
func WithNCMHTTPClient(client *http.Client) NCMOption {
	return func(p *NCMParser) {
		p.client = client
	}
}

// NewNCMParser creates the NetEase Cloud Music parser.
func NewNCMParser(factory ContentFactory, redirector Redirector, opts ...NCMOption) *NCMParser {
	p := &NCMParser{
		factory:    factory,
		redirector: redirector,
		client:     newHTTPClient(),
		headers:    map[string]string{"Referer": NCMReferer},
		apiBase:    NCMAPIBase,
		shortBase:  NCMShortLinkBase,
		bitrate:    ncmDefaultBitrate,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Platform returns the parser's identity.
func (p *NCMParser) Platform() Platform {
	return Platform{Name: "ncm", DisplayName: "网易云"}
}

// Patterns returns the dispatch table for NCM URLs. The three song page
// shapes all resolve through the same handler.
func (p *NCMParser) Patterns() []Pattern {
	return []Pattern{
		{Label: "163cn.tv", Regex: ncmShortRegex, Handle: p.parseShort},
		{Label: "y.music.163.com", Regex: ncmYSongRegex, Handle: p.parseSong},
		{Label: "music.163.com/#/song", Regex: ncmHashSongRegex, Handle: p.parseSong},
		{Label: "music.163.com/song", Regex: ncmSongRegex, Handle: p.parseSong},
		{Label: "music.126.net", Regex: ncmDirectRegex, Handle: p.parseDirectMP3},
		{Label: "music.163.com/song/media/outer/url", Regex: ncmOuterRegex, Handle: p.parsePrivateOuter},
	}
}

// parseShort rebuilds the canonical short URL and lets the manager follow the
// redirect chain before dispatching again.
func (p *NCMParser) parseShort(ctx context.Context, m *Match) (*Result, error) {
	shortURL := fmt.Sprintf("%s/%s", p.shortBase, m.Group("short_key"))
	return p.redirector.ResolveWithRedirect(ctx, shortURL)
}

// parseSong fetches song metadata and a playable URL, then assembles a result.
// The playback request is only issued after the detail request succeeds.
func (p *NCMParser) parseSong(ctx context.Context, m *Match) (*Result, error) {
	songID := m.Group("song_id")

	detailURL := fmt.Sprintf("%s/api/song/detail/?id=%s&ids=[%s]", p.apiBase, songID, songID)
	var detail ncmSongDetailResponse
	if err := getJSON(ctx, p.client, p.Platform().Name, detailURL, p.headers, &detail); err != nil {
		return nil, err
	}

	if len(detail.Songs) == 0 {
		return nil, newParseError(p.Platform().Name, ParseNotFound, "未找到该歌曲")
	}

	song := detail.Songs[0]
	subTitle := ""
	if len(song.Alias) > 0 {
		subTitle = song.Alias[0]
	}
	coverURL := song.Album.PicURL
	if coverURL != "" {
		coverURL += ncmCoverParam
	}

	artistNames := make([]string, 0, len(song.Artists))
	for _, ar := range song.Artists {
		artistNames = append(artistNames, ar.Name)
	}
	authorName := strings.Join(artistNames, " / ")
	authorAvatar := ""
	if len(song.Artists) > 0 {
		authorAvatar = song.Artists[0].Img1v1URL
	}

	audioURL, err := p.fetchPlayURL(ctx, songID)
	if err != nil {
		return nil, err
	}

	var author *Author
	if authorName != "" {
		author = p.factory.NewAuthor(authorName, authorAvatar)
	}

	audio := p.factory.NewAudioContent(audioURL, int(song.Duration/1000))

	var contents []ContentItem
	if coverURL != "" {
		contents = append(contents, p.factory.NewImageContents([]string{coverURL})...)
	}
	contents = append(contents, audio)

	title := song.Name
	if subTitle != "" {
		title = fmt.Sprintf("%s（%s）", song.Name, subTitle)
	}
	text := ""
	if song.Album.Name != "" {
		text = "专辑：" + song.Album.Name
	}

	return p.factory.NewResult(
		p.Platform(),
		title,
		text,
		author,
		contents,
		time.Time{},
		fmt.Sprintf("https://music.163.com/#/song?id=%s", songID),
	), nil
}

// fetchPlayURL resolves the playable audio URL for a song at the configured bitrate.
func (p *NCMParser) fetchPlayURL(ctx context.Context, songID string) (string, error) {
	playURL := fmt.Sprintf("%s/api/song/enhance/player/url?ids=[%s]&br=%d", p.apiBase, songID, p.bitrate)
	var play ncmPlayerURLResponse
	if err := getJSON(ctx, p.client, p.Platform().Name, playURL, p.headers, &play); err != nil {
		return "", err
	}

	if len(play.Data) == 0 {
		return "", newParseError(p.Platform().Name, ParseUnavailable, "获取播放数据失败")
	}

	entry := play.Data[0]
	if entry.URL == "" {
		if entry.Code == ncmRestrictedCode {
			return "", newParseError(p.Platform().Name, ParseRestricted, "该歌曲需要VIP或存在版权限制，无法获取播放地址")
		}
		return "", newParseError(p.Platform().Name, ParseUnavailable, fmt.Sprintf("无法获取播放地址 (code=%d)", entry.Code))
	}

	return entry.URL, nil
}

// parseDirectMP3 wraps a direct-hosted mp3 URL as-is. No network call.
func (p *NCMParser) parseDirectMP3(_ context.Context, m *Match) (*Result, error) {
	url := m.Text()
	audio := p.factory.NewAudioContent(url, 0)
	return p.factory.NewResult(p.Platform(), "网易云音乐", "直链音频", nil, []ContentItem{audio}, time.Time{}, url), nil
}

// parsePrivateOuter wraps a signed outer link verbatim; reachability of the
// link is not validated here.
func (p *NCMParser) parsePrivateOuter(_ context.Context, m *Match) (*Result, error) {
	url := m.Text()
	audio := p.factory.NewAudioContent(url, 0)
	return p.factory.NewResult(p.Platform(), "网易云音乐（私人直链）", "直链音频", nil, []ContentItem{audio}, time.Time{}, url), nil
}
