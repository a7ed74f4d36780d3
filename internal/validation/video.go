package validation

import (
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"

	"pagecraft-backend/internal/sections"
)

var ErrInvalidVideoURL = errors.New("invalid video URL")

// VideoInfo is the classification of a playable video URL.
type VideoInfo struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	EmbedID string `json:"embedId,omitempty"`
}

// IsYouTube reports whether the video should be rendered as an embed.
func (v VideoInfo) IsYouTube() bool {
	return v.Source == sections.SourceYouTube
}

// EmbedURL returns the iframe source for YouTube videos.
func (v VideoInfo) EmbedURL() string {
	if !v.IsYouTube() {
		return ""
	}
	return "https://www.youtube.com/embed/" + v.EmbedID
}

var (
	videoExtensions = map[string]struct{}{
		".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
	}
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ValidateVideoURL classifies raw as a YouTube video or a direct video file.
func ValidateVideoURL(raw string) (VideoInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VideoInfo{}, ErrInvalidVideoURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return VideoInfo{}, ErrInvalidVideoURL
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return VideoInfo{}, ErrInvalidVideoURL
		}
	case "":
		// local upload path
		if u.Host != "" || !strings.HasPrefix(u.Path, "/") {
			return VideoInfo{}, ErrInvalidVideoURL
		}
	default:
		return VideoInfo{}, ErrInvalidVideoURL
	}

	if id, ok := youtubeID(u); ok {
		return VideoInfo{Source: sections.SourceYouTube, URL: raw, EmbedID: id}, nil
	}

	if _, ok := videoExtensions[strings.ToLower(path.Ext(u.Path))]; ok {
		return VideoInfo{Source: sections.SourceUpload, URL: raw}, nil
	}

	return VideoInfo{}, ErrInvalidVideoURL
}

func youtubeID(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case segments[0] == "watch":
			id = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "live" || segments[0] == "v"):
			id = segments[1]
		}
	default:
		return "", false
	}

	if !youtubeIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

func firstSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i]
	}
	return p
}
