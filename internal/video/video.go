// Package video turns the external video references stored on
// subcategories and articles into embeddable player URLs.
package video

import (
	"net/url"
	"regexp"
)

var (
	shortLink = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]+)`)
	watchLink = regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]+)`)
)

// YouTubeID extracts the video ID from youtu.be/ID and
// youtube.com/watch?v=ID links. It returns "" for anything else.
func YouTubeID(raw string) string {
	if raw == "" {
		return ""
	}
	if m := shortLink.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := watchLink.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// EmbedURL returns the privacy-enhanced player URL for a YouTube link, or
// "" when raw is not one.
func EmbedURL(raw string) string {
	id := YouTubeID(raw)
	if id == "" {
		return ""
	}
	return "https://www.youtube-nocookie.com/embed/" + url.PathEscape(id)
}
