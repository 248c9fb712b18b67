// Package drive resolves Google Drive file identifiers out of pasted links
// and builds the embed URLs the viewer uses.
package drive

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// bareIDLength is the length of a raw Drive file identifier.
const bareIDLength = 33

var (
	filePathPattern  = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	idParamPattern   = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	shortPathPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

	shareHosts = map[string]bool{
		"drive.google.com": true,
		"docs.google.com":  true,
	}
)

// ExtractFileID pulls a Drive file identifier out of input. Accepted forms,
// tried in order: a bare 33-character id, a /file/d/<id>/ path, an id=<id>
// query parameter, a generic /d/<id>/ path, and finally the id parameter of
// a recognized share-link host. Returns "" when nothing matches.
func ExtractFileID(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if len(s) == bareIDLength && !strings.ContainsAny(s, "/=") {
		return s
	}
	if m := filePathPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := idParamPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := shortPathPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if u, err := url.Parse(s); err == nil && shareHosts[u.Hostname()] {
		if id := u.Query().Get("id"); id != "" {
			return id
		}
	}
	return ""
}

// PreviewURL is the iframe-embeddable player URL for a video.
func PreviewURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", id)
}

// ViewURL is the direct view URL for an image.
func ViewURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=view&id=%s", id)
}

// ThumbnailURL is Drive's server-rendered thumbnail at the given width.
func ThumbnailURL(id string, width int) string {
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w%d", id, width)
}
