// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// embedSrc limits iframes in rich content to known video players.
var embedSrc = regexp.MustCompile(`^https://(?:www\.)?(?:youtube\.com/embed/|youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`)

var (
	richPolicy  = buildRichPolicy()
	stripPolicy = bluemonday.StrictPolicy()
	// entity matches named and numeric character references.
	entity = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)
	// invisible drops the characters editors leave behind in empty
	// paragraphs.
	invisible = strings.NewReplacer("\u00a0", "", "\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")
)

func buildRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowElements("iframe")
	p.AllowAttrs("src").Matching(embedSrc).OnElements("iframe")
	p.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "width", "height").OnElements("iframe")
	return p
}

// Sanitize cleans editor-supplied HTML, keeping formatting, links, images
// and embedded video players.
func Sanitize(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	return richPolicy.Sanitize(html)
}

// HasVisibleText reports whether html still contains text once tags,
// character references, non-breaking spaces and zero-width characters are
// removed. Pages without visible text are not rendered.
func HasVisibleText(html string) bool {
	text := stripPolicy.Sanitize(html)
	text = entity.ReplaceAllString(text, "")
	text = invisible.Replace(text)
	return strings.TrimSpace(text) != ""
}
