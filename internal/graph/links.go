package graph

import (
	"net/url"
	"regexp"
	"strings"
)

// Link is one internal cross-reference extracted from article Markdown.
type Link struct {
	Category string
	Slug     string
}

// internalLinkRE matches Markdown links targeting the internal article route
// /wiki/<category>/<slug>. Category and slug are runs of characters excluding
// '/', ')', '#', '?' and whitespace; an ignorable fragment or query suffix may
// follow before the closing paren.
var internalLinkRE = regexp.MustCompile(`\[[^\]]*\]\(/wiki/([^/)#?\s]+)/([^/)#?\s]+)[^)]*\)`)

// ExtractLinks scans markdown for internal article links and returns them in
// encounter order, duplicates included — de-duplication is the graph
// builder's job. Extraction is best effort: anything that does not fit the
// pattern, including percent-escapes that fail to decode, is skipped
// silently and never causes an error.
func ExtractLinks(markdown string) []Link {
	matches := internalLinkRE.FindAllStringSubmatch(markdown, -1)
	if len(matches) == 0 {
		return []Link{}
	}

	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		category, err := url.PathUnescape(m[1])
		if err != nil {
			continue
		}
		slugPart, err := url.PathUnescape(m[2])
		if err != nil {
			continue
		}

		category = strings.ToLower(category)
		slugPart = strings.ToLower(slugPart)
		if category == "" || slugPart == "" {
			continue
		}
		links = append(links, Link{Category: category, Slug: slugPart})
	}
	return links
}
