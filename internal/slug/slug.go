// Package slug converts between display titles and URL-safe article slugs.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRE   = regexp.MustCompile(`[^a-z0-9]+`)
	edgeDashesRE = regexp.MustCompile(`^-+|-+$`)
)

// Make turns a display title into a URL-safe slug. "C++" and "C#" survive as
// readable words so "c-plus-plus" and "c-sharp" round-trip through Title.
func Make(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, "++", " plus plus ")
	s = strings.ReplaceAll(s, "+", " plus ")
	s = strings.ReplaceAll(s, "#", " sharp ")
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlnumRE.ReplaceAllString(s, "-")
	return edgeDashesRE.ReplaceAllString(s, "")
}

// Title reconstructs a human-readable display title from a slug:
// "hash-tables" -> "Hash Tables", "c-plus-plus" -> "C++".
func Title(s string) string {
	var parts []string
	for _, p := range strings.Split(s, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	var words []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if part == "plus" {
			next := ""
			if i+1 < len(parts) {
				next = parts[i+1]
			}
			if len(words) > 0 {
				if next == "plus" {
					words[len(words)-1] += "++"
					i++
				} else {
					words[len(words)-1] += "+"
				}
			} else {
				words = append(words, "+")
			}
			continue
		}

		if part == "sharp" {
			if len(words) > 0 {
				words[len(words)-1] += "#"
			} else {
				words = append(words, "#")
			}
			continue
		}

		words = append(words, strings.ToUpper(part[:1])+part[1:])
	}

	return strings.Join(words, " ")
}
