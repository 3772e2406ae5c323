package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Markdown converts sanitized article HTML into Markdown-ish text. It keeps
// headings, paragraphs, lists, links, emphasis and code; everything else
// degrades to plain text. Script and style subtrees are dropped.
func Markdown(content string) (string, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parsing extracted HTML: %w", err)
	}

	var b strings.Builder
	renderNode(&b, root, renderState{})
	return collapseBlankLines(strings.TrimSpace(b.String())) + "\n", nil
}

type renderState struct {
	listDepth int
	ordered   bool
	itemIndex int
	inPre     bool
}

func renderNode(b *strings.Builder, n *html.Node, st renderState) {
	if n.Type == html.TextNode {
		if st.inPre {
			b.WriteString(n.Data)
		} else {
			b.WriteString(collapseSpace(n.Data))
		}
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "iframe", "nav", "aside", "footer":
		return

	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(b, n, st)
		b.WriteString("\n\n")
		return

	case "p":
		b.WriteString("\n\n")
		renderChildren(b, n, st)
		b.WriteString("\n\n")
		return

	case "br":
		b.WriteString("\n")
		return

	case "hr":
		b.WriteString("\n\n---\n\n")
		return

	case "strong", "b":
		b.WriteString("**")
		renderChildren(b, n, st)
		b.WriteString("**")
		return

	case "em", "i":
		b.WriteString("*")
		renderChildren(b, n, st)
		b.WriteString("*")
		return

	case "code":
		if st.inPre {
			renderChildren(b, n, st)
			return
		}
		b.WriteString("`")
		renderChildren(b, n, st)
		b.WriteString("`")
		return

	case "pre":
		b.WriteString("\n\n```\n")
		st.inPre = true
		renderChildren(b, n, st)
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
		return

	case "a":
		href := attr(n, "href")
		var text strings.Builder
		renderChildren(&text, n, st)
		label := strings.TrimSpace(text.String())
		if href == "" || label == "" {
			b.WriteString(label)
			return
		}
		fmt.Fprintf(b, "[%s](%s)", label, href)
		return

	case "ul", "ol":
		st.listDepth++
		st.ordered = n.Data == "ol"
		st.itemIndex = 0
		b.WriteString("\n")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				st.itemIndex++
				b.WriteString(strings.Repeat("  ", st.listDepth-1))
				if st.ordered {
					fmt.Fprintf(b, "%d. ", st.itemIndex)
				} else {
					b.WriteString("- ")
				}
				renderChildren(b, c, st)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		return

	case "blockquote":
		var quoted strings.Builder
		renderChildren(&quoted, n, st)
		b.WriteString("\n\n")
		for _, line := range strings.Split(strings.TrimSpace(quoted.String()), "\n") {
			b.WriteString("> " + strings.TrimSpace(line) + "\n")
		}
		b.WriteString("\n")
		return
	}

	renderChildren(b, n, st)
}

func renderChildren(b *strings.Builder, n *html.Node, st renderState) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c, st)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if s[0] == ' ' || s[0] == '\n' || s[0] == '\t' {
		out = " " + out
	}
	if last := s[len(s)-1]; last == ' ' || last == '\n' || last == '\t' {
		out += " "
	}
	return out
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
