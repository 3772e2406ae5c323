package ingest

import (
	"strings"
	"testing"
)

func TestMarkdownHeadingsAndParagraphs(t *testing.T) {
	got, err := Markdown(`<h1>Title</h1><p>First paragraph.</p><h2>Section</h2><p>Second.</p>`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	for _, want := range []string{"# Title", "First paragraph.", "## Section", "Second."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestMarkdownLists(t *testing.T) {
	got, err := Markdown(`<ul><li>alpha</li><li>beta</li></ul><ol><li>one</li><li>two</li></ol>`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	for _, want := range []string{"- alpha", "- beta", "1. one", "2. two"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestMarkdownLinksAndEmphasis(t *testing.T) {
	got, err := Markdown(`<p>See <a href="/wiki/dsa/graphs">Graphs</a> and <strong>bold</strong> plus <em>italic</em> and <code>x := 1</code>.</p>`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	for _, want := range []string{"[Graphs](/wiki/dsa/graphs)", "**bold**", "*italic*", "`x := 1`"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestMarkdownCodeBlockKeepsWhitespace(t *testing.T) {
	got, err := Markdown("<pre><code>func main() {\n\tprintln(1)\n}</code></pre>")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	if !strings.Contains(got, "```\nfunc main() {\n\tprintln(1)\n}\n```") {
		t.Errorf("code block mangled:\n%s", got)
	}
}

func TestMarkdownDropsScriptAndStyle(t *testing.T) {
	got, err := Markdown(`<p>keep</p><script>alert(1)</script><style>p{color:red}</style>`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}

	if strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Errorf("script/style leaked into output:\n%s", got)
	}
	if !strings.Contains(got, "keep") {
		t.Errorf("content dropped:\n%s", got)
	}
}

func TestMarkdownBlockquote(t *testing.T) {
	got, err := Markdown(`<blockquote>quoted wisdom</blockquote>`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(got, "> quoted wisdom") {
		t.Errorf("blockquote missing:\n%s", got)
	}
}

func TestMarkdownCollapsesBlankLines(t *testing.T) {
	got, err := Markdown(`<p>a</p><p></p><p></p><p>b</p>`)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank lines not collapsed:\n%q", got)
	}
}
