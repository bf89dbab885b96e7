package export

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const sample = "#! Report & Findings\n\n# Results\n\nWe saw $x > y$ overall."

func TestHTML_StandalonePage(t *testing.T) {
	page := HTML(context.Background(), sample, nil, nil)

	if !strings.HasPrefix(page, "<!DOCTYPE html>") {
		t.Errorf("missing doctype")
	}

	// the page must be well-formed enough for a tolerant parser to find
	// the structural pieces
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}

	var title string
	headings := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil {
					title = n.FirstChild.Data
				}
			case "div":
				for _, a := range n.Attr {
					if a.Key == "class" && strings.Contains(a.Val, "heading") {
						headings++
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if title != "Report & Findings" {
		t.Errorf("page title: got %q", title)
	}
	if headings != 1 {
		t.Errorf("expected 1 heading div, got %d", headings)
	}
}

func TestHTML_UntitledFallback(t *testing.T) {
	page := HTML(context.Background(), "no title here", nil, nil)
	if !strings.Contains(page, "<title>Untitled</title>") {
		t.Errorf("missing fallback title:\n%s", page)
	}
}

func TestLatex_CompleteDocument(t *testing.T) {
	out := Latex(sample)
	for _, want := range []string{
		`\documentclass[12pt]{article}`,
		`\maketitle`,
		`\section{Results}`,
		`\end{document}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestMarkdown_Passthrough(t *testing.T) {
	if got := Markdown(sample); got != sample {
		t.Errorf("markdown export must not rewrite the source")
	}
}
