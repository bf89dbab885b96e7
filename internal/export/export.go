// Package export renders documents to standalone output formats for the
// download endpoints and the export CLI command.
package export

import (
	"context"
	"strings"

	"github.com/spiritlab/spirit/internal/latex"
	"github.com/spiritlab/spirit/internal/markum"
)

// HTML renders a full standalone HTML page for src. ext may be nil, in
// which case external references render as fail markers.
func HTML(ctx context.Context, src string, ext markum.Extern, macros map[string]string) string {
	tree := markum.ParseDocument(src)
	tree.Bare = false
	rc := markum.NewContext()
	rc.Extern = ext
	rc.Macros = macros
	markum.Refs(tree, rc)

	title := "Untitled"
	if rc.Title != nil {
		if t := strings.TrimSpace(markum.InnerText(rc.Title.Children)); t != "" {
			t = markum.EscapeHTML(t)
			title = t
		}
	}

	body := markum.HTML(ctx, tree, rc)
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\" />\n")
	b.WriteString("<title>" + title + "</title>\n")
	b.WriteString("</head>\n")
	b.WriteString(body)
	b.WriteString("\n</html>\n")
	return b.String()
}

// Latex renders a complete LaTeX document for src.
func Latex(src string) string {
	tree := markum.ParseDocument(src)
	rc := markum.NewContext()
	markum.Refs(tree, rc)
	return latex.Render(tree, rc)
}

// Markdown returns the document source unchanged; the markdown export is
// a passthrough.
func Markdown(src string) string {
	return src
}
