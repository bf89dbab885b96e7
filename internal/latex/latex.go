// Package latex renders a resolved markum element tree to a standalone
// LaTeX document. Rendering is synchronous and total: external resources
// are not resolvable in this target, and an element kind without a
// mapping renders as a visible marker instead of failing the export.
package latex

import (
	"fmt"
	"strings"

	"github.com/spiritlab/spirit/internal/markum"
)

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`#`, `\#`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`~`, `\textasciitilde{}`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`{`, `\{`,
	`}`, `\}`,
)

// Escape escapes the LaTeX special characters in raw text.
func Escape(s string) string {
	return texEscaper.Replace(s)
}

var packages = []string{"amsmath", "amssymb", "cleveref", "geometry", "hyperref", "ulem"}

var preambleCmds = []string{
	`\geometry{margin=1.25in}`,
	`\setlength{\parindent}{0cm}`,
	`\setlength{\parskip}{0.3cm}`,
	`\renewcommand{\baselinestretch}{1.1}`,
}

// Render renders a node to LaTeX. The context supplies the resolved
// title; counters and references map onto LaTeX's own numbering.
func Render(node markum.Node, ctx *markum.Context) string {
	switch n := node.(type) {
	case *markum.Document:
		return renderDocument(n, ctx)

	case *markum.Block:
		return renderAll(n.Children, ctx, "")

	case *markum.Container:
		return renderAll(n.Children, ctx, "")

	case *markum.Text:
		return Escape(n.Content)

	case *markum.ErrorMessage:
		return `\textbf{Parse error}: ` + Escape(n.Msg)

	case *markum.Special:
		return texAccent(n.Acc, n.Letter)

	case *markum.Escape:
		return Escape(string(n.Char))

	case *markum.Comment:
		return ""

	case *markum.Link:
		text := Escape(n.Href)
		if n.Children != nil {
			text = renderAll(n.Children, ctx, "")
		}
		return fmt.Sprintf(`\href{%s}{%s}`, n.Href, text)

	case *markum.Image:
		return fmt.Sprintf(`\textit{(image: %s)}`, Escape(n.Src))

	case *markum.InternalImage:
		return fmt.Sprintf(`\textit{(image: %s)}`, Escape(n.ID))

	case *markum.Video:
		return fmt.Sprintf(`\textit{(video: %s)}`, Escape(n.Src))

	case *markum.Bold:
		return `\textbf{` + renderAll(n.Children, ctx, "") + `}`

	case *markum.Italic:
		return `\textit{` + renderAll(n.Children, ctx, "") + `}`

	case *markum.Strikeout:
		return `\sout{` + renderAll(n.Children, ctx, "") + `}`

	case *markum.Monospace:
		return `\texttt{` + Escape(n.Text) + `}`

	case *markum.Emoji:
		return Escape(":" + n.Name + ":")

	case *markum.Reference:
		return fmt.Sprintf(`\Cref{%s}`, n.ID)

	case *markum.ExtRef:
		return `\texttt{` + Escape("[["+n.ID+"]]") + `}`

	case *markum.Citation:
		return fmt.Sprintf(`\cite{%s}`, n.ID)

	case *markum.Footnote:
		return `\footnote{` + renderAll(n.Children, ctx, "") + `}`

	case *markum.Sidenote:
		return `\marginpar{` + renderAll(n.Children, ctx, "") + `}`

	case *markum.Hash:
		return `\texttt{` + Escape("#"+n.Tag) + `}`

	case *markum.Newline:
		return `\\` + "\n"

	case *markum.Math:
		return "$" + n.Tex + "$"

	case *markum.Number, *markum.NestedNumber:
		// LaTeX numbers its own environments
		return ""

	case *markum.Equation:
		env := "align*"
		if n.Numbered {
			env = "align"
		}
		label := ""
		if n.ID != "" {
			label = fmt.Sprintf("\n\\label{%s}", n.ID)
		}
		return fmt.Sprintf("\\begin{%s}%s\n%s\n\\end{%s}", env, label, n.Tex, env)

	case *markum.Caption:
		return `\caption{` + renderAll(n.Children, ctx, "") + `}`

	case *markum.Figure:
		return renderFigure(n, ctx)

	case *markum.List:
		env := "itemize"
		if n.Ordered {
			env = "enumerate"
		}
		var b strings.Builder
		for _, item := range n.Items {
			b.WriteString(`\item ` + renderAll(item, ctx, "") + "\n")
		}
		return fmt.Sprintf("\\begin{%s}\n%s\\end{%s}", env, b.String(), env)

	case *markum.Table:
		return renderTable(n, ctx)

	case *markum.TableWrapper:
		return Render(n.Table, ctx)

	case *markum.Title:
		return `\maketitle`

	case *markum.Heading:
		level := min(5, n.Level)
		text := strings.TrimSpace(renderAll(n.Children, ctx, ""))
		return `\` + strings.Repeat("sub", level-1) + `section{` + text + `}`

	case *markum.Rule:
		return `\noindent\hrulefill`

	case *markum.Blockquote:
		return "\\begin{quote}\n" + Escape(n.Text) + "\n\\end{quote}"

	case *markum.Code:
		return "\\begin{verbatim}\n" + n.Code + "\n\\end{verbatim}"

	case *markum.Svg:
		return "\\begin{verbatim}\n" + n.Code + "\n\\end{verbatim}"

	case *markum.Gum:
		return "\\begin{verbatim}\n" + n.Code + "\n\\end{verbatim}"

	case *markum.GumLib, *markum.Upload:
		return ""

	case *markum.EnvBegin:
		return `\textbf{` + Escape(capitalize(n.Name)) + `.} ` + renderAll(n.Children, ctx, "")

	case *markum.EnvSingle:
		return `\textbf{` + Escape(capitalize(n.Name)) + `.} ` + renderAll(n.Children, ctx, "")

	case *markum.EnvEnd:
		return renderAll(n.Children, ctx, "")
	}

	return fmt.Sprintf(`\texttt{Unknown element of type: %T}`, node)
}

func renderAll(nodes []markum.Node, ctx *markum.Context, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = Render(n, ctx)
	}
	return strings.Join(parts, sep)
}

func renderDocument(doc *markum.Document, ctx *markum.Context) string {
	var pre strings.Builder
	for _, p := range packages {
		pre.WriteString(`\usepackage{` + p + "}\n")
	}
	pre.WriteString("\n")
	pre.WriteString(strings.Join(preambleCmds, "\n"))
	if ctx.Title != nil {
		title := renderAll(ctx.Title.Children, ctx, "")
		pre.WriteString("\n\n\\title{\\vspace{-3em}" + title + "\\vspace{-3em}}\n\\date{}")
	}
	body := renderAll(doc.Blocks, ctx, "\n\n")
	return "\\documentclass[12pt]{article}\n\n" + pre.String() +
		"\n\n\\begin{document}\n\n" + body + "\n\n\\end{document}\n"
}

func renderFigure(fig *markum.Figure, ctx *markum.Context) string {
	env := "figure"
	if fig.FType == "table" {
		env = "table"
	}
	var b strings.Builder
	b.WriteString("\\begin{" + env + "}[h!]\n\\begin{center}\n")
	b.WriteString(Render(fig.Child, ctx))
	b.WriteString("\n\\end{center}\n")
	if fig.Caption != nil {
		b.WriteString(Render(fig.Caption, ctx) + "\n")
	}
	if fig.ID != "" {
		b.WriteString(`\label{` + fig.ID + "}\n")
	}
	b.WriteString("\\end{" + env + "}")
	return b.String()
}

func renderTable(tab *markum.Table, ctx *markum.Context) string {
	cols := make([]byte, len(tab.Align))
	for i, a := range tab.Align {
		if a == "" {
			cols[i] = 'c'
		} else {
			cols[i] = a[0]
		}
	}

	head := make([]string, len(tab.Head))
	for i, cell := range tab.Head {
		head[i] = `\textbf{` + renderAll(cell, ctx, "") + `}`
	}

	rows := make([]string, len(tab.Body))
	for i, row := range tab.Body {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = renderAll(cell, ctx, "")
		}
		rows[i] = strings.Join(cells, " & ")
	}

	return fmt.Sprintf("\\begin{tabular}{%s}\n%s \\\\\n\\hline\n%s\n\\end{tabular}",
		cols, strings.Join(head, " & "), strings.Join(rows, " \\\\\n"))
}

// texAccent maps a markum accent escape onto the LaTeX accent commands.
func texAccent(acc, letter byte) string {
	switch acc {
	case '`', '\'', '^', '~', '"':
		return `\` + string(acc) + `{` + string(letter) + `}`
	}
	return string(letter)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
