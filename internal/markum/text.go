package markum

import "strings"

// InnerText flattens inline content to plain text, dropping markup. Used
// for index entries and window titles.
func InnerText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		innerText(&b, n)
	}
	return b.String()
}

func innerText(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Text:
		b.WriteString(n.Content)
	case *Escape:
		b.WriteByte(n.Char)
	case *Special:
		b.WriteString(string(n.Letter))
	case *Monospace:
		b.WriteString(n.Text)
	case *Math:
		b.WriteString(n.Tex)
	case *Bold:
		b.WriteString(InnerText(n.Children))
	case *Italic:
		b.WriteString(InnerText(n.Children))
	case *Strikeout:
		b.WriteString(InnerText(n.Children))
	case *Link:
		b.WriteString(InnerText(n.Children))
	case *Container:
		b.WriteString(InnerText(n.Children))
	case *Newline:
		b.WriteString(" ")
	}
}
