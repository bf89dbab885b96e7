package markum

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"`", "&#96;",
	"%", "&#37;",
)

// EscapeHTML escapes text for embedding in rendered output.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// attrOrder fixes the output position of common attributes; anything else
// renders after these in sorted order.
var attrOrder = []string{"class", "id", "href", "src", "style"}

func attrRepr(attrs map[string]string) string {
	var b strings.Builder
	seen := make(map[string]bool, len(attrs))
	emit := func(key string) {
		val := attrs[key]
		if val == "" {
			return
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(EscapeHTML(val))
		b.WriteByte('"')
	}
	for _, key := range attrOrder {
		if _, ok := attrs[key]; ok {
			emit(key)
			seen[key] = true
		}
	}
	rest := make([]string, 0, len(attrs))
	for key := range attrs {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		emit(key)
	}
	return b.String()
}

func tag(name string, attrs map[string]string, inner string) string {
	return "<" + name + attrRepr(attrs) + ">" + inner + "</" + name + ">"
}

func unary(name string, attrs map[string]string) string {
	return "<" + name + attrRepr(attrs) + " />"
}

func widthStyle(width string) string {
	if width == "" {
		return ""
	}
	return "width: " + width + "%"
}

// HTML renders a resolved tree to an HTML string. Resource lookups go
// through the Extern accessors; a missing resource renders as a fail
// marker, never an error.
func HTML(ctx context.Context, node Node, rc *Context) string {
	switch n := node.(type) {
	case *Document:
		inner := htmlAll(ctx, n.Blocks, rc, "\n\n")
		if n.Bare {
			return inner
		}
		return tag("body", nil, inner)

	case *Block:
		return tag("div", map[string]string{"class": "block"}, htmlAll(ctx, n.Children, rc, ""))

	case *Container:
		return tag(n.Tag, n.Attr, htmlAll(ctx, n.Children, rc, n.Pad))

	case *Text:
		return n.Content

	case *ErrorMessage:
		inner := tag("span", map[string]string{"class": "error-prefix"}, "Parse error") +
			": " + tag("span", map[string]string{"class": "error-message"}, EscapeHTML(n.Msg))
		return tag("span", map[string]string{"class": "error"}, inner)

	case *Special:
		return tag("span", map[string]string{"class": "special"}, specialChar(n.Acc, n.Letter))

	case *Escape:
		return tag("span", map[string]string{"class": "escape"}, EscapeHTML(string(n.Char)))

	case *Comment:
		return tag("span", map[string]string{"class": "comment"}, "// "+n.Text)

	case *Link:
		class := n.Class
		if class == "" {
			class = "link"
		}
		inner := n.Href
		if n.Children != nil {
			inner = htmlAll(ctx, n.Children, rc, "")
		}
		return tag("a", map[string]string{"href": n.Href, "class": class}, inner)

	case *Image:
		return unary("img", map[string]string{
			"src": n.Src, "class": "image", "style": widthStyle(n.Width),
		})

	case *InternalImage:
		width := n.Width
		if width == "" {
			width = "50"
		}
		src, err := rc.image(ctx, n.ID)
		if err != nil {
			return tag("span", map[string]string{"class": "internal-image fail"}, EscapeHTML(n.ID))
		}
		return unary("img", map[string]string{
			"src": src, "class": "internal-image", "style": widthStyle(width),
		})

	case *Video:
		return unary("video", map[string]string{"src": n.Src, "class": "video"})

	case *Bold:
		return tag("span", map[string]string{"class": "bold"}, htmlAll(ctx, n.Children, rc, ""))

	case *Italic:
		return tag("span", map[string]string{"class": "italic"}, htmlAll(ctx, n.Children, rc, ""))

	case *Strikeout:
		return tag("span", map[string]string{"class": "strikeout"}, htmlAll(ctx, n.Children, rc, ""))

	case *Monospace:
		return tag("span", map[string]string{"class": "monospace"}, n.Text)

	case *Emoji:
		if glyph, ok := emojiTable[n.Name]; ok {
			return tag("span", map[string]string{"class": "emoji"}, glyph)
		}
		return tag("span", map[string]string{"class": "emoji fail"}, ":"+n.Name+":")

	case *Reference:
		var pop string
		if !rc.InPopup {
			if pelem, ok := rc.Pop(n.ID); ok {
				rc.InPopup = true
				pop = `<div class="popup">` + HTML(ctx, pelem, rc) + `</div>`
				rc.InPopup = false
			}
		}
		if label, ok := rc.Ref(n.ID); ok {
			anchor := fmt.Sprintf(`<a href="#%s" class="popover reference">%s</a>`, n.ID, label)
			return `<span class="popper">` + anchor + pop + `</span>`
		}
		return fmt.Sprintf(`<a class="reference fail">@%s</a>`, n.ID)

	case *ExtRef:
		var pop string
		if !rc.InPopup {
			rc.InPopup = true
			if targ, err := rc.extPop(ctx, n.ID); err == nil {
				pop = `<div class="popup external">` + targ + `</div>`
			}
			rc.InPopup = false
		}
		label, err := rc.extRef(ctx, n.ID)
		if err != nil {
			return fmt.Sprintf(`<a class="reference external fail">[[%s]]</a>`, n.ID)
		}
		url := strings.Replace(n.ID, ":", "#", 1)
		anchor := fmt.Sprintf(`<a href="/%s" class="popover reference external">%s</a>`, url, label)
		return `<span class="popper">` + anchor + pop + `</span>`

	case *Citation:
		cite, err := rc.citation(ctx, n.ID)
		if err != nil {
			return fmt.Sprintf(`<a class="reference citation fail">@@%s</a>`, n.ID)
		}
		pop := `<div class="popup citation">` + EscapeHTML(cite.Title) + `</div>`
		label := fmt.Sprintf("%s (%d)", EscapeHTML(cite.Author), cite.Year)
		return `<span class="popper"><a href="" class="popover reference citation">` + label + `</a>` + pop + `</span>`

	case *Footnote:
		pop := tag("div", map[string]string{"class": "popup"}, htmlAll(ctx, n.Children, rc, ""))
		return tag("span", map[string]string{"class": "footnote popper"}, HTML(ctx, n.num, rc)+pop)

	case *Sidenote:
		bar := tag("div", map[string]string{"class": "sidebar"}, htmlAll(ctx, n.Children, rc, ""))
		return tag("span", map[string]string{"class": "sidenote"}, HTML(ctx, n.num, rc)+bar)

	case *Hash:
		return tag("a", map[string]string{"href": "#" + n.Tag, "class": "hash"}, n.Tag)

	case *Newline:
		return "<br />"

	case *Math:
		tex := n.Tex
		if n.Multiline {
			tex = `\begin{aligned}` + tex + `\end{aligned}`
		}
		name := "span"
		if n.Display {
			name = "div"
		}
		return tag(name, map[string]string{"class": "math"}, EscapeHTML(tex))

	case *Number:
		class := "number"
		if n.Class != "" {
			class = n.Class + " number"
		}
		inner := n.label
		if n.Title == "" && n.Bare {
			inner = fmt.Sprintf("%d", n.num)
		}
		return tag("span", map[string]string{"class": class}, inner)

	case *NestedNumber:
		return tag("span", map[string]string{"class": "nested-number"}, n.label)

	case *Equation:
		inner := HTML(ctx, n.math, rc)
		if n.num != nil {
			inner += HTML(ctx, n.num, rc)
		}
		return tag("div", map[string]string{"class": "equation", "id": n.ID}, inner)

	case *Caption:
		var inner string
		if n.num != nil {
			inner = HTML(ctx, n.num, rc) + ": "
		}
		inner += htmlAll(ctx, n.Children, rc, "")
		return tag("div", map[string]string{"class": "caption"}, inner)

	case *Figure:
		inner := HTML(ctx, n.Child, rc)
		if n.Caption != nil {
			inner += HTML(ctx, n.Caption, rc)
		}
		return tag("div", map[string]string{"class": n.FType, "id": n.ID}, inner)

	case *List:
		name := "ul"
		if n.Ordered {
			name = "ol"
		}
		var b strings.Builder
		for _, item := range n.Items {
			b.WriteString(tag("li", nil, htmlAll(ctx, item, rc, "")))
		}
		return tag(name, nil, b.String())

	case *Table:
		return htmlTable(ctx, n, rc)

	case *TableWrapper:
		return tag("div", map[string]string{"class": "table"}, HTML(ctx, n.Table, rc))

	case *Title:
		return tag("div", map[string]string{"class": "title"}, htmlAll(ctx, n.Children, rc, ""))

	case *Heading:
		var inner string
		if n.num != nil {
			inner = HTML(ctx, n.num, rc) + " "
		}
		inner += htmlAll(ctx, n.Children, rc, "")
		class := fmt.Sprintf("heading heading-%d", n.Level)
		return tag("div", map[string]string{"class": class, "id": n.ID}, inner)

	case *Rule:
		return unary("hr", map[string]string{"class": "rule"})

	case *Blockquote:
		return tag("div", map[string]string{"class": "blockquote"}, n.Text)

	case *Code:
		class := "code"
		if n.Lang != "" {
			class = "code code-" + n.Lang
		}
		return tag("div", map[string]string{"class": class}, n.Code)

	case *Svg:
		return tag("div", map[string]string{"class": "svg", "style": widthStyle(n.Width)}, n.Code)

	case *Gum:
		width := n.Width
		if width == "" {
			width = "65"
		}
		code := n.Code
		if rc.Lib != "" {
			code = rc.Lib + "\n" + code
		}
		return tag("div", map[string]string{"class": "gum", "style": widthStyle(width)}, EscapeHTML(code))

	case *GumLib:
		return tag("span", map[string]string{"class": "comment gum-lib"}, "// gum.js headers")

	case *Upload:
		return tag("div", map[string]string{"class": "upload", "id": n.ID}, "")

	case *EnvBegin:
		return htmlEnv(ctx, rc, "env env-beg env-"+n.Name, n.ID, n.num, n.Children)

	case *EnvSingle:
		return htmlEnv(ctx, rc, "env env-one env-"+n.Name, n.ID, n.num, n.Children)

	case *EnvEnd:
		return tag("div", map[string]string{"class": "env-end"}, htmlAll(ctx, n.Children, rc, ""))
	}

	return fmt.Sprintf(`<span class="error">Unknown element of type: %T</span>`, node)
}

func htmlAll(ctx context.Context, nodes []Node, rc *Context, pad string) string {
	var b strings.Builder
	b.WriteString(pad)
	for _, n := range nodes {
		b.WriteString(HTML(ctx, n, rc))
		b.WriteString(pad)
	}
	return b.String()
}

func htmlEnv(ctx context.Context, rc *Context, class, id string, num *Number, children []Node) string {
	var inner string
	if num != nil {
		inner = HTML(ctx, num, rc) + " "
	}
	inner += htmlAll(ctx, children, rc, "")
	return tag("div", map[string]string{"class": class, "id": id}, inner)
}

func htmlTable(ctx context.Context, n *Table, rc *Context) string {
	alignAt := func(i int) map[string]string {
		if i < len(n.Align) && n.Align[i] != "" {
			return map[string]string{"style": "text-align: " + n.Align[i]}
		}
		return nil
	}

	var hrow strings.Builder
	for i, cell := range n.Head {
		hrow.WriteString(tag("th", alignAt(i), htmlAll(ctx, cell, rc, "")))
	}
	head := tag("thead", nil, tag("tr", nil, hrow.String()))

	var brows strings.Builder
	for _, row := range n.Body {
		var cells strings.Builder
		for i, cell := range row {
			cells.WriteString(tag("td", alignAt(i), htmlAll(ctx, cell, rc, "")))
		}
		brows.WriteString(tag("tr", nil, cells.String()))
	}
	body := tag("tbody", nil, brows.String())

	return tag("table", nil, head+body)
}
