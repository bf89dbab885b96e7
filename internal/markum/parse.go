package markum

import (
	"fmt"
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\n{2,}`)

// ParseDocument splits source text on blank-line boundaries and parses
// each block independently. A failure in one block never aborts the
// document: the block is replaced by a visible error element.
func ParseDocument(src string) *Document {
	parts := blankLine.Split(strings.TrimSpace(src), -1)
	blocks := make([]Node, len(parts))
	for i, part := range parts {
		blocks[i] = parseBlockRobust(part)
	}
	return &Document{Blocks: blocks, Bare: true}
}

func parseBlockRobust(src string) *Block {
	children, err := parseBlock(src)
	if err != nil {
		return &Block{Children: []Node{&ErrorMessage{Msg: err.Error()}}}
	}
	return &Block{Children: children}
}

// parsePrefix splits a prefix-flag capture ("*&") into its characters.
func parsePrefix(pre string) (star, amp bool) {
	return strings.Contains(pre, "*"), strings.Contains(pre, "&")
}

var validArg = regexp.MustCompile(`^[a-zA-Z0-9_\-.:]+$`)

// splitEscaped splits s on any of the separator bytes, skipping
// backslash-escaped occurrences.
func splitEscaped(s string, seps ...byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		for _, sep := range seps {
			if s[i] == sep {
				out = append(out, s[start:i])
				start = i + 1
				break
			}
		}
	}
	return append(out, s[start:])
}

var argUnescape = strings.NewReplacer(`\=`, `=`, `\|`, `|`)

// parseArgs parses a bracketed argument group "key=val|key2=val2" into a
// mapping. A bare first token becomes the id attribute; malformed ids are
// dropped silently.
func parseArgs(raw string) map[string]string {
	args := map[string]string{}
	if raw == "" {
		return args
	}
	parts := splitEscaped(raw, '|', '\n')
	for _, part := range parts {
		fields := splitEscaped(part, '=')
		if len(fields) < 2 {
			continue
		}
		val := argUnescape.Replace(fields[len(fields)-1])
		for _, key := range fields[:len(fields)-1] {
			if validArg.MatchString(key) {
				args[key] = val
			}
		}
	}
	if id, ok := args["id"]; !ok {
		if fst := parts[0]; validArg.MatchString(fst) {
			args["id"] = fst
		}
	} else if !validArg.MatchString(id) {
		delete(args, "id")
	}
	return args
}

func parseList(src string) (*List, error) {
	var items [][]Node
	ordered := true
	for _, line := range strings.Split(src, "\n") {
		if len(line) == 0 {
			continue
		}
		mat := blockListItem.FindStringSubmatch(line)
		if mat == nil {
			return nil, fmt.Errorf("malformed list item: %q", line)
		}
		ordered = ordered && len(mat[2]) > 1
		inner, err := parseInline(line[len(mat[0]):])
		if err != nil {
			return nil, err
		}
		items = append(items, inner)
	}
	return &List{Ordered: ordered, Items: items}, nil
}

var (
	alignRight  = regexp.MustCompile(`^ *-+: *$`)
	alignCenter = regexp.MustCompile(`^ *:-+: *$`)
	alignLeft   = regexp.MustCompile(`^ *:-+ *$`)
	cellTrim    = regexp.MustCompile(`^ *\| *| *\| *$`)
	cellSplit   = regexp.MustCompile(` *\| *`)
)

func parseAlign(a string) string {
	switch {
	case alignRight.MatchString(a):
		return "right"
	case alignCenter.MatchString(a):
		return "center"
	case alignLeft.MatchString(a):
		return "left"
	}
	return ""
}

func splitCells(row string) []string {
	return cellSplit.Split(cellTrim.ReplaceAllString(row, ""), -1)
}

func parseTable(src string) (*Table, error) {
	rows := strings.Split(strings.TrimSpace(src), "\n")
	if len(rows) < 2 {
		return nil, fmt.Errorf("table needs a header and an alignment row")
	}
	header := splitCells(rows[0])
	align := make([]string, 0, len(header))
	for _, a := range splitCells(rows[1]) {
		align = append(align, parseAlign(a))
	}

	head := make([][]Node, len(header))
	for i, cell := range header {
		inner, err := parseInline(cell)
		if err != nil {
			return nil, err
		}
		head[i] = inner
	}

	var body [][][]Node
	for _, row := range rows[2:] {
		cells := splitCells(row)
		parsed := make([][]Node, len(cells))
		for i, cell := range cells {
			inner, err := parseInline(cell)
			if err != nil {
				return nil, err
			}
			parsed[i] = inner
		}
		body = append(body, parsed)
	}

	return &Table{Head: head, Body: body, Align: align}, nil
}

var blockNormalizer = strings.NewReplacer(
	"\r\n", "\n", "\r", "\n", // DOS newlines
	"\t", "    ", // tabs
	" ", " ", // non-breaking space
	"␤", "\n", "\f", "\n", // newline symbol, form feed
)

var blankOnly = regexp.MustCompile(`(?m)^ +$`)

// parseBlock matches one normalized block against the ordered block rules
// and returns its parsed content. The fallback treats the block as an
// inline-parsed paragraph.
func parseBlock(src string) ([]Node, error) {
	src = blankOnly.ReplaceAllString(blockNormalizer.Replace(src), "")

	// empty cell (all whitespace)
	if blockEmpty.MatchString(src) {
		return nil, nil
	}

	// equation
	if mat := blockEquation.FindStringSubmatch(src); mat != nil {
		star, amp := parsePrefix(mat[1])
		args := parseArgs(mat[2])
		eq := &Equation{
			Tex:       src[len(mat[0]):],
			Numbered:  !star,
			Multiline: amp,
			ID:        args["id"],
			Title:     args["title"],
		}
		return []Node{eq}, nil
	}

	// upload stub
	if mat := blockUpload.FindStringSubmatch(src); mat != nil {
		args := parseArgs(mat[2])
		return []Node{&Upload{ID: args["id"], Gum: mat[1] == "gum"}}, nil
	}

	// figure: image/video/figure/table/code/svg/gum
	if mat := blockFigure.FindStringSubmatch(src); mat != nil {
		return parseFigure(src, mat)
	}

	// comment
	if mat := blockComment.FindStringSubmatch(src); mat != nil {
		return []Node{&Comment{Text: src[len(mat[0]):]}}, nil
	}

	// fenced code
	if mat := blockCode.FindStringSubmatch(src); mat != nil {
		args := parseArgs(mat[2])
		return []Node{&Code{Code: src[len(mat[0]):], Lang: args["lang"]}}, nil
	}

	// title
	if mat := blockTitle.FindStringSubmatch(src); mat != nil {
		inner, err := parseInline(mat[2])
		if err != nil {
			return nil, err
		}
		return []Node{&Title{Children: inner}}, nil
	}

	// heading
	if mat := blockHeading.FindStringSubmatch(src); mat != nil {
		inner, err := parseInline(mat[4])
		if err != nil {
			return nil, err
		}
		args := parseArgs(mat[3])
		h := &Heading{
			Level:    len(mat[1]),
			Numbered: mat[2] != "*",
			ID:       args["id"],
			Children: inner,
		}
		return []Node{h}, nil
	}

	// environment begin (>>name) or single (>>!name)
	if mat := blockEnvBegin.FindStringSubmatch(src); mat != nil {
		args := parseArgs(mat[3])
		inner, err := parseInline(src[len(mat[0]):])
		if err != nil {
			return nil, err
		}
		numbered := !strings.Contains(mat[1], "*")
		if strings.Contains(mat[1], "!") {
			env := &EnvSingle{Name: mat[2], Numbered: numbered, ID: args["id"], Children: inner}
			return []Node{env}, nil
		}
		env := &EnvBegin{Name: mat[2], Numbered: numbered, ID: args["id"], Children: inner}
		return []Node{env}, nil
	}

	// environment end (<<)
	if mat := blockEnvEnd.FindStringSubmatch(src); mat != nil {
		inner, err := parseInline(src[len(mat[0]):])
		if err != nil {
			return nil, err
		}
		return []Node{&EnvEnd{Children: inner}}, nil
	}

	// setext heading
	if mat := blockLHeading.FindStringSubmatch(src); mat != nil {
		inner, err := parseInline(mat[1])
		if err != nil {
			return nil, err
		}
		level := 2
		if mat[2] == "=" {
			level = 1
		}
		return []Node{&Heading{Level: level, Numbered: true, Children: inner}}, nil
	}

	// horizontal rule
	if blockHRule.MatchString(src) {
		return []Node{&Rule{}}, nil
	}

	// blockquote
	if mat := blockBlockquote.FindStringSubmatch(src); mat != nil {
		return []Node{&Blockquote{Text: src[len(mat[0]):]}}, nil
	}

	// list
	if mat := blockList.FindStringSubmatch(src); mat != nil {
		list, err := parseList(mat[0])
		if err != nil {
			return nil, err
		}
		return []Node{list}, nil
	}

	// table
	if mat := blockTable.FindStringSubmatch(src); mat != nil {
		tab, err := parseTable(mat[0])
		if err != nil {
			return nil, err
		}
		return []Node{&TableWrapper{Table: tab}}, nil
	}

	// top-level paragraph (fallback)
	return parseInline(src)
}

func parseFigure(src string, mat []string) ([]Node, error) {
	tag := mat[1]
	if tag == "" {
		tag = "fig"
	}
	numbered := mat[2] != "*"
	args := parseArgs(mat[3])
	id, title := args["id"], args["title"]
	body := src[len(mat[0]):]

	var caption []Node
	if cap, ok := args["caption"]; ok {
		inner, err := parseInline(cap)
		if err != nil {
			return nil, err
		}
		caption = inner
	}

	var child Node
	ftype := "figure"
	switch tag {
	case "fig":
		inner, err := parseInline(body)
		if err != nil {
			return nil, err
		}
		child = &Container{Tag: "div", Children: inner}
	case "tab":
		ftype = "table"
		tab, err := parseTable(body)
		if err != nil {
			child = &Container{Tag: "div", Children: []Node{&Text{Content: err.Error()}}}
		} else {
			child = tab
		}
	case "img":
		if key, ok := args["key"]; ok {
			child = &InternalImage{ID: key, Width: args["width"]}
		} else if url, ok := args["url"]; ok {
			child = &Image{Src: url, Width: args["width"]}
		} else {
			child = &ErrorMessage{Msg: "No `url` or `key` provided"}
		}
	case "vid":
		child = &Video{Src: body}
	case "svg":
		child = &Svg{Code: body, Width: args["width"]}
	case "gum":
		child = &Gum{Code: body, Width: args["width"]}
	case "lib":
		// hidden: contributes prelude code, renders as a comment
		return []Node{&GumLib{Code: body}}, nil
	case "code":
		child = &Code{Code: body, Lang: args["lang"]}
	default:
		return nil, fmt.Errorf("unknown figure tag: !%s", tag)
	}

	fig := &Figure{Child: child, FType: ftype, ID: id, Title: title, Numbered: numbered}
	if caption != nil {
		fig.Caption = newCaption(caption, ftype, title, id, numbered)
	}
	return []Node{fig}, nil
}

func newCaption(children []Node, ftype, title, id string, numbered bool) *Caption {
	cap := &Caption{FType: ftype, Numbered: numbered, Children: children}
	if numbered {
		cap.num = &Number{Name: ftype, Title: title, ID: id, Bare: false}
	}
	return cap
}

// parseInline consumes the source left to right, trying the inline rules
// in order at each position. The text fallback always consumes at least
// one byte; a scan that consumes nothing is a grammar gap and is surfaced
// as an error rather than looping.
func parseInline(src string) ([]Node, error) {
	var out []Node
	for len(src) > 0 {
		// accent escape
		if mat := inlineSpecial.FindStringSubmatch(src); mat != nil {
			out = append(out, &Special{Acc: mat[1][0], Letter: mat[2][0]})
			src = src[len(mat[0]):]
			continue
		}

		// backslash escape
		if mat := inlineEscape.FindStringSubmatch(src); mat != nil {
			out = append(out, &Escape{Char: mat[1][0]})
			src = src[len(mat[0]):]
			continue
		}

		// inline math
		if mat := inlineMath.FindStringSubmatch(src); mat != nil {
			out = append(out, &Math{Tex: mat[1]})
			src = src[len(mat[0]):]
			continue
		}

		// inline comment
		if mat := inlineComment.FindStringSubmatch(src); mat != nil {
			out = append(out, &Comment{Text: mat[1]})
			src = src[len(mat[0]):]
			continue
		}

		// reference and citation
		if mat := inlineRefCite.FindStringSubmatch(src); mat != nil {
			args := parseArgs(mat[2])
			if mat[1] == "@" {
				out = append(out, &Reference{ID: args["id"]})
			} else {
				out = append(out, &Citation{ID: args["id"]})
			}
			src = src[len(mat[0]):]
			continue
		}

		// footnote and sidenote
		if node, size, err, ok := matchFootnote(src); ok {
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			src = src[size:]
			continue
		}

		// external reference
		if mat := inlineILink.FindStringSubmatch(src); mat != nil {
			args := parseArgs(mat[1])
			out = append(out, &ExtRef{ID: args["id"]})
			src = src[len(mat[0]):]
			continue
		}

		// autolink
		if mat := inlineAutolink.FindStringSubmatch(src); mat != nil {
			out = append(out, &Link{Href: mat[1], Class: "link"})
			src = src[len(mat[0]):]
			continue
		}

		// bare url
		if mat := inlineURL.FindStringSubmatch(src); mat != nil {
			out = append(out, &Link{Href: mat[1], Class: "link"})
			src = src[len(mat[0]):]
			continue
		}

		// markdown link and image
		if node, size, err, ok := matchLink(src); ok {
			if err != nil {
				return nil, err
			}
			out = append(out, node)
			src = src[size:]
			continue
		}

		// strong
		if inner, size, ok := matchStrong(src); ok {
			children, err := parseInline(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, &Bold{Children: children})
			src = src[size:]
			continue
		}

		// hash tag
		if mat := inlineHash.FindStringSubmatch(src); mat != nil {
			tag := strings.Trim(mat[1], "[]")
			out = append(out, &Hash{Tag: tag})
			src = src[len(mat[0]):]
			continue
		}

		// emphasis
		if inner, size, ok := matchEm(src); ok {
			children, err := parseInline(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, &Italic{Children: children})
			src = src[size:]
			continue
		}

		// inline code
		if inner, size, ok := matchCode(src); ok {
			out = append(out, &Monospace{Text: inner})
			src = src[size:]
			continue
		}

		// strikethrough
		if mat := inlineDel.FindStringSubmatch(src); mat != nil {
			children, err := parseInline(mat[1])
			if err != nil {
				return nil, err
			}
			out = append(out, &Strikeout{Children: children})
			src = src[len(mat[0]):]
			continue
		}

		// emoji shortcode
		if mat := inlineEmoji.FindStringSubmatch(src); mat != nil {
			out = append(out, &Emoji{Name: mat[1]})
			src = src[len(mat[0]):]
			continue
		}

		// line break
		if mat := inlineBreak.FindString(src); mat != "" {
			out = append(out, &Newline{})
			src = src[len(mat):]
			continue
		}

		// plain text
		if size := matchText(src); size > 0 {
			out = append(out, &Text{Content: src[:size]})
			src = src[size:]
			continue
		}

		return nil, fmt.Errorf("no inline rule matched at byte %d", src[0])
	}
	return out, nil
}

// matchBracketed returns the contents of a balanced bracket group starting
// at s[0] == '[' and the total bytes consumed.
func matchBracketed(s string) (string, int, bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", 0, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[1:i], i + 1, true
			}
		}
	}
	return "", 0, false
}

func matchFootnote(s string) (Node, int, error, bool) {
	if len(s) == 0 || s[0] != '^' {
		return nil, 0, nil, false
	}
	rest, side := s[1:], false
	size := 1
	if strings.HasPrefix(rest, "!") {
		rest, side = rest[1:], true
		size++
	}
	inner, n, ok := matchBracketed(rest)
	if !ok {
		return nil, 0, nil, false
	}
	children, err := parseInline(inner)
	if err != nil {
		return nil, 0, err, true
	}
	if side {
		return &Sidenote{Children: children}, size + n, nil, true
	}
	return &Footnote{Children: children}, size + n, nil, true
}

func matchLink(s string) (Node, int, error, bool) {
	rest, image := s, false
	size := 0
	if strings.HasPrefix(rest, "!") {
		rest, image = rest[1:], true
		size = 1
	}
	text, n, ok := matchBracketed(rest)
	if !ok {
		return nil, 0, nil, false
	}
	rest = rest[n:]
	size += n
	if !strings.HasPrefix(rest, "(") {
		return nil, 0, nil, false
	}
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return nil, 0, nil, false
	}
	href := rest[1:end]
	if mat := inlineHref.FindStringSubmatch(href); mat != nil {
		href = mat[1]
	}
	size += end + 1
	if image {
		return &Image{Src: href}, size, nil, true
	}
	children, err := parseInline(text)
	if err != nil {
		return nil, 0, err, true
	}
	return &Link{Href: href, Class: "link", Children: children}, size, nil, true
}

// matchStrong matches **text** or __text__, where the closing delimiter
// is not followed by another delimiter character.
func matchStrong(s string) (string, int, bool) {
	if len(s) < 5 {
		return "", 0, false
	}
	var c byte
	if strings.HasPrefix(s, "__") {
		c = '_'
	} else if strings.HasPrefix(s, "**") {
		c = '*'
	} else {
		return "", 0, false
	}
	for i := 3; i+1 < len(s); i++ {
		if s[i] != c || s[i+1] != c {
			continue
		}
		if i+2 < len(s) && s[i+2] == c {
			continue
		}
		return s[2:i], i + 2, true
	}
	return "", 0, false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// matchEm matches *text* or _text_. The underscore form requires a word
// boundary after the closing delimiter and rejects lone underscores in
// its content; doubled delimiters pass through as content.
func matchEm(s string) (string, int, bool) {
	if len(s) < 3 {
		return "", 0, false
	}
	switch s[0] {
	case '_':
		for i := 1; i < len(s); i++ {
			if s[i] != '_' {
				continue
			}
			if i+1 < len(s) && s[i+1] == '_' {
				i++
				continue
			}
			if i == 1 {
				return "", 0, false
			}
			if i+1 < len(s) && isWordByte(s[i+1]) {
				return "", 0, false
			}
			return s[1:i], i + 1, true
		}
	case '*':
		for i := 1; i < len(s); i++ {
			if s[i] != '*' {
				continue
			}
			if i+1 < len(s) && s[i+1] == '*' {
				i++
				continue
			}
			if i == 1 {
				return "", 0, false
			}
			return s[1:i], i + 1, true
		}
	}
	return "", 0, false
}

// matchCode matches backtick-delimited inline code. The closing run must
// have the same length as the opening run and not be followed by another
// backtick; surrounding whitespace is trimmed from the content.
func matchCode(s string) (string, int, bool) {
	if len(s) == 0 || s[0] != '`' {
		return "", 0, false
	}
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	delim := s[:n]
	for j := n + 1; j+n <= len(s); j++ {
		if s[j:j+n] != delim {
			continue
		}
		if j+n < len(s) && s[j+n] == '`' {
			continue
		}
		inner := strings.TrimSpace(s[n:j])
		if inner == "" || strings.HasSuffix(inner, "`") {
			continue
		}
		return inner, j + n, true
	}
	return "", 0, false
}

const textStops = "/\\<![_*`$^@#~:"

// matchText consumes a plain text run up to the next special character,
// bare URL, or line break. It always consumes at least one byte.
func matchText(s string) int {
	i := 1
	for ; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(textStops, c) >= 0 {
			break
		}
		if c == '\n' {
			// the break rule owns any spaces preceding the newline
			j := i
			for j > 1 && s[j-1] == ' ' {
				j--
			}
			return j
		}
		if c == 'h' && (strings.HasPrefix(s[i:], "http://") || strings.HasPrefix(s[i:], "https://")) {
			break
		}
	}
	return i
}
