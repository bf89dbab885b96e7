// Package markum parses the Markum markup language into an element tree
// and renders it to HTML. A document is split into blocks on blank lines,
// each block is parsed by an ordered list of block rules, and inline
// content is consumed left to right by an ordered list of inline rules.
package markum

// Node is one element of the parsed document tree. Concrete types carry
// variant-specific fields; renderers dispatch on the concrete type.
type Node interface {
	node()
}

// Document is the root of a parsed tree.
type Document struct {
	Blocks []Node // each element is a *Block
	Bare   bool   // render without a wrapping <body> tag
}

// Block wraps one blank-line-delimited unit of the source.
type Block struct {
	Children []Node
}

// Container is a generic tagged container with attributes. It backs the
// structural elements that have no variant-specific behavior.
type Container struct {
	Tag      string
	Attr     map[string]string
	Pad      string
	Children []Node
}

// Text is a raw text run.
type Text struct {
	Content string
}

// ErrorMessage is a visible stand-in for a failed block or inline parse.
type ErrorMessage struct {
	Msg string
}

// Special is an accent escape like \`{a}, resolved through the accent table.
type Special struct {
	Acc    byte
	Letter byte
}

// Escape is a backslash-escaped literal character.
type Escape struct {
	Char byte
}

// Comment renders its text verbatim behind a comment marker.
type Comment struct {
	Text string
}

// Link is an anchor. Children may be nil, in which case the href doubles
// as the link text.
type Link struct {
	Href     string
	Class    string
	Children []Node
}

// Image is an external image by URL.
type Image struct {
	Src   string
	Width string
}

// InternalImage is an image resolved through the external image accessor.
type InternalImage struct {
	ID    string
	Width string
}

// Video is an external video by URL.
type Video struct {
	Src string
}

// Bold, Italic and Strikeout are inline emphasis spans.
type Bold struct{ Children []Node }

type Italic struct{ Children []Node }

type Strikeout struct{ Children []Node }

// Monospace is inline code.
type Monospace struct {
	Text string
}

// Emoji is a shortcode looked up in the emoji table at render time.
type Emoji struct {
	Name string
}

// Reference is an in-document cross reference (@[id]).
type Reference struct {
	ID string
}

// ExtRef is a cross-document reference ([[doc:id]]).
type ExtRef struct {
	ID string
}

// Citation is a bibliographic reference (@@[id]).
type Citation struct {
	ID string
}

// Footnote is numbered hover text; Sidenote renders in the margin.
type Footnote struct {
	Children []Node
	num      *Number
}

type Sidenote struct {
	Children []Node
	num      *Number
}

// Hash is a tag link (#word).
type Hash struct {
	Tag string
}

// Newline is an explicit line break within a block.
type Newline struct{}

// Math is inline or display TeX, typeset client side.
type Math struct {
	Tex       string
	Display   bool
	Multiline bool
}

// Number is a counter in a flat namespace ("equation", "figure", ...).
// Resolution fills num and label; see Refs.
type Number struct {
	Name  string
	Title string
	Bare  bool
	ID    string
	Class string

	num   int
	label string
}

// NestedNumber is a hierarchical counter; headings use it. Resolution
// fills the dotted label ("2.3").
type NestedNumber struct {
	Name  string
	Level int

	label string
}

// Equation is a display equation block, optionally numbered.
type Equation struct {
	Tex       string
	Multiline bool
	Numbered  bool
	ID        string
	Title     string

	math *Math
	num  *Number
}

// Caption is a figure or table caption, optionally prefixed by a counter.
type Caption struct {
	FType    string
	Numbered bool
	Children []Node
	num      *Number
}

// Figure wraps a child element (image, table, svg, ...) with an optional
// caption and counter namespace keyed by FType.
type Figure struct {
	Child    Node
	FType    string // "figure" or "table"
	ID       string
	Title    string
	Numbered bool
	Caption  *Caption
}

// List is a bulleted or numbered list with inline-parsed items.
type List struct {
	Ordered bool
	Items   [][]Node
}

// Table holds inline-parsed header and body cells with per-column
// alignment ("left", "center", "right" or "").
type Table struct {
	Head  [][]Node
	Body  [][][]Node
	Align []string
}

// TableWrapper is a bare pipe table outside a figure.
type TableWrapper struct {
	Table *Table
}

// Title is the document title block (#!).
type Title struct {
	Children []Node
}

// Heading is a section heading with optional nested numbering.
type Heading struct {
	Level    int
	Numbered bool
	ID       string
	Children []Node
	num      *NestedNumber
}

// Rule is a horizontal rule.
type Rule struct{}

// Blockquote carries its body text verbatim.
type Blockquote struct {
	Text string
}

// Code is a fenced code block.
type Code struct {
	Code string
	Lang string
}

// Svg is a raw inline SVG block.
type Svg struct {
	Code  string
	Width string
}

// Gum is an embedded-graphics block handed to the external gum engine.
type Gum struct {
	Code  string
	Width string
}

// GumLib accumulates shared gum prelude code on the context.
type GumLib struct {
	Code string
}

// Upload is a placeholder block for a pending media upload.
type Upload struct {
	ID  string
	Gum bool
}

// EnvBegin, EnvSingle and EnvEnd delimit numbered environments.
type EnvBegin struct {
	Name     string
	Numbered bool
	ID       string
	Children []Node
	num      *Number
}

type EnvSingle struct {
	Name     string
	Numbered bool
	ID       string
	Children []Node
	num      *Number
}

type EnvEnd struct {
	Children []Node
}

func (*Document) node()      {}
func (*Block) node()         {}
func (*Container) node()     {}
func (*Text) node()          {}
func (*ErrorMessage) node()  {}
func (*Special) node()       {}
func (*Escape) node()        {}
func (*Comment) node()       {}
func (*Link) node()          {}
func (*Image) node()         {}
func (*InternalImage) node() {}
func (*Video) node()         {}
func (*Bold) node()          {}
func (*Italic) node()        {}
func (*Strikeout) node()     {}
func (*Monospace) node()     {}
func (*Emoji) node()         {}
func (*Reference) node()     {}
func (*ExtRef) node()        {}
func (*Citation) node()      {}
func (*Footnote) node()      {}
func (*Sidenote) node()      {}
func (*Hash) node()          {}
func (*Newline) node()       {}
func (*Math) node()          {}
func (*Number) node()        {}
func (*NestedNumber) node()  {}
func (*Equation) node()      {}
func (*Caption) node()       {}
func (*Figure) node()        {}
func (*List) node()          {}
func (*Table) node()         {}
func (*TableWrapper) node()  {}
func (*Title) node()         {}
func (*Heading) node()       {}
func (*Rule) node()          {}
func (*Blockquote) node()    {}
func (*Code) node()          {}
func (*Svg) node()           {}
func (*Gum) node()           {}
func (*GumLib) node()        {}
func (*Upload) node()        {}
func (*EnvBegin) node()      {}
func (*EnvSingle) node()     {}
func (*EnvEnd) node()        {}
