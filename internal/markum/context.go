package markum

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrNotFound is returned by Extern accessors for unknown ids. Renderers
// treat any accessor error as a missing resource and emit a fail marker.
var ErrNotFound = errors.New("markum: not found")

// CiteInfo is citation metadata resolved through an Extern accessor.
type CiteInfo struct {
	Title  string `toml:"title" json:"title"`
	Author string `toml:"author" json:"author"`
	Year   int    `toml:"year" json:"year"`
}

// Extern provides external resources referenced by a document: image
// sources, cross-document references and popups, and citations.
type Extern interface {
	Image(ctx context.Context, id string) (string, error)
	Ref(ctx context.Context, id string) (string, error)
	Popup(ctx context.Context, id string) (string, error)
	Citation(ctx context.Context, id string) (*CiteInfo, error)
}

// Context is the per-render-pass state: counters, cross references,
// popups and the document title. Create one fresh before each render and
// discard it afterwards.
type Context struct {
	Extern Extern
	Macros map[string]string

	// Title is set by the resolution pass; the last Title element wins.
	Title *Title

	// InPopup guards against nested popup rendering.
	InPopup bool

	// Lib accumulates shared gum prelude code.
	Lib string

	counts map[string]int
	refer  map[string]string
	popup  map[string]Node
}

func NewContext() *Context {
	return &Context{
		counts: make(map[string]int),
		refer:  make(map[string]string),
		popup:  make(map[string]Node),
	}
}

// IncNum increments and returns the named counter.
func (c *Context) IncNum(key string) int {
	c.counts[key]++
	return c.counts[key]
}

// GetNum returns the current value of the named counter (zero if unset).
func (c *Context) GetNum(key string) int {
	return c.counts[key]
}

// IncNested increments a hierarchy of counters under name. For a request
// at nesting level, the keys walked are name, name-<v1>, name-<v1>-<v2>,
// and so on for level-1 ancestors; the returned slice is the full path of
// values whose dotted join is the displayed number.
func (c *Context) IncNested(name string, level int) []int {
	key := name
	acc := make([]int, 0, level)
	for i := 1; i < level; i++ {
		num := c.GetNum(key)
		acc = append(acc, num)
		key = key + "-" + strconv.Itoa(num)
	}
	return append(acc, c.IncNum(key))
}

func (c *Context) AddRef(id, label string) {
	c.refer[id] = label
}

func (c *Context) Ref(id string) (string, bool) {
	label, ok := c.refer[id]
	return label, ok
}

func (c *Context) AddPop(id string, elem Node) {
	c.popup[id] = elem
}

func (c *Context) Pop(id string) (Node, bool) {
	elem, ok := c.popup[id]
	return elem, ok
}

// Refer returns the full reference table, keyed by element id.
func (c *Context) Refer() map[string]string {
	return c.refer
}

// Popups returns the full popup table, keyed by element id.
func (c *Context) Popups() map[string]Node {
	return c.popup
}

func (c *Context) image(ctx context.Context, id string) (string, error) {
	if c.Extern == nil {
		return "", ErrNotFound
	}
	return c.Extern.Image(ctx, id)
}

func (c *Context) extRef(ctx context.Context, id string) (string, error) {
	if c.Extern == nil {
		return "", ErrNotFound
	}
	return c.Extern.Ref(ctx, id)
}

func (c *Context) extPop(ctx context.Context, id string) (string, error) {
	if c.Extern == nil {
		return "", ErrNotFound
	}
	return c.Extern.Popup(ctx, id)
}

func (c *Context) citation(ctx context.Context, id string) (*CiteInfo, error) {
	if c.Extern == nil {
		return nil, ErrNotFound
	}
	return c.Extern.Citation(ctx, id)
}

// capitalize upper-cases the first letter, for counter display labels.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinNums(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
