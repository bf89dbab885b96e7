package markum

import (
	"context"
	"strings"
	"testing"
)

func renderHTML(t *testing.T, src string) string {
	t.Helper()
	doc := ParseDocument(src)
	rc := NewContext()
	Refs(doc, rc)
	return HTML(context.Background(), doc, rc)
}

func TestHTML_EndToEnd(t *testing.T) {
	out := renderHTML(t, "#! My Paper\n\nHello @[x].\n\n$$ [x] 1 + 1 = 2")

	checks := []string{
		`<div class="title">`,
		`My Paper`,
		`<a href="#x" class="popover reference">Equation 1</a>`,
		`<div class="popup">`,
		`<div class="equation" id="x">`,
		`<div class="math">`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestHTML_ReferenceFail(t *testing.T) {
	out := renderHTML(t, "see @[missing]")
	if !strings.Contains(out, `<a class="reference fail">@missing</a>`) {
		t.Errorf("unresolved reference should render a fail marker:\n%s", out)
	}
}

func TestHTML_PopupNotNested(t *testing.T) {
	// popup bodies render with the popup guard set, so a reference inside
	// popup content degrades to a plain anchor instead of recursing
	out := renderHTML(t, "$$ [a] x = 1\n\nuse @[a] and @[a]")
	if got := strings.Count(out, `<div class="popup">`); got != 2 {
		t.Errorf("expected one popup per reference, got %d:\n%s", got, out)
	}
	if strings.Contains(out, `<div class="popup"><span class="popper">`) {
		t.Errorf("popup content recursed:\n%s", out)
	}
}

func TestHTML_MathEscaped(t *testing.T) {
	out := renderHTML(t, "inline $a < b$ math")
	if !strings.Contains(out, `<span class="math">a &lt; b</span>`) {
		t.Errorf("math source must be HTML-escaped:\n%s", out)
	}
}

func TestHTML_ErrorBlock(t *testing.T) {
	out := renderHTML(t, "| lone row |")
	if !strings.Contains(out, `<span class="error-prefix">Parse error</span>`) {
		t.Errorf("parse failure should render an error block:\n%s", out)
	}
}

func TestHTML_HeadingClassAndNumber(t *testing.T) {
	out := renderHTML(t, "# One\n\n## Two")
	if !strings.Contains(out, `class="heading heading-1"`) {
		t.Errorf("missing level-1 heading class:\n%s", out)
	}
	if !strings.Contains(out, `<span class="nested-number">1.1</span>`) {
		t.Errorf("missing nested heading number:\n%s", out)
	}
}

func TestHTML_EmojiLookup(t *testing.T) {
	out := renderHTML(t, "ok :smile: bad :not_a_real_one:")
	if !strings.Contains(out, `<span class="emoji">`) {
		t.Errorf("known emoji should render a glyph:\n%s", out)
	}
	if !strings.Contains(out, `<span class="emoji fail">:not_a_real_one:</span>`) {
		t.Errorf("unknown emoji should render a fail span:\n%s", out)
	}
}

func TestHTML_FootnotePopup(t *testing.T) {
	out := renderHTML(t, "claim^[the source]")
	if !strings.Contains(out, `<span class="footnote popper">`) {
		t.Errorf("missing footnote wrapper:\n%s", out)
	}
	if !strings.Contains(out, `<span class="popover number">1</span>`) {
		t.Errorf("footnote marker should be its bare number:\n%s", out)
	}
	if !strings.Contains(out, `<div class="popup">the source</div>`) {
		t.Errorf("missing footnote popup body:\n%s", out)
	}
}

func TestHTML_TableAlignment(t *testing.T) {
	out := renderHTML(t, "| a | b |\n|:-|-:|\n| 1 | 2 |")
	if !strings.Contains(out, `<th style="text-align: left">`) {
		t.Errorf("missing left-aligned header:\n%s", out)
	}
	if !strings.Contains(out, `<td style="text-align: right">`) {
		t.Errorf("missing right-aligned cell:\n%s", out)
	}
}

func TestHTML_BareVersusBody(t *testing.T) {
	doc := ParseDocument("hello")
	rc := NewContext()
	Refs(doc, rc)
	if out := HTML(context.Background(), doc, rc); strings.Contains(out, "<body>") {
		t.Errorf("bare document should not emit a body tag")
	}
	doc.Bare = false
	if out := HTML(context.Background(), doc, rc); !strings.Contains(out, "<body>") {
		t.Errorf("non-bare document should emit a body tag")
	}
}

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<a href="x">&'` + "`" + `%`)
	for _, raw := range []string{"<", ">", `"`, "'", "`", "%"} {
		if strings.Contains(got, raw) {
			t.Errorf("EscapeHTML left %q in %q", raw, got)
		}
	}
}

func TestAttrRepr_Order(t *testing.T) {
	got := attrRepr(map[string]string{"id": "x", "class": "c", "zz": "1", "aa": "2"})
	want := ` class="c" id="x" aa="2" zz="1"`
	if got != want {
		t.Errorf("attribute order: expected %q, got %q", want, got)
	}
}
