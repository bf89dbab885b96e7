package markum

import "testing"

func resolveDoc(src string) *Context {
	ctx := NewContext()
	Refs(ParseDocument(src), ctx)
	return ctx
}

func TestRefs_EquationCounters(t *testing.T) {
	ctx := resolveDoc("$$ [a] x = 1\n\n$$ [b] y = 2\n\n$$* z = 3\n\n$$ [c] w = 4")

	tests := []struct {
		id, label string
	}{
		{"a", "Equation 1"},
		{"b", "Equation 2"},
		// the starred equation does not consume a number
		{"c", "Equation 3"},
	}
	for _, tt := range tests {
		label, ok := ctx.Ref(tt.id)
		if !ok {
			t.Fatalf("no ref registered for %q", tt.id)
		}
		if label != tt.label {
			t.Errorf("ref %q: expected %q, got %q", tt.id, tt.label, label)
		}
	}
}

func TestRefs_NestedHeadingNumbers(t *testing.T) {
	src := "# One\n\n## One A\n\n## One B\n\n# Two\n\n## Two A"
	doc := ParseDocument(src)
	ctx := NewContext()
	Refs(doc, ctx)

	var labels []string
	for _, b := range doc.Blocks {
		h := b.(*Block).Children[0].(*Heading)
		labels = append(labels, h.num.label)
	}
	want := []string{"1", "1.1", "1.2", "2", "2.1"}
	for i, w := range want {
		if labels[i] != w {
			t.Errorf("heading %d: expected %q, got %q", i, w, labels[i])
		}
	}
}

func TestRefs_UnnumberedHeadingSkipped(t *testing.T) {
	doc := ParseDocument("#* Preface\n\n# Intro")
	ctx := NewContext()
	Refs(doc, ctx)

	pre := doc.Blocks[0].(*Block).Children[0].(*Heading)
	if pre.num != nil {
		t.Errorf("starred heading should have no number")
	}
	intro := doc.Blocks[1].(*Block).Children[0].(*Heading)
	if intro.num == nil || intro.num.label != "1" {
		t.Errorf("numbering should start at the first numbered heading")
	}
}

func TestRefs_TitleLastWins(t *testing.T) {
	ctx := resolveDoc("#! First\n\n#! Second")
	if ctx.Title == nil {
		t.Fatalf("no title recorded")
	}
	if got := InnerText(ctx.Title.Children); got != "Second" {
		t.Errorf("expected later title to win, got %q", got)
	}
}

func TestRefs_FigureAndEnvCounters(t *testing.T) {
	src := "!img [f1|url=a.png|caption=First]\n\n!img [f2|url=b.png|caption=Second]\n\n>> theorem [t1] Claim\n\n<<"
	ctx := resolveDoc(src)

	if label, _ := ctx.Ref("f1"); label != "Figure 1" {
		t.Errorf("f1: got %q", label)
	}
	if label, _ := ctx.Ref("f2"); label != "Figure 2" {
		t.Errorf("f2: got %q", label)
	}
	if label, _ := ctx.Ref("t1"); label != "Theorem 1" {
		t.Errorf("t1: got %q", label)
	}
}

func TestRefs_PopupsRegistered(t *testing.T) {
	ctx := resolveDoc("$$ [eq] E = mc^2\n\n!img [pic|url=x.png|caption=C]")
	if _, ok := ctx.Pop("eq"); !ok {
		t.Errorf("equation popup missing")
	}
	if _, ok := ctx.Pop("pic"); !ok {
		t.Errorf("figure popup missing")
	}
}

func TestRefs_FootnoteNumbering(t *testing.T) {
	doc := ParseDocument("first^[a] and second^[b]")
	ctx := NewContext()
	Refs(doc, ctx)

	var nums []int
	for _, n := range doc.Blocks[0].(*Block).Children {
		if fn, ok := n.(*Footnote); ok {
			nums = append(nums, fn.num.num)
		}
	}
	if len(nums) != 2 || nums[0] != 1 || nums[1] != 2 {
		t.Errorf("footnote numbers: got %v", nums)
	}
}

func TestRefs_TitleChildrenResolved(t *testing.T) {
	// footnotes inside a title are numbered like any other, so the
	// title shares the document's footnote counter
	doc := ParseDocument("#! A Study^[caveat]\n\nbody^[note]")
	ctx := NewContext()
	Refs(doc, ctx)

	title := doc.Blocks[0].(*Block).Children[0].(*Title)
	var titleNum int
	for _, n := range title.Children {
		if fn, ok := n.(*Footnote); ok {
			titleNum = fn.num.num
		}
	}
	if titleNum != 1 {
		t.Errorf("title footnote should take number 1, got %d", titleNum)
	}

	for _, n := range doc.Blocks[1].(*Block).Children {
		if fn, ok := n.(*Footnote); ok {
			if fn.num.num != 2 {
				t.Errorf("body footnote should continue the counter, got %d", fn.num.num)
			}
		}
	}
}

func TestIncNested_ResetWithinParent(t *testing.T) {
	ctx := NewContext()
	// two level-1 increments with level-2 children; the child counter
	// restarts under each parent
	if got := joinNums(ctx.IncNested("heading", 1)); got != "1" {
		t.Errorf("got %q", got)
	}
	if got := joinNums(ctx.IncNested("heading", 2)); got != "1.1" {
		t.Errorf("got %q", got)
	}
	if got := joinNums(ctx.IncNested("heading", 1)); got != "2" {
		t.Errorf("got %q", got)
	}
	if got := joinNums(ctx.IncNested("heading", 2)); got != "2.1" {
		t.Errorf("child counter should restart under a new parent, got %q", got)
	}
}
