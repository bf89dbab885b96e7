package markum

// Refs runs the resolution pass: a depth-first walk in document order
// that fills counters, registers cross references and popups, and records
// the title. The whole tree must be resolved before any render call,
// since reference labels depend on traversal order.
func Refs(node Node, ctx *Context) {
	switch n := node.(type) {
	case *Document:
		refsAll(n.Blocks, ctx)
	case *Block:
		refsAll(n.Children, ctx)
	case *Container:
		refsAll(n.Children, ctx)
	case *Title:
		refsAll(n.Children, ctx)
		ctx.Title = n
	case *Heading:
		if n.Numbered {
			n.num = &NestedNumber{Name: "heading", Level: n.Level}
			Refs(n.num, ctx)
		}
		refsAll(n.Children, ctx)
	case *NestedNumber:
		n.label = joinNums(ctx.IncNested(n.Name, n.Level))
	case *Number:
		if n.Title == "" {
			n.num = ctx.IncNum(n.Name)
			n.label = capitalize(n.Name) + " " + joinNums([]int{n.num})
		} else {
			n.label = n.Title
		}
		if n.ID != "" {
			ctx.AddRef(n.ID, n.label)
		}
	case *Equation:
		n.math = &Math{Tex: n.Tex, Display: true, Multiline: n.Multiline}
		if n.Numbered {
			n.num = &Number{Name: "equation", Title: n.Title, ID: n.ID, Bare: true}
			Refs(n.num, ctx)
		}
		if n.ID != "" {
			ctx.AddPop(n.ID, n.math)
		}
	case *Figure:
		if n.Caption != nil {
			Refs(n.Caption, ctx)
		}
		Refs(n.Child, ctx)
		if n.ID != "" {
			ctx.AddPop(n.ID, n)
		}
	case *Caption:
		if n.num != nil {
			Refs(n.num, ctx)
		}
		refsAll(n.Children, ctx)
	case *Footnote:
		n.num = &Number{Name: "footnote", Class: "popover", Bare: true}
		Refs(n.num, ctx)
		refsAll(n.Children, ctx)
	case *Sidenote:
		n.num = &Number{Name: "footnote", Bare: true}
		Refs(n.num, ctx)
		refsAll(n.Children, ctx)
	case *EnvBegin:
		resolveEnv(ctx, n.Name, n.Numbered, n.ID, &n.num)
		refsAll(n.Children, ctx)
	case *EnvSingle:
		resolveEnv(ctx, n.Name, n.Numbered, n.ID, &n.num)
		refsAll(n.Children, ctx)
	case *EnvEnd:
		refsAll(n.Children, ctx)
	case *GumLib:
		if ctx.Lib != "" {
			ctx.Lib += "\n"
		}
		ctx.Lib += n.Code
	case *Bold:
		refsAll(n.Children, ctx)
	case *Italic:
		refsAll(n.Children, ctx)
	case *Strikeout:
		refsAll(n.Children, ctx)
	case *Link:
		refsAll(n.Children, ctx)
	case *List:
		for _, item := range n.Items {
			refsAll(item, ctx)
		}
	case *TableWrapper:
		Refs(n.Table, ctx)
	case *Table:
		for _, cell := range n.Head {
			refsAll(cell, ctx)
		}
		for _, row := range n.Body {
			for _, cell := range row {
				refsAll(cell, ctx)
			}
		}
	}
}

func refsAll(nodes []Node, ctx *Context) {
	for _, n := range nodes {
		Refs(n, ctx)
	}
}

func resolveEnv(ctx *Context, name string, numbered bool, id string, num **Number) {
	if !numbered {
		return
	}
	*num = &Number{Name: name, ID: id}
	Refs(*num, ctx)
}
