package roundtrip_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/decompile"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/directive"
	"github.com/kryonlabs/kryon/internal/eval"
	"github.com/kryonlabs/kryon/internal/expand"
	"github.com/kryonlabs/kryon/internal/kir"
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/lexer"
	"github.com/kryonlabs/kryon/internal/parser"
	"github.com/kryonlabs/kryon/internal/printer"
	"github.com/kryonlabs/kryon/internal/runtime"
	"github.com/kryonlabs/kryon/internal/srcloc"
	"github.com/kryonlabs/kryon/internal/token"
)

// propMap flattens an element's literal properties into a map so two trees
// can be compared "up to element/property ordering," per spec.md §8's law 1.
func propMap(e *ast.Element) map[string]any {
	m := map[string]any{}
	for _, p := range e.Properties {
		if p.Value == nil || p.Value.Kind != ast.PVLiteral {
			continue
		}
		switch p.Value.Lit.Kind {
		case ast.ValString:
			m[p.Name] = p.Value.Lit.Str
		case ast.ValNumber:
			m[p.Name] = p.Value.Lit.Number
		case ast.ValBool:
			m[p.Name] = p.Value.Lit.Bool
		}
	}
	return m
}

func shapeEqual(a, b *ast.Element) bool {
	if a.TypeName != b.TypeName {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	pa, pb := propMap(a), propMap(b)
	if len(pa) != len(pb) {
		return false
	}
	for k, v := range pa {
		if pb[k] != v {
			return false
		}
	}
	for i := range a.Children {
		if !shapeEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

var _ = Describe("round-trip laws", func() {
	expandNoIncludes := func(f *ast.File) *ast.File {
		out, bag := expand.Expand(f, expand.DefaultConfig(), nil, nil)
		Expect(bag.HasErrors()).To(BeFalse())
		return out
	}

	It("law 1: decompile(codegen(expand(parse(S)))) is structurally equal to expand(parse(S))", func() {
		src := `Column { Button { text: "A"; } Button { text: "B"; } }`
		f, bag := parser.Parse([]byte(src), "s.kry")
		Expect(bag.HasErrors()).To(BeFalse())

		expanded := expandNoIncludes(f)
		buf, _, genBag := codegen.Generate(expanded, codegen.Config{})
		Expect(genBag.HasErrors()).To(BeFalse())

		got, err := decompile.Decompile(buf)
		Expect(err).NotTo(HaveOccurred())

		Expect(got.Elements).To(HaveLen(len(expanded.Elements)))
		for i := range expanded.Elements {
			Expect(shapeEqual(expanded.Elements[i], got.Elements[i])).To(BeTrue())
		}
	})

	It("law 2: kir_read(kir_write(A)) equals A for a post-expansion AST", func() {
		src := `Text { text: "hello ${name}"; }`
		f, bag := parser.Parse([]byte(src), "s.kry")
		Expect(bag.HasErrors()).To(BeFalse())
		expanded := expandNoIncludes(f)

		data, err := kir.Write(expanded, kir.Options{Style: kir.StyleCompact})
		Expect(err).NotTo(HaveOccurred())

		got, err := kir.Read(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Elements).To(HaveLen(len(expanded.Elements)))
		Expect(got.Elements[0].TypeName).To(Equal(expanded.Elements[0].TypeName))
	})

	It("law 3: codegen(decompile(B)) equals B byte-for-byte in compact mode", func() {
		src := `App { title: "X"; }`
		f, bag := parser.Parse([]byte(src), "s.kry")
		Expect(bag.HasErrors()).To(BeFalse())
		expanded := expandNoIncludes(f)

		b1, _, genBag := codegen.Generate(expanded, codegen.Config{})
		Expect(genBag.HasErrors()).To(BeFalse())

		rebuilt, err := decompile.Decompile(b1)
		Expect(err).NotTo(HaveOccurred())

		b2, _, genBag2 := codegen.Generate(rebuilt, codegen.Config{})
		Expect(genBag2.HasErrors()).To(BeFalse())

		Expect(b2).To(Equal(b1))
	})
})

var _ = Describe("spec.md §8 concrete scenarios", func() {
	It("scenario 1: lexes a simple element into the expected token sequence", func() {
		lx := lexer.New([]byte(`Button { text: "Hi"; }`), lexer.Config{File: "s.kry"})
		var kinds []token.Kind
		for {
			tok := lx.Next()
			kinds = append(kinds, tok.Kind)
			if tok.Kind == token.EOF {
				break
			}
		}
		Expect(kinds).To(Equal([]token.Kind{
			token.ELEMENT_TYPE, token.LEFT_BRACE, token.IDENTIFIER, token.COLON,
			token.STRING, token.SEMICOLON, token.RIGHT_BRACE, token.EOF,
		}))
	})

	It("scenario 2: parses a templated string property into literal+variable segments", func() {
		f, bag := parser.Parse([]byte(`Text { text: "hello ${name}"; }`), "s.kry")
		Expect(bag.HasErrors()).To(BeFalse())
		Expect(f.Elements).To(HaveLen(1))

		prop := f.Elements[0].Properties[0]
		Expect(prop.Value.Kind).To(Equal(ast.PVTemplate))
		Expect(prop.Value.Template.Segments).To(HaveLen(2))
		Expect(prop.Value.Template.Segments[0].Kind).To(Equal(ast.SegLiteral))
		Expect(prop.Value.Template.Segments[0].Text).To(Equal("hello "))
		Expect(prop.Value.Template.Segments[1].Kind).To(Equal(ast.SegExpr))
		Expect(prop.Value.Template.Segments[1].Expr.Value.VarName).To(Equal("name"))
	})

	It("scenario 3: expands a component instantiation, substituting its parameter", func() {
		src := `
			@component Counter(count) {
				Text { text: $count; }
			}
			Counter { count: 7; }
		`
		f, bag := parser.Parse([]byte(src), "s.kry")
		Expect(bag.HasErrors()).To(BeFalse())

		out, expBag := expand.Expand(f, expand.DefaultConfig(), nil, nil)
		Expect(expBag.HasErrors()).To(BeFalse())
		Expect(out.Elements).To(HaveLen(1))

		root := out.Elements[0]
		Expect(root.TypeName).To(Equal("Text"))
		Expect(root.Properties[0].Value.Lit.Number).To(Equal(7.0))
	})

	It("scenario 4: codegen's element/property layout matches the documented byte shape", func() {
		f := &ast.File{
			Elements: []*ast.Element{{
				TypeName: "App",
				Properties: []*ast.Property{
					{Name: "title", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "X"}}},
				},
			}},
		}
		buf, stats, bag := codegen.Generate(f, codegen.Config{})
		Expect(bag.HasErrors()).To(BeFalse())
		Expect(stats.StringCount).To(Equal(2)) // the element's empty id and "X"
		Expect(buf).NotTo(BeEmpty())

		doc, decBag := runtime.Decode(buf)
		Expect(decBag.HasErrors()).To(BeFalse())
		Expect(doc.Elements).To(HaveLen(1))

		el := doc.Elements[0]
		Expect(el.Type).To(Equal(krbformat.ElemApp))
		Expect(el.Flags).To(Equal(uint8(0)))
		Expect(el.StyleID).To(Equal(uint8(0)))
		Expect(el.Children).To(BeEmpty())
		Expect(el.Properties).To(HaveLen(1))

		title := el.Properties[0]
		Expect(title.Code).To(Equal(krbformat.PropTitle))
		Expect(title.ValueType).To(Equal(krbformat.ValString))
		Expect(title.Raw).To(HaveLen(4))
		strIdx := binary.LittleEndian.Uint32(title.Raw)
		Expect(doc.Strings[strIdx]).To(Equal("X"))
	})

	It("scenario 5: round trips a Column of two Buttons through decompile and print", func() {
		src := `Column { Button { text: "A"; } Button { text: "B"; } }`
		f, bag := parser.Parse([]byte(src), "s0.kry")
		Expect(bag.HasErrors()).To(BeFalse())
		expanded := expandNoIncludes(f)

		buf, _, genBag := codegen.Generate(expanded, codegen.Config{})
		Expect(genBag.HasErrors()).To(BeFalse())

		rebuilt, err := decompile.Decompile(buf)
		Expect(err).NotTo(HaveOccurred())

		printed := printer.Print(rebuilt)
		reparsed, bag2 := parser.Parse([]byte(printed), "s1.kry")
		Expect(bag2.HasErrors()).To(BeFalse())

		Expect(reparsed.Elements).To(HaveLen(1))
		Expect(shapeEqual(expanded.Elements[0], reparsed.Elements[0])).To(BeTrue())
	})

	It("compiles @for/@if source end to end through parse, expand, and codegen", func() {
		src := `
			Column {
				@for item in $items {
					Text { text: $item; }
				}
				@if $showFooter {
					Text { text: "footer"; }
				} @else {
					Text { text: "no footer"; }
				}
			}
		`
		f, bag := parser.Parse([]byte(src), "s.kry")
		Expect(bag.HasErrors()).To(BeFalse())

		expanded, expBag := expand.Expand(f, expand.DefaultConfig(), nil, nil)
		Expect(expBag.HasErrors()).To(BeFalse())

		root := expanded.Elements[0]
		Expect(root.Children).To(HaveLen(2))
		Expect(root.Children[0].TypeName).To(Equal("@for"))
		Expect(root.Children[1].TypeName).To(Equal("@if"))

		buf, _, genBag := codegen.Generate(expanded, codegen.Config{})
		Expect(genBag.HasErrors()).To(BeFalse())
		Expect(buf).NotTo(BeEmpty())

		doc, decBag := runtime.Decode(buf)
		Expect(decBag.HasErrors()).To(BeFalse())

		column := doc.Elements[0]
		Expect(column.Children).To(HaveLen(2))
		Expect(column.Children[0].Type).To(Equal(krbformat.ElemForDirective))
		Expect(column.Children[1].Type).To(Equal(krbformat.ElemIfDirective))

		roots, matBag := runtime.Materialize(doc)
		Expect(matBag.HasErrors()).To(BeFalse())
		Expect(roots).To(HaveLen(1))
		Expect(roots[0].Children[0].Control).NotTo(BeNil())
		Expect(roots[0].Children[1].Control).NotTo(BeNil())
	})

	It("scenario 6: @for grows and shrinks live children as the bound array changes", func() {
		ctrl := &ast.ControlDirective{
			Kind:     ast.ControlFor,
			LoopVar:  "item",
			IterExpr: ast.NewVarRef("items", srcloc.Location{}),
			Body: []*ast.Element{
				{TypeName: "Text", Properties: []*ast.Property{
					{Name: "text", Value: &ast.PropValue{Kind: ast.PVExpression, Expr: ast.NewVarRef("item", srcloc.Location{})}},
				}},
			},
		}

		scope1 := eval.MapScope{"items": []any{"a", "b"}}
		bag := &diag.Bag{}
		result := directive.Build(ctrl, scope1, bag)
		Expect(result.Items).To(HaveLen(2))

		scope2 := eval.MapScope{"items": []any{"a", "b", "c"}}
		result2 := directive.Reconcile(result, ctrl, scope2, bag)
		Expect(result2.Items).To(HaveLen(3))
		for i, want := range []string{"a", "b", "c"} {
			Expect(result2.Items[i].Value).To(Equal(want))
		}
	})
})
