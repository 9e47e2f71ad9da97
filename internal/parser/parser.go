// Package parser implements Kryon's recursive-descent parser: tokens from
// internal/lexer in, an internal/ast.File out, with panic-mode error
// recovery synchronizing on element/body boundaries (spec.md §4.B). Errors
// never stop parsing outright; they accumulate in a diag.Bag and the parser
// resynchronizes at the next element or closing brace.
package parser

import (
	"fmt"
	"strconv"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/lexer"
	"github.com/kryonlabs/kryon/internal/srcloc"
	"github.com/kryonlabs/kryon/internal/token"
)

// Parser holds the token stream and accumulated diagnostics for one parse.
type Parser struct {
	toks []token.Token
	pos  int
	lx   *lexer.Lexer // kept for BeginScriptBody re-entry
	bag  *diag.Bag
	file string
}

// Parse tokenizes src and parses it into a File. Diagnostics (including
// recovered syntax errors) are returned alongside whatever File could be
// salvaged; callers should check bag.HasErrors() before trusting the result
// for codegen.
func Parse(src []byte, file string) (*ast.File, *diag.Bag) {
	lx := lexer.New(src, lexer.Config{File: file})
	p := &Parser{lx: lx, bag: &diag.Bag{}, file: file}
	p.fill()
	f := p.parseFile()
	return f, p.bag
}

// fill re-tokenizes from the current lexer position; used only at
// construction since script bodies require re-entering the lexer mid-stream
// (see parseFunctionDecl).
func (p *Parser) fill() {
	p.toks = nil
	for {
		t := p.lx.Next()
		p.toks = append(p.toks, t)
		if t.Kind == token.EOF {
			return
		}
	}
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) atEnd() bool       { return p.cur().Kind == token.EOF }
func (p *Parser) peekKind() token.Kind {
	return p.cur().Kind
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.peekKind() == k }

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind, context string) (token.Token, bool) {
	if t, ok := p.match(k); ok {
		return t, true
	}
	p.errf("expected %s %s, found %s", k, context, p.peekKind())
	return token.Token{}, false
}

func (p *Parser) errf(format string, args ...any) {
	p.bag.Add(diag.Diagnostic{
		Severity: diag.Error,
		Phase:    diag.PhaseParse,
		Message:  fmt.Sprintf(format, args...),
		Location: p.cur().Location,
	})
}

// synchronize implements panic-mode recovery: it discards tokens until it
// sees something that plausibly starts a new top-level/element-body
// construct, so one malformed element doesn't cascade into spurious errors
// for the rest of the file.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		switch p.peekKind() {
		case token.RIGHT_BRACE:
			p.advance()
			return
		case token.ELEMENT_TYPE, token.AT_STYLE, token.AT_COMPONENT, token.AT_CONST,
			token.AT_VARIABLES, token.AT_FUNCTION, token.AT_IMPORT, token.AT_INCLUDE,
			token.AT_METADATA:
			return
		default:
			p.advance()
		}
	}
}

// parseFile parses every top-level form until EOF.
func (p *Parser) parseFile() *ast.File {
	start := p.cur().Location
	f := &ast.File{Path: p.file, Metadata: map[string]string{}, Location: start}

	for !p.atEnd() {
		before := p.pos
		switch p.peekKind() {
		case token.ELEMENT_TYPE:
			if el := p.parseElement(); el != nil {
				f.Elements = append(f.Elements, el)
			}
		case token.AT_STYLE:
			if s := p.parseStyleDef(); s != nil {
				f.Styles = append(f.Styles, s)
			}
		case token.AT_COMPONENT:
			if c := p.parseComponentDef(); c != nil {
				f.Components = append(f.Components, c)
			}
		case token.AT_CONST:
			if c := p.parseConstDecl(); c != nil {
				f.Consts = append(f.Consts, c)
			}
		case token.AT_VARIABLES:
			if v := p.parseVariableBlock(); v != nil {
				f.Variables = append(f.Variables, v)
			}
		case token.AT_FUNCTION:
			if fn := p.parseFunctionDecl(); fn != nil {
				f.Functions = append(f.Functions, fn)
			}
		case token.AT_IMPORT:
			if im := p.parseImportDecl(); im != nil {
				f.Imports = append(f.Imports, im)
			}
		case token.AT_INCLUDE:
			if el := p.parseIncludeAsElement(); el != nil {
				f.Elements = append(f.Elements, el)
			}
		case token.AT_METADATA:
			p.parseMetadataBlock(f.Metadata)
		case token.AT_THEME:
			// Theme declarations reuse style-block parsing; themes are a
			// named collection of styles rather than a distinct node kind.
			if s := p.parseStyleDef(); s != nil {
				f.Styles = append(f.Styles, s)
			}
		default:
			p.errf("unexpected token %s at top level", p.peekKind())
			p.advance()
		}
		if p.pos == before {
			p.advance() // guarantee forward progress
		}
	}
	return f
}

func (p *Parser) parseMetadataBlock(into map[string]string) {
	p.advance() // @metadata
	if _, ok := p.expect(token.LEFT_BRACE, "to open @metadata block"); !ok {
		p.synchronize()
		return
	}
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		keyTok := p.advance()
		key := keyTok.Text
		if _, ok := p.expect(token.COLON, "after metadata key"); !ok {
			p.synchronize()
			return
		}
		val, ok := p.match(token.STRING)
		if !ok {
			p.errf("expected string value for metadata key %q", key)
		}
		into[key] = val.Text
		p.match(token.SEMICOLON)
	}
	p.expect(token.RIGHT_BRACE, "to close @metadata block")
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	start := p.advance().Location // @import
	pathTok, ok := p.expect(token.STRING, "import path")
	if !ok {
		p.synchronize()
		return nil
	}
	decl := &ast.ImportDecl{Path: pathTok.Text, Location: start}
	if p.check(token.IDENTIFIER) && p.cur().Text == "as" {
		p.advance()
		alias, ok := p.expect(token.IDENTIFIER, "import alias")
		if ok {
			decl.Alias = alias.Text
		}
	}
	p.match(token.SEMICOLON)
	return decl
}

func (p *Parser) parseIncludeAsElement() *ast.Element {
	// @include nodes are represented as a zero-child Element with a special
	// type name; internal/expand recognizes that name (its IncludeMarker
	// constant holds the same string) and replaces it. Keeping @include as an Element (rather than a separate top-level
	// list) means it can also appear nested inside an element body.
	start := p.advance().Location // @include
	pathTok, ok := p.expect(token.STRING, "include path")
	if !ok {
		p.synchronize()
		return nil
	}
	p.match(token.SEMICOLON)
	return &ast.Element{
		TypeName: IncludeMarker,
		ID:       pathTok.Text,
		Location: start,
	}
}

// IncludeMarker is the synthetic Element.TypeName used to carry an
// @include directive through the AST until internal/expand resolves it.
const IncludeMarker = "@include"

func (p *Parser) parseConstDecl() *ast.ConstDecl {
	start := p.advance().Location // @const
	nameTok, ok := p.expect(token.IDENTIFIER, "const name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.COLON, "after const name"); !ok {
		p.synchronize()
		return nil
	}
	val := p.parsePropValue()
	p.match(token.SEMICOLON)
	return &ast.ConstDecl{Name: nameTok.Text, Value: val, Location: start}
}

func (p *Parser) parseVariableBlock() *ast.VariableBlock {
	start := p.advance().Location // @variables
	if _, ok := p.expect(token.LEFT_BRACE, "to open @variables block"); !ok {
		p.synchronize()
		return nil
	}
	vb := &ast.VariableBlock{Entries: map[string]string{}, Location: start}
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		nameTok := p.advance()
		if _, ok := p.expect(token.COLON, "after variable name"); !ok {
			p.synchronize()
			return vb
		}
		val := p.advance()
		vb.Entries[nameTok.Text] = val.Text
		p.match(token.SEMICOLON)
	}
	p.expect(token.RIGHT_BRACE, "to close @variables block")
	return vb
}

func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	start := p.advance().Location // @function
	var language string
	if p.check(token.IDENTIFIER) {
		language = p.advance().Text
	}
	nameTok, ok := p.expect(token.IDENTIFIER, "function name")
	if !ok {
		p.synchronize()
		return nil
	}
	fn := &ast.FunctionDecl{Name: nameTok.Text, Language: language, Location: start}
	if _, ok := p.match(token.LEFT_PAREN); ok {
		for !p.check(token.RIGHT_PAREN) && !p.atEnd() {
			pt := p.advance()
			fn.Params = append(fn.Params, pt.Text)
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.RIGHT_PAREN, "to close function parameter list")
	}
	if _, ok := p.expect(token.LEFT_BRACE, "to open function body"); !ok {
		p.synchronize()
		return fn
	}
	p.lx.BeginScriptBody()
	body := p.lx.Next() // SCRIPT_CONTENT
	fn.Body = body.Text
	// splice the freshly lexed token back into the stream in place of
	// whatever stale lookahead the initial full-tokenize pass produced for
	// the function body; re-tokenize the remainder of the file from here so
	// positions stay correct.
	p.spliceScriptBody(body)
	return fn
}

// spliceScriptBody replaces the tail of the pre-tokenized stream (which was
// produced by scanning the body as ordinary tokens) with a single
// SCRIPT_CONTENT token followed by the re-tokenized remainder. This keeps
// parsing a simple array-index walk everywhere else while still letting the
// lexer switch modes for function bodies.
func (p *Parser) spliceScriptBody(scriptTok token.Token) {
	rest := p.lx // lexer now positioned right after the closing '}'
	var tail []token.Token
	for {
		t := rest.Next()
		tail = append(tail, t)
		if t.Kind == token.EOF {
			break
		}
	}
	newToks := make([]token.Token, 0, p.pos+1+len(tail))
	newToks = append(newToks, p.toks[:p.pos]...)
	newToks = append(newToks, scriptTok)
	newToks = append(newToks, tail...)
	p.toks = newToks
}

func (p *Parser) parseStyleDef() *ast.StyleDef {
	start := p.advance().Location // @style or @theme
	var name string
	switch p.peekKind() {
	case token.IDENTIFIER:
		name = p.advance().Text
	case token.STRING:
		name = p.advance().Text
	default:
		p.errf("expected style name, found %s", p.peekKind())
	}
	s := &ast.StyleDef{Name: name, Location: start}
	if _, ok := p.match(token.KW_EXTENDS); ok {
		for {
			baseTok, ok := p.expect(token.IDENTIFIER, "base style name")
			if !ok {
				break
			}
			s.Extends = append(s.Extends, baseTok.Text)
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
	}
	if _, ok := p.expect(token.LEFT_BRACE, "to open style body"); !ok {
		p.synchronize()
		return s
	}
	s.Properties = p.parsePropertyList()
	p.expect(token.RIGHT_BRACE, "to close style body")
	return s
}

func (p *Parser) parseComponentDef() *ast.ComponentDef {
	start := p.advance().Location // @component
	nameTok, ok := p.expect(token.IDENTIFIER, "component name")
	if !ok {
		p.synchronize()
		return nil
	}
	c := &ast.ComponentDef{Name: nameTok.Text, Location: start}
	if _, ok := p.match(token.KW_EXTENDS); ok {
		if baseTok, ok := p.expect(token.IDENTIFIER, "base component name"); ok {
			c.Extends = baseTok.Text
		}
	}
	if _, ok := p.match(token.LEFT_PAREN); ok {
		for !p.check(token.RIGHT_PAREN) && !p.atEnd() {
			paramTok, ok := p.expect(token.IDENTIFIER, "component parameter")
			if !ok {
				break
			}
			param := ast.ComponentParam{Name: paramTok.Text, Location: paramTok.Location}
			if _, ok := p.match(token.COLON); ok {
				param.Default = p.parsePropValue()
			}
			c.Params = append(c.Params, param)
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.RIGHT_PAREN, "to close component parameter list")
	}
	if _, ok := p.expect(token.LEFT_BRACE, "to open component body"); !ok {
		p.synchronize()
		return c
	}
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		switch p.peekKind() {
		case token.AT_STATE:
			p.advance()
			nameTok, ok := p.expect(token.IDENTIFIER, "state variable name")
			if !ok {
				p.synchronize()
				continue
			}
			sv := ast.StateVar{Name: nameTok.Text, Location: nameTok.Location}
			if _, ok := p.match(token.COLON); ok {
				sv.Init = p.parsePropValue()
			}
			c.State = append(c.State, sv)
			p.match(token.SEMICOLON)
		case token.AT_FUNCTION:
			if fn := p.parseFunctionDecl(); fn != nil {
				c.Functions = append(c.Functions, fn)
			}
		case token.ELEMENT_TYPE:
			if c.Template != nil {
				p.errf("component %q declares more than one ui template root", c.Name)
			}
			c.Template = p.parseElement()
			if c.Template != nil && len(c.PendingHooks) > 0 {
				c.Template.Lifecycle = append(c.Template.Lifecycle, c.PendingHooks...)
				c.PendingHooks = nil
			}
		case token.AT_ONMOUNT, token.AT_ONUNMOUNT, token.AT_ONLOAD:
			p.parseLifecycleHookTopLevel(c)
		default:
			p.errf("unexpected token %s in component body", p.peekKind())
			p.advance()
		}
	}
	p.expect(token.RIGHT_BRACE, "to close component body")
	return c
}

func (p *Parser) parseLifecycleHookTopLevel(c *ast.ComponentDef) {
	kindTok := p.advance()
	kind := kindToLifecycleName(kindTok.Kind)
	if _, ok := p.expect(token.LEFT_BRACE, "to open lifecycle hook body"); !ok {
		p.synchronize()
		return
	}
	p.lx.BeginScriptBody()
	body := p.lx.Next()
	p.spliceScriptBody(body)
	hook := &ast.LifecycleHook{Kind: kind, Body: body.Text, Location: kindTok.Location}
	if c.Template == nil {
		// hooks declared before the template attach to a pending list
		// consumed once the template is known; simplest correct behavior is
		// to attach to the component's eventual template root when parsed.
		c.PendingHooks = append(c.PendingHooks, hook)
	} else {
		c.Template.Lifecycle = append(c.Template.Lifecycle, hook)
	}
}

func kindToLifecycleName(k token.Kind) string {
	switch k {
	case token.AT_ONMOUNT:
		return "onmount"
	case token.AT_ONUNMOUNT:
		return "onunmount"
	case token.AT_ONLOAD:
		return "onload"
	default:
		return "unknown"
	}
}

// parseElement parses `Type { props/children }`. Control-flow forms
// (`@for`/`@const_for`/`@if`) inside a body are handled by parseElementBody.
func (p *Parser) parseElement() *ast.Element {
	typeTok, ok := p.expect(token.ELEMENT_TYPE, "element type")
	if !ok {
		p.synchronize()
		return nil
	}
	el := &ast.Element{TypeName: typeTok.Text, Location: typeTok.Location}
	if _, ok := p.expect(token.LEFT_BRACE, "to open "+typeTok.Text+" body"); !ok {
		p.synchronize()
		return el
	}
	p.parseElementBody(el)
	p.expect(token.RIGHT_BRACE, "to close "+typeTok.Text+" body")
	return el
}

func (p *Parser) parseElementBody(el *ast.Element) {
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		switch p.peekKind() {
		case token.ELEMENT_TYPE:
			child := p.parseElement()
			if child != nil {
				el.Children = append(el.Children, child)
			}
		case token.AT_FOR:
			if child := p.parseForBlock(false); child != nil {
				el.Children = append(el.Children, child)
			}
		case token.AT_CONST_FOR:
			if child := p.parseForBlock(true); child != nil {
				el.Children = append(el.Children, child)
			}
		case token.AT_IF:
			if child := p.parseIfBlock(); child != nil {
				el.Children = append(el.Children, child)
			}
		case token.AT_ONMOUNT, token.AT_ONUNMOUNT, token.AT_ONLOAD:
			p.parseLifecycleHookInline(el)
		case token.IDENTIFIER:
			prop := p.parseProperty()
			if prop != nil {
				el.Properties = append(el.Properties, prop)
				if prop.Name == "id" && prop.Value.Kind == ast.PVLiteral && prop.Value.Lit.Kind == ast.ValString {
					el.ID = prop.Value.Lit.Str
				}
				if prop.Name == "class" && prop.Value.Kind == ast.PVLiteral && prop.Value.Lit.Kind == ast.ValString {
					el.Classes = splitClasses(prop.Value.Lit.Str)
				}
			}
		default:
			p.errf("unexpected token %s in element body", p.peekKind())
			p.advance()
		}
	}
}

func (p *Parser) parseLifecycleHookInline(el *ast.Element) {
	kindTok := p.advance()
	kind := kindToLifecycleName(kindTok.Kind)
	if _, ok := p.expect(token.LEFT_BRACE, "to open lifecycle hook body"); !ok {
		p.synchronize()
		return
	}
	p.lx.BeginScriptBody()
	body := p.lx.Next()
	p.spliceScriptBody(body)
	el.Lifecycle = append(el.Lifecycle, &ast.LifecycleHook{Kind: kind, Body: body.Text, Location: kindTok.Location})
}

func splitClasses(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ' ' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func (p *Parser) parseForBlock(isConst bool) *ast.Element {
	start := p.advance().Location // @for / @const_for
	varTok, ok := p.expect(token.IDENTIFIER, "loop variable")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.KW_IN, "in @for"); !ok {
		p.synchronize()
		return nil
	}
	iter := p.parseExpr(ast.PrecTernary)
	if _, ok := p.expect(token.LEFT_BRACE, "to open @for body"); !ok {
		p.synchronize()
		return nil
	}
	var body []*ast.Element
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		if p.check(token.ELEMENT_TYPE) {
			if c := p.parseElement(); c != nil {
				body = append(body, c)
			}
		} else {
			p.errf("only element declarations are allowed in a @for body")
			p.advance()
		}
	}
	p.expect(token.RIGHT_BRACE, "to close @for body")
	kind := ast.ControlFor
	if isConst {
		kind = ast.ControlConstFor
	}
	return &ast.Element{
		TypeName: "@for",
		Location: start,
		Control: &ast.ControlDirective{
			Kind: kind, LoopVar: varTok.Text, IterExpr: iter, Body: body, Location: start,
		},
	}
}

func (p *Parser) parseIfBlock() *ast.Element {
	start := p.advance().Location // @if
	cond := p.parseExpr(ast.PrecTernary)
	if _, ok := p.expect(token.LEFT_BRACE, "to open @if body"); !ok {
		p.synchronize()
		return nil
	}
	var thenBody []*ast.Element
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		if p.check(token.ELEMENT_TYPE) {
			if c := p.parseElement(); c != nil {
				thenBody = append(thenBody, c)
			}
		} else {
			p.errf("only element declarations are allowed in an @if body")
			p.advance()
		}
	}
	p.expect(token.RIGHT_BRACE, "to close @if body")
	var elseBody []*ast.Element
	if _, ok := p.match(token.AT_ELSE); ok {
		if _, ok := p.expect(token.LEFT_BRACE, "to open @else body"); ok {
			for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
				if p.check(token.ELEMENT_TYPE) {
					if c := p.parseElement(); c != nil {
						elseBody = append(elseBody, c)
					}
				} else {
					p.advance()
				}
			}
			p.expect(token.RIGHT_BRACE, "to close @else body")
		}
	}
	return &ast.Element{
		TypeName: "@if",
		Location: start,
		Control: &ast.ControlDirective{
			Kind: ast.ControlIf, Cond: cond, Body: thenBody, ElseBody: elseBody, Location: start,
		},
	}
}

func (p *Parser) parsePropertyList() []*ast.Property {
	var props []*ast.Property
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		if prop := p.parseProperty(); prop != nil {
			props = append(props, prop)
		} else {
			p.advance()
		}
	}
	return props
}

func (p *Parser) parseProperty() *ast.Property {
	nameTok, ok := p.expect(token.IDENTIFIER, "property name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.COLON, "after property name "+nameTok.Text); !ok {
		return nil
	}
	val := p.parsePropValue()
	p.match(token.SEMICOLON)
	return &ast.Property{Name: nameTok.Text, Value: val, Location: nameTok.Location}
}

// parsePropValue parses the right-hand side of a property assignment:
// a literal, unit-suffixed number, array, template string, or bare
// expression.
func (p *Parser) parsePropValue() *ast.PropValue {
	loc := p.cur().Location
	switch p.peekKind() {
	case token.LEFT_BRACKET:
		return p.parseArrayValue()
	case token.TEMPLATE_START:
		return &ast.PropValue{Kind: ast.PVTemplate, Template: p.parseTemplate(), Location: loc}
	case token.STRING:
		t := p.advance()
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: t.Text}, Location: loc}
	case token.TRUE, token.FALSE:
		t := p.advance()
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValBool, Bool: t.Kind == token.TRUE}, Location: loc}
	case token.NULL:
		p.advance()
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNull}, Location: loc}
	case token.VARIABLE:
		// A bare `$name` property value is an expression (variable
		// reference), not a literal — consulted at runtime by
		// internal/eval.
		return &ast.PropValue{Kind: ast.PVExpression, Expr: p.parseExpr(ast.PrecTernary), Location: loc}
	case token.INTEGER, token.FLOAT:
		return p.parseNumberOrUnit()
	default:
		// Fall back to general expression parsing (covers unary minus,
		// parenthesized expressions, ternaries used directly as a value).
		return &ast.PropValue{Kind: ast.PVExpression, Expr: p.parseExpr(ast.PrecTernary), Location: loc}
	}
}

// parseNumberOrUnit consumes an INTEGER/FLOAT token. internal/lexer folds a
// directly-abutting unit suffix (px, %, em, rem, vw, vh, pt) into the same
// token's text, so the numeric prefix and the suffix are split back apart
// here rather than by peeking a second token.
func (p *Parser) parseNumberOrUnit() *ast.PropValue {
	loc := p.cur().Location
	t := p.advance()
	numText, suffix := splitUnitSuffix(t.Text)
	n, _ := strconv.ParseFloat(numText, 64)
	pv := &ast.PropValue{Kind: ast.PVLiteral, Location: loc, Lit: ast.Value{Kind: ast.ValNumber, Number: n}}
	if suffix != "" {
		if u, ok := unitKind(suffix); ok {
			pv.LitUnit = u
		}
	}
	return pv
}

// splitUnitSuffix separates a trailing unit suffix (letters or '%') from the
// leading numeric digits of a lexed number token's text.
func splitUnitSuffix(text string) (numText, suffix string) {
	i := len(text)
	for i > 0 {
		c := text[i-1]
		if c == '%' || (c >= 'a' && c <= 'z') {
			i--
			continue
		}
		break
	}
	return text[:i], text[i:]
}

func unitKind(suffix string) (ast.Unit, bool) {
	switch suffix {
	case "px":
		return ast.UnitPx, true
	case "%":
		return ast.UnitPercent, true
	case "em":
		return ast.UnitEm, true
	case "rem":
		return ast.UnitRem, true
	case "vw":
		return ast.UnitVw, true
	case "vh":
		return ast.UnitVh, true
	case "pt":
		return ast.UnitPt, true
	default:
		return ast.UnitNone, false
	}
}

func (p *Parser) parseArrayValue() *ast.PropValue {
	loc := p.advance().Location // '['
	arr := &ast.PropValue{Kind: ast.PVArray, Location: loc}
	for !p.check(token.RIGHT_BRACKET) && !p.atEnd() {
		arr.Array = append(arr.Array, p.parsePropValue())
		if _, ok := p.match(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RIGHT_BRACKET, "to close array")
	return arr
}

func (p *Parser) parseTemplate() *ast.Template {
	t := p.advance() // TEMPLATE_START, Text holds raw `${...}` markers mixed with literal text
	return splitTemplate(t.Text, t.Location)
}

// splitTemplate turns the raw template text (literal runs interleaved with
// `${expr}` markers, as produced by the lexer's rawTemplateTail) into a
// Template AST node by re-lexing each `${...}` body as an expression.
func splitTemplate(raw string, loc srcloc.Location) *ast.Template {
	tpl := &ast.Template{Location: loc}
	i := 0
	var lit []rune
	runes := []rune(raw)
	flushLit := func() {
		if len(lit) > 0 {
			tpl.Segments = append(tpl.Segments, ast.TemplateSegment{Kind: ast.SegLiteral, Text: string(lit)})
			lit = nil
		}
	}
	for i < len(runes) {
		if runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '{' {
			flushLit()
			depth := 1
			j := i + 2
			start := j
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := string(runes[start:j])
			expr := parseStandaloneExpr(exprSrc)
			tpl.Segments = append(tpl.Segments, ast.TemplateSegment{Kind: ast.SegExpr, Expr: expr})
			i = j + 1
			continue
		}
		lit = append(lit, runes[i])
		i++
	}
	flushLit()
	return tpl
}

// parseStandaloneExpr parses src as a bare expression (used for `${...}`
// interpolation bodies, which are expressions, not whole Kryon files).
func parseStandaloneExpr(src string) *ast.Expr {
	lx := lexer.New([]byte(src), lexer.Config{})
	p := &Parser{lx: lx, bag: &diag.Bag{}}
	p.fill()
	return p.parseExpr(ast.PrecTernary)
}

// Diagnostics exposes the parser's accumulated diagnostics. The nested
// parser parseStandaloneExpr builds for a `${...}` body is discarded along
// with its diagnostics.
func (p *Parser) Diagnostics() *diag.Bag { return p.bag }
