package ast

// CloneElement deep-copies an Element subtree. internal/expand relies on
// this to produce a new AST without mutating its input (spec.md §4.C), and
// internal/directive relies on it to stamp out one instance of a @for/@if
// template body per iteration.
func CloneElement(e *Element) *Element {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Properties = cloneProperties(e.Properties)
	clone.Children = make([]*Element, len(e.Children))
	for i, c := range e.Children {
		clone.Children[i] = CloneElement(c)
	}
	clone.Classes = append([]string(nil), e.Classes...)
	if e.Control != nil {
		ctl := *e.Control
		ctl.Body = cloneElements(e.Control.Body)
		ctl.ElseBody = cloneElements(e.Control.ElseBody)
		ctl.IterExpr = CloneExpr(e.Control.IterExpr)
		ctl.Cond = CloneExpr(e.Control.Cond)
		clone.Control = &ctl
	}
	clone.Lifecycle = append([]*LifecycleHook(nil), e.Lifecycle...)
	return &clone
}

func cloneElements(in []*Element) []*Element {
	if in == nil {
		return nil
	}
	out := make([]*Element, len(in))
	for i, e := range in {
		out[i] = CloneElement(e)
	}
	return out
}

func cloneProperties(in []*Property) []*Property {
	if in == nil {
		return nil
	}
	out := make([]*Property, len(in))
	for i, p := range in {
		pc := *p
		pc.Value = ClonePropValue(p.Value)
		out[i] = &pc
	}
	return out
}

// ClonePropValue deep-copies a PropValue.
func ClonePropValue(v *PropValue) *PropValue {
	if v == nil {
		return nil
	}
	clone := *v
	clone.Expr = CloneExpr(v.Expr)
	if v.Template != nil {
		tc := *v.Template
		tc.Segments = append([]TemplateSegment(nil), v.Template.Segments...)
		for i := range tc.Segments {
			tc.Segments[i].Expr = CloneExpr(v.Template.Segments[i].Expr)
		}
		clone.Template = &tc
	}
	if v.Array != nil {
		clone.Array = make([]*PropValue, len(v.Array))
		for i, a := range v.Array {
			clone.Array[i] = ClonePropValue(a)
		}
	}
	return &clone
}

// CloneStyleDef deep-copies a StyleDef.
func CloneStyleDef(s *StyleDef) *StyleDef {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Extends = append([]string(nil), s.Extends...)
	clone.Properties = cloneProperties(s.Properties)
	return &clone
}

// CloneComponentDef deep-copies a ComponentDef, including its ui_template.
func CloneComponentDef(c *ComponentDef) *ComponentDef {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Params = append([]ComponentParam(nil), c.Params...)
	for i, p := range clone.Params {
		clone.Params[i].Default = ClonePropValue(p.Default)
	}
	clone.State = append([]StateVar(nil), c.State...)
	for i, s := range clone.State {
		clone.State[i].Init = ClonePropValue(s.Init)
	}
	clone.Functions = append([]*FunctionDecl(nil), c.Functions...)
	clone.Template = CloneElement(c.Template)
	clone.PendingHooks = append([]*LifecycleHook(nil), c.PendingHooks...)
	return &clone
}

// CloneExpr deep-copies an expression tree.
func CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Left = CloneExpr(e.Left)
	clone.Right = CloneExpr(e.Right)
	clone.Operand = CloneExpr(e.Operand)
	clone.Cond = CloneExpr(e.Cond)
	clone.Then = CloneExpr(e.Then)
	clone.Else = CloneExpr(e.Else)
	if e.Elements != nil {
		clone.Elements = make([]*Expr, len(e.Elements))
		for i, el := range e.Elements {
			clone.Elements[i] = CloneExpr(el)
		}
	}
	return &clone
}
