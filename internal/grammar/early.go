package grammar

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"escheck/internal/diag"
)

// Early errors are the static rules the grammar itself does not encode:
// jump targets, redeclarations, await/yield/super placement and strict mode.
// The walker keeps a frame stack while it descends to decide them.

type frameKind uint8

const (
	frameFunction frameKind = iota // program, function bodies, static blocks, field initializers
	frameBlock
	frameClass
)

type jumpKind uint8

const (
	jumpLoop jumpKind = iota
	jumpSwitch
	jumpLabel
)

// jump is an enclosing statement that break or continue may target.
type jump struct {
	kind  jumpKind
	label string
	loop  bool // label whose body is an iteration statement
}

type frame struct {
	kind   frameKind
	strict bool

	// function frames
	async, generator, arrow bool
	superProp, superCall    bool
	jumps                   []jump

	// names bound in this scope
	lexical map[string]bool
	funcs   map[string]bool // function declarations inside blocks
	vars    map[string]bool
	params  map[string]bool
}

// entered records what enter pushed, so leave can undo it.
type entered struct {
	frame bool
	jump  bool
}

var loopTypes = map[string]bool{
	"for_statement":    true,
	"for_in_statement": true,
	"while_statement":  true,
	"do_statement":     true,
}

func mark(m *map[string]bool, name string) {
	if *m == nil {
		*m = make(map[string]bool)
	}
	(*m)[name] = true
}

func redeclared(name string) violation {
	return violation{diag.SynEarlyError, fmt.Sprintf("Identifier '%s' has already been declared", name)}
}

func (w *walker) push(f *frame) { w.frames = append(w.frames, f) }

func (w *walker) top() *frame { return w.frames[len(w.frames)-1] }

func (w *walker) strict() bool { return w.top().strict }

// scope returns the innermost frame that binds names.
func (w *walker) scope() *frame {
	for i := len(w.frames) - 1; i > 0; i-- {
		if w.frames[i].kind != frameClass {
			return w.frames[i]
		}
	}
	return w.frames[0]
}

// enclosing returns the innermost function frame; the program frame is the outermost one.
func (w *walker) enclosing() *frame {
	for i := len(w.frames) - 1; i > 0; i-- {
		if w.frames[i].kind == frameFunction {
			return w.frames[i]
		}
	}
	return w.frames[0]
}

func (w *walker) pushJump(j jump) {
	fn := w.enclosing()
	fn.jumps = append(fn.jumps, j)
}

// enter updates the context for n and reports an early error found at n or
// at one of the names it binds.
func (w *walker) enter(n *sitter.Node) (entered, *sitter.Node, violation) {
	var e entered
	if !n.IsNamed() {
		return e, nil, violation{}
	}
	switch t := n.Type(); t {
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			if v, bad := w.declareFunction(name); bad {
				return e, name, v
			}
		}
		w.pushFunction(n)
		e.frame = true
	case "function_expression", "function", "generator_function", "arrow_function",
		"method_definition", "class_static_block", "field_definition":
		w.pushFunction(n)
		e.frame = true
	case "class_declaration", "class":
		if name := n.ChildByFieldName("name"); name != nil && t == "class_declaration" {
			if v, bad := w.declareLexical(name); bad {
				return e, name, v
			}
		}
		w.push(&frame{kind: frameClass, strict: true})
		e.frame = true
	case "statement_block":
		p := parentType(n)
		if !functionTypes[p] && p != "catch_clause" && p != "class_static_block" {
			w.push(&frame{kind: frameBlock, strict: w.strict()})
			e.frame = true
		}
	case "switch_body":
		w.push(&frame{kind: frameBlock, strict: w.strict()})
		e.frame = true
	case "catch_clause":
		f := &frame{kind: frameBlock, strict: w.strict()}
		for _, id := range bindingNames(n.ChildByFieldName("parameter")) {
			mark(&f.params, id.Content(w.src))
		}
		w.push(f)
		e.frame = true
	case "for_statement", "for_in_statement":
		w.push(&frame{kind: frameBlock, strict: w.strict()})
		w.pushJump(jump{kind: jumpLoop})
		e.frame, e.jump = true, true
		if t == "for_in_statement" {
			if at, v, bad := w.declareForHead(n); bad {
				return e, at, v
			}
		}
	case "while_statement", "do_statement":
		w.pushJump(jump{kind: jumpLoop})
		e.jump = true
	case "switch_statement":
		w.pushJump(jump{kind: jumpSwitch})
		e.jump = true
	case "labeled_statement":
		label := labelNode(n)
		name := ""
		if label != nil {
			name = label.Content(w.src)
		}
		for _, j := range w.enclosing().jumps {
			if j.kind == jumpLabel && j.label == name {
				return e, label, violation{diag.SynEarlyError, fmt.Sprintf("Label '%s' has already been declared", name)}
			}
		}
		w.pushJump(jump{kind: jumpLabel, label: name, loop: labelsLoop(n)})
		e.jump = true
	case "variable_declarator":
		if at, v, bad := w.declareVariable(n); bad {
			return e, at, v
		}
	}
	if v, bad := w.early(n); bad {
		return e, n, v
	}
	return e, nil, violation{}
}

func (w *walker) leave(e entered) {
	if e.jump {
		fn := w.enclosing()
		fn.jumps = fn.jumps[:len(fn.jumps)-1]
	}
	if e.frame {
		w.frames = w.frames[:len(w.frames)-1]
	}
}

func (w *walker) pushFunction(n *sitter.Node) {
	outer := w.enclosing()
	f := &frame{kind: frameFunction, strict: w.strict()}
	f.async, f.generator = functionFlavour(n)
	switch n.Type() {
	case "arrow_function":
		f.arrow = true
		f.superProp, f.superCall = outer.superProp, outer.superCall
	case "method_definition":
		f.superProp = true
		f.superCall = derivedConstructor(n, w.src)
	case "class_static_block", "field_definition":
		f.superProp = true
	}
	if body := n.ChildByFieldName("body"); body != nil && body.Type() == "statement_block" && useStrict(body, w.src) {
		f.strict = true
	}
	for _, id := range parameterNames(n) {
		mark(&f.params, id.Content(w.src))
	}
	w.push(f)
}

// early checks the rules that depend only on n and the current context.
func (w *walker) early(n *sitter.Node) (violation, bool) {
	switch n.Type() {
	case "break_statement":
		return w.checkJump(n, "break")
	case "continue_statement":
		return w.checkJump(n, "continue")
	case "await_expression":
		fn := w.enclosing()
		if fn != w.frames[0] && !fn.async {
			return violation{diag.SynEarlyError, "Cannot use keyword 'await' outside an async function"}, true
		}
	case "yield_expression":
		if fn := w.enclosing(); !fn.generator || fn.arrow {
			return violation{diag.SynEarlyError, "Cannot use keyword 'yield' outside a generator function"}, true
		}
	case "super":
		fn := w.enclosing()
		allowed := fn.superProp
		if p := n.Parent(); p != nil && p.Type() == "call_expression" {
			allowed = fn.superCall
		}
		if !allowed {
			return violation{diag.SynEarlyError, "'super' keyword unexpected here"}, true
		}
	case "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil && op.Type() == "**" {
			if left := n.ChildByFieldName("left"); left != nil && isUnary(left) {
				return unaryBeforeExponent(), true
			}
		}
	case "unary_expression":
		raw := n.ChildByFieldName("argument")
		if raw != nil && raw.Type() == "binary_expression" {
			if op := raw.ChildByFieldName("operator"); op != nil && op.Type() == "**" {
				return unaryBeforeExponent(), true
			}
		}
		arg := unparen(raw)
		if op := n.ChildByFieldName("operator"); w.strict() && op != nil && op.Type() == "delete" &&
			arg != nil && arg.Type() == "identifier" {
			return violation{diag.SynStrictMode, "Deleting local variable in strict mode"}, true
		}
	case "with_statement":
		if w.strict() {
			return violation{diag.SynStrictMode, "'with' in strict mode"}, true
		}
	case "number":
		if w.strict() && legacyOctal(n.Content(w.src)) {
			return violation{diag.SynStrictMode, "Octal literals are not allowed in strict mode"}, true
		}
	case "string":
		if w.strict() && octalEscape(n.Content(w.src)) {
			return violation{diag.SynStrictMode, "Octal escape sequences are not allowed in strict mode"}, true
		}
	}
	return violation{}, false
}

func unaryBeforeExponent() violation {
	return violation{diag.SynEarlyError, "Unary operator used immediately before exponentiation expression"}
}

func isUnary(n *sitter.Node) bool {
	t := n.Type()
	return t == "unary_expression" || t == "await_expression"
}

func (w *walker) checkJump(n *sitter.Node, keyword string) (violation, bool) {
	label := ""
	if l := labelNode(n); l != nil {
		label = l.Content(w.src)
	}
	jumps := w.enclosing().jumps
	for i := len(jumps) - 1; i >= 0; i-- {
		j := jumps[i]
		switch {
		case label != "":
			if j.kind != jumpLabel || j.label != label {
				continue
			}
			if keyword == "continue" && !j.loop {
				return violation{diag.SynEarlyError,
					fmt.Sprintf("Illegal continue statement: '%s' does not denote an iteration statement", label)}, true
			}
			return violation{}, false
		case j.kind == jumpLoop, j.kind == jumpSwitch && keyword == "break":
			return violation{}, false
		}
	}
	if label != "" {
		return violation{diag.SynEarlyError, fmt.Sprintf("Undefined label '%s'", label)}, true
	}
	return violation{diag.SynEarlyError, fmt.Sprintf("Illegal %s statement", keyword)}, true
}

func (w *walker) declareVariable(n *sitter.Node) (*sitter.Node, violation, bool) {
	decl := n.Parent()
	if decl == nil {
		return nil, violation{}, false
	}
	names := bindingNames(n.ChildByFieldName("name"))
	switch decl.Type() {
	case "lexical_declaration":
		if hasChild(decl, "const") && n.ChildByFieldName("value") == nil && parentType(decl) != "for_in_statement" {
			return n, violation{diag.SynEarlyError, "Missing initializer in const declaration"}, true
		}
		for _, id := range names {
			if v, bad := w.declareLexical(id); bad {
				return id, v, true
			}
		}
	case "variable_declaration":
		for _, id := range names {
			if v, bad := w.declareVar(id); bad {
				return id, v, true
			}
		}
	}
	return nil, violation{}, false
}

// declareForHead binds the names of a for-in/of head in the loop's own frame.
func (w *walker) declareForHead(n *sitter.Node) (*sitter.Node, violation, bool) {
	lexical := hasChild(n, "let") || hasChild(n, "const")
	if !lexical && !hasChild(n, "var") {
		return nil, violation{}, false
	}
	for _, id := range bindingNames(n.ChildByFieldName("left")) {
		declare := w.declareVar
		if lexical {
			declare = w.declareLexical
		}
		if v, bad := declare(id); bad {
			return id, v, true
		}
	}
	return nil, violation{}, false
}

func (w *walker) declareLexical(id *sitter.Node) (violation, bool) {
	name := id.Content(w.src)
	f := w.scope()
	if f.lexical[name] || f.funcs[name] || f.vars[name] || f.params[name] {
		return redeclared(name), true
	}
	mark(&f.lexical, name)
	return violation{}, false
}

// declareVar hoists a var binding through every block up to its function.
func (w *walker) declareVar(id *sitter.Node) (violation, bool) {
	name := id.Content(w.src)
	for i := len(w.frames) - 1; i >= 0; i-- {
		f := w.frames[i]
		if f.kind == frameClass {
			continue
		}
		if f.lexical[name] || (f.kind == frameBlock && f.funcs[name]) {
			return redeclared(name), true
		}
		mark(&f.vars, name)
		if f.kind == frameFunction {
			break
		}
	}
	return violation{}, false
}

func (w *walker) declareFunction(id *sitter.Node) (violation, bool) {
	name := id.Content(w.src)
	f := w.scope()
	if f.kind == frameFunction {
		if f.lexical[name] {
			return redeclared(name), true
		}
		mark(&f.vars, name)
		return violation{}, false
	}
	// в нестрогом коде повторные function в блоке допустимы
	if f.lexical[name] || f.vars[name] || f.params[name] || (f.funcs[name] && f.strict) {
		return redeclared(name), true
	}
	mark(&f.funcs, name)
	return violation{}, false
}

// bindingNames lists the identifiers a binding target introduces.
func bindingNames(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	var collect func(*sitter.Node)
	collect = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			out = append(out, n)
		case "assignment_pattern", "object_assignment_pattern":
			collect(n.ChildByFieldName("left"))
		case "pair_pattern":
			collect(n.ChildByFieldName("value"))
		case "object_pattern", "array_pattern", "rest_pattern":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				collect(n.NamedChild(i))
			}
		}
	}
	collect(n)
	return out
}

func parameterNames(n *sitter.Node) []*sitter.Node {
	if p := n.ChildByFieldName("parameter"); p != nil {
		return bindingNames(p)
	}
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(params.NamedChildCount()); i++ {
		out = append(out, bindingNames(params.NamedChild(i))...)
	}
	return out
}

// derivedConstructor reports whether n is the constructor of a class with an extends clause.
func derivedConstructor(n *sitter.Node, src []byte) bool {
	name := n.ChildByFieldName("name")
	if name == nil || name.Content(src) != "constructor" || hasChild(n, "static") {
		return false
	}
	body := n.Parent()
	if body == nil || body.Type() != "class_body" {
		return false
	}
	class := body.Parent()
	return class != nil && hasChild(class, "class_heritage")
}

// useStrict reports whether block opens with a "use strict" directive.
func useStrict(block *sitter.Node, src []byte) bool {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		c := block.NamedChild(i)
		switch c.Type() {
		case "comment", "hash_bang_line":
			continue
		case "expression_statement":
		default:
			return false
		}
		s := c.NamedChild(0)
		if s == nil || s.Type() != "string" {
			return false
		}
		switch s.Content(src) {
		case `"use strict"`, `'use strict'`:
			return true
		}
	}
	return false
}

func labelNode(n *sitter.Node) *sitter.Node {
	if l := n.ChildByFieldName("label"); l != nil {
		return l
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "statement_identifier" {
			return c
		}
	}
	return nil
}

// labelsLoop reports whether a labelled statement, after any further labels, is a loop.
func labelsLoop(n *sitter.Node) bool {
	for n != nil && n.Type() == "labeled_statement" {
		body := n.ChildByFieldName("body")
		if body == nil && n.NamedChildCount() > 0 {
			body = n.NamedChild(int(n.NamedChildCount()) - 1)
		}
		n = body
	}
	return n != nil && loopTypes[n.Type()]
}

func unparen(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

// legacyOctal matches 010 and 08 style literals.
func legacyOctal(text string) bool {
	return len(text) > 1 && text[0] == '0' && text[1] >= '0' && text[1] <= '9'
}

// octalEscape reports \1..\9 escapes and \0 followed by a digit in a raw string literal.
func octalEscape(raw string) bool {
	for i := 0; i+1 < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}
		c := raw[i+1]
		switch {
		case c >= '1' && c <= '9':
			return true
		case c == '0' && i+2 < len(raw) && raw[i+2] >= '0' && raw[i+2] <= '9':
			return true
		}
		i++
	}
	return false
}
