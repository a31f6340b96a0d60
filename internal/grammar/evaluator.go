package grammar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"escheck/internal/diag"
	"escheck/internal/ecma"
	"escheck/internal/source"
)

// ErrTimeout is returned when parsing or walking outlives the context deadline.
var ErrTimeout = errors.New("grammar evaluation timed out")

// maxExcerpt bounds the offending code copied into a fault.
const maxExcerpt = 80

// ctxCheckEvery is how many nodes the walker visits between context checks.
const ctxCheckEvery = 4096

// Fault is the first grammar violation of a file.
type Fault struct {
	Code    diag.Code
	Line    int // 1-based
	Column  int // 0-based UTF-16 units
	Excerpt string
	Message string // ends with "(line:column)"
}

// Result is either conformant (Fault == nil) or carries the first fault.
type Result struct {
	Fault *Fault
}

// Conformant reports whether the source parsed without fault.
func (r Result) Conformant() bool { return r.Fault == nil }

// Evaluator checks prepared source text against a profile.
// It is safe for concurrent use; every call gets its own parser.
type Evaluator struct {
	language *sitter.Language
}

// NewEvaluator returns an evaluator backed by the tree-sitter JavaScript grammar.
func NewEvaluator() *Evaluator {
	return &Evaluator{language: javascript.GetLanguage()}
}

// Evaluate parses src and returns the first fault under profile.
// Errors are reserved for failures unrelated to the text: an invalid profile,
// a parser failure, or ctx expiring (wrapped in ErrTimeout on deadline).
func (e *Evaluator) Evaluate(ctx context.Context, src []byte, profile ecma.Profile) (Result, error) {
	if !profile.Valid() {
		return Result{}, fmt.Errorf("grammar: profile was not resolved")
	}
	if err := contextError(ctx); err != nil {
		return Result{}, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(e.language)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("failed to parse source: %w", err)
	}

	w := &walker{
		ctx:     ctx,
		src:     src,
		file:    source.NewFile("", src, source.FileVirtual),
		profile: profile,
	}
	root := tree.RootNode()
	w.push(&frame{kind: frameFunction, strict: profile.Module() || useStrict(root, src)})
	node, v := w.first(root)
	if w.err != nil {
		return Result{}, w.err
	}
	if node == nil {
		return Result{}, nil
	}
	return Result{Fault: w.fault(node, v)}, nil
}

// contextError also treats a passed deadline as expired before its timer fires.
func contextError(ctx context.Context) error {
	err := ctx.Err()
	if d, ok := ctx.Deadline(); ok && err == nil && !time.Now().Before(d) {
		err = context.DeadlineExceeded
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return err
	}
}

// violation is what the walker found wrong with one node.
type violation struct {
	code diag.Code
	msg  string
}

type walker struct {
	ctx     context.Context
	src     []byte
	file    *source.File
	profile ecma.Profile
	frames  []*frame
	visited int
	err     error
}

// first walks the tree in document order and stops at the first violation.
func (w *walker) first(n *sitter.Node) (*sitter.Node, violation) {
	if n == nil {
		return nil, violation{}
	}
	w.visited++
	if w.visited%ctxCheckEvery == 0 {
		if err := contextError(w.ctx); err != nil {
			w.err = err
			return nil, violation{}
		}
	}
	if v, bad := w.check(n); bad {
		if n.Type() == "ERROR" {
			return w.firstInError(n, v)
		}
		return n, v
	}
	e, at, v := w.enter(n)
	if at != nil {
		return at, v
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found, v := w.first(n.Child(i)); found != nil || w.err != nil {
			return found, v
		}
	}
	w.leave(e)
	return nil, violation{}
}

// firstInError narrows an ERROR node down to the token the parser choked on.
// Complete statements the recovery swallowed are still checked first.
func (w *walker) firstInError(n *sitter.Node, v violation) (*sitter.Node, violation) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.HasError():
			if found, cv := w.first(c); found != nil || w.err != nil {
				return found, cv
			}
			return c, v
		case c.IsNamed() && c.Type() != "ERROR":
			if found, cv := w.first(c); found != nil || w.err != nil {
				return found, cv
			}
		default:
			return c, v
		}
	}
	return n, v
}

func (w *walker) check(n *sitter.Node) (violation, bool) {
	t := n.Type()
	switch {
	case n.IsMissing():
		return violation{diag.SynMissingToken, fmt.Sprintf("Unexpected token, expected %q", t)}, true
	case t == "ERROR":
		return violation{diag.SynUnexpectedToken, "Unexpected token"}, true
	case t == "comment":
		return violation{}, false
	case t == "hash_bang_line":
		if w.profile.AllowHashbang() {
			return violation{}, false
		}
		return violation{diag.SynHashbang, "Unexpected character '#'"}, true
	case strings.HasPrefix(t, "jsx_"):
		return violation{diag.SynNotECMAScript, "JSX syntax is not part of ECMAScript"}, true
	case t == "decorator":
		return violation{diag.SynNotECMAScript, "decorators are not part of ECMAScript"}, true
	case t == "return_statement" && topLevel(n):
		return violation{diag.SynUnexpectedToken, "'return' outside of function"}, true
	}

	if f, ok := requirement(n, w.src); ok && f.level > w.profile.Level() {
		return violation{
			code: diag.SynFeatureLevel,
			msg:  fmt.Sprintf("%s requires %s or later", f.name, ecma.Canonical(f.level)),
		}, true
	}

	if w.profile.Module() {
		return violation{}, false
	}
	switch t {
	case "import_statement", "export_statement":
		return violation{diag.SynModuleOnly, "'import' and 'export' may appear only with 'sourceType: module'"}, true
	case "meta_property":
		if strings.HasPrefix(n.Content(w.src), "import") {
			return violation{diag.SynModuleOnly, "Cannot use 'import.meta' outside a module"}, true
		}
	case "await_expression":
		if topLevel(n) {
			return violation{diag.SynModuleOnly, "Cannot use keyword 'await' outside an async function"}, true
		}
	}
	return violation{}, false
}

func (w *walker) fault(n *sitter.Node, v violation) *Fault {
	pos := w.file.Position(n.StartByte())
	line, err := safecast.Conv[int](pos.Line)
	if err != nil {
		panic(fmt.Errorf("line overflow: %w", err))
	}
	column, err := safecast.Conv[int](pos.Col)
	if err != nil {
		panic(fmt.Errorf("column overflow: %w", err))
	}
	return &Fault{
		Code:    v.code,
		Line:    line,
		Column:  column,
		Excerpt: w.file.Excerpt(n.StartByte(), n.EndByte(), maxExcerpt),
		Message: fmt.Sprintf("%s (%d:%d)", v.msg, line, column),
	}
}
