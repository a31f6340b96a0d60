// Package grammar decides whether JavaScript source conforms to an ECMAScript
// profile.
//
// Source is parsed once with the tree-sitter JavaScript grammar, which accepts
// the newest language. The syntax tree is then walked in document order and
// the first node that the profile does not admit becomes the fault:
//
//   - ERROR and MISSING nodes: the text is not JavaScript at all;
//   - a "#!" line when the profile does not allow it;
//   - a construct introduced after the profile's edition (see features.go);
//   - module syntax in a script;
//   - early errors the grammar lets through, such as a stray break, a
//     redeclared let or an await outside an async function (see early.go);
//   - strict-mode violations in modules, class bodies and "use strict" code;
//   - non-ECMAScript extensions such as JSX and decorators.
//
// The evaluator never retries with relaxed settings and never reports more
// than the first fault.
package grammar
