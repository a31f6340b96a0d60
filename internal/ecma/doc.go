// Package ecma maps ECMAScript version identifiers to grammar profiles.
//
// The registry is a single fixed table: every alias of a language edition
// ("es6", "es2015") resolves to the same numeric grammar level. Adding an
// edition is one row in the table plus a test case; nothing else in the
// tree switches on version names.
//
// A Profile is the only input the grammar evaluator needs besides the source
// text. Profiles are produced by Resolve and never constructed elsewhere.
package ecma
