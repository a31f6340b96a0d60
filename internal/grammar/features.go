package grammar

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// feature is a construct and the grammar level that introduced it.
type feature struct {
	level int
	name  string
}

// nodeFeatures maps node types whose mere presence needs a given level.
// Adding a construct is one row here plus a case in features_test.go.
var nodeFeatures = map[string]feature{
	"lexical_declaration":            {6, "let/const declaration"},
	"arrow_function":                 {6, "arrow function"},
	"class_declaration":              {6, "class declaration"},
	"class":                          {6, "class expression"},
	"template_string":                {6, "template literal"},
	"generator_function_declaration": {6, "generator function"},
	"generator_function":             {6, "generator function"},
	"yield_expression":               {6, "yield expression"},
	"object_pattern":                 {6, "destructuring pattern"},
	"array_pattern":                  {6, "destructuring pattern"},
	"assignment_pattern":             {6, "default parameter value"},
	"object_assignment_pattern":      {6, "destructuring default value"},
	"shorthand_property_identifier":  {6, "shorthand property"},
	"computed_property_name":         {6, "computed property name"},
	"super":                          {6, "super"},
	"rest_pattern":                   {6, "rest element"},
	"spread_element":                 {6, "spread element"},
	"import_statement":               {6, "import declaration"},
	"export_statement":               {6, "export declaration"},
	"optional_chain":                 {11, "optional chaining"},
	"namespace_export":               {11, "export * as namespace"},
	"field_definition":               {13, "class field"},
	"class_static_block":             {13, "class static block"},
	"private_property_identifier":    {13, "private class member"},
	"import_attribute":               {16, "import attributes"},
}

// functionTypes are the nodes that open a function body.
var functionTypes = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"arrow_function":                 true,
	"method_definition":              true,
	"generator_function_declaration": true,
	"generator_function":             true,
}

// escapeCarriers are the tokens whose source text may spell a \u{...} escape.
var escapeCarriers = map[string]bool{
	"string":                                true,
	"template_string":                       true,
	"identifier":                            true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"private_property_identifier":           true,
	"statement_identifier":                  true,
}

// operatorFeatures covers binary and compound assignment operators.
var operatorFeatures = map[string]feature{
	"**":  {7, "exponentiation operator"},
	"**=": {7, "exponentiation assignment"},
	"??":  {11, "nullish coalescing operator"},
	"&&=": {12, "logical assignment"},
	"||=": {12, "logical assignment"},
	"??=": {12, "logical assignment"},
}

// regexFlagFeatures lists flags added after the original /gim set.
var regexFlagFeatures = map[rune]feature{
	'u': {6, "regular expression flag u"},
	'y': {6, "regular expression flag y"},
	's': {9, "regular expression flag s"},
	'd': {13, "regular expression flag d"},
	'v': {15, "regular expression flag v"},
}

// es3Reserved may not be used as property names before ES5.
var es3Reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "continue": true, "default": true,
	"delete": true, "do": true, "else": true, "finally": true, "for": true,
	"function": true, "if": true, "in": true, "instanceof": true, "new": true,
	"return": true, "switch": true, "this": true, "throw": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"class": true, "const": true, "enum": true, "export": true, "extends": true,
	"import": true, "super": true, "null": true, "true": true, "false": true,
	"abstract": true, "boolean": true, "byte": true, "char": true, "double": true,
	"final": true, "float": true, "goto": true, "implements": true, "int": true,
	"interface": true, "long": true, "native": true, "package": true, "private": true,
	"protected": true, "public": true, "short": true, "static": true,
	"synchronized": true, "throws": true, "transient": true, "volatile": true,
}

// requirement returns the newest feature a single node needs, ignoring its
// children. ok is false when the node is valid in every edition.
func requirement(n *sitter.Node, src []byte) (feature, bool) {
	t := n.Type()
	best, ok := nodeFeatures[t]

	raise := func(f feature) {
		if !ok || f.level > best.level {
			best, ok = f, true
		}
	}

	if functionTypes[t] {
		async, generator := functionFlavour(n)
		if async {
			raise(feature{8, "async function"})
		}
		if async && generator {
			raise(feature{9, "async generator"})
		}
		if generator {
			raise(feature{6, "generator function"})
		}
	}

	if escapeCarriers[t] && strings.Contains(n.Content(src), `\u{`) {
		raise(feature{6, "unicode code point escape"})
	}

	switch t {
	case "method_definition":
		raise(methodFeature(n))
	case "rest_pattern":
		if parentType(n) == "object_pattern" {
			raise(feature{9, "object rest properties"})
		}
	case "spread_element":
		if parentType(n) == "object" {
			raise(feature{9, "object spread properties"})
		}
	case "binary_expression", "augmented_assignment_expression":
		if op := n.ChildByFieldName("operator"); op != nil {
			if f, found := operatorFeatures[op.Type()]; found {
				raise(f)
			}
		}
	case "await_expression":
		raise(feature{8, "await expression"})
		if topLevel(n) {
			raise(feature{13, "top-level await"})
		}
	case "for_in_statement":
		if hasChild(n, "let") || hasChild(n, "const") {
			raise(feature{6, "let/const declaration"})
		}
		if hasChild(n, "of") {
			raise(feature{6, "for-of loop"})
		}
		if hasChild(n, "await") {
			raise(feature{9, "for-await-of loop"})
		}
	case "catch_clause":
		if n.ChildByFieldName("parameter") == nil {
			raise(feature{10, "optional catch binding"})
		}
	case "number":
		raise(numberFeature(n.Content(src)))
	case "regex":
		raise(regexFeature(n, src))
	case "meta_property":
		switch strings.Join(strings.Fields(n.Content(src)), "") {
		case "new.target":
			raise(feature{6, "new.target"})
		case "import.meta":
			raise(feature{11, "import.meta"})
		}
	case "call_expression":
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "import" {
			raise(feature{11, "dynamic import"})
		}
	case "property_identifier":
		if es3Reserved[n.Content(src)] {
			raise(feature{5, "reserved word as property name"})
		}
	case "object":
		if trailingComma(n, "}") {
			raise(feature{5, "trailing comma in object literal"})
		}
	case "formal_parameters", "arguments":
		if trailingComma(n, ")") {
			raise(feature{8, "trailing comma in parameter list"})
		}
	}
	return best, ok
}

// functionFlavour reports the async and generator markers of a function-like node.
func functionFlavour(n *sitter.Node) (async, generator bool) {
	t := n.Type()
	generator = t == "generator_function_declaration" || t == "generator_function"
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "async":
			async = true
		case "*":
			generator = true
		}
	}
	return async, generator
}

// methodFeature classifies a method definition. Plain accessors in object
// literals date from ES5, every other method form from ES2015.
func methodFeature(n *sitter.Node) feature {
	if parentType(n) != "object" {
		return feature{6, "class method"}
	}
	async, generator := functionFlavour(n)
	if !async && !generator && (hasChild(n, "get") || hasChild(n, "set")) {
		return feature{5, "getter/setter"}
	}
	return feature{6, "method shorthand"}
}

func numberFeature(text string) feature {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, "n"):
		return feature{11, "BigInt literal"}
	case strings.Contains(lower, "_"):
		return feature{12, "numeric separator"}
	case strings.HasPrefix(lower, "0b"):
		return feature{6, "binary literal"}
	case strings.HasPrefix(lower, "0o"):
		return feature{6, "octal literal"}
	}
	return feature{}
}

func regexFeature(n *sitter.Node, src []byte) feature {
	var best feature
	if flags := n.ChildByFieldName("flags"); flags != nil {
		for _, r := range flags.Content(src) {
			if f, ok := regexFlagFeatures[r]; ok && f.level > best.level {
				best = f
			}
		}
	}
	if pattern := n.ChildByFieldName("pattern"); pattern != nil && best.level < 9 {
		p := pattern.Content(src)
		switch {
		case strings.Contains(p, "(?<=") || strings.Contains(p, "(?<!"):
			best = feature{9, "regular expression lookbehind"}
		case strings.Contains(p, "(?<"):
			best = feature{9, "regular expression named group"}
		case strings.Contains(p, `\p{`) || strings.Contains(p, `\P{`):
			best = feature{9, "regular expression property escape"}
		}
	}
	return best
}

// trailingComma reports whether the last token before closer is a comma.
func trailingComma(n *sitter.Node, closer string) bool {
	count := int(n.ChildCount())
	if count < 3 {
		return false
	}
	last := n.Child(count - 1)
	if last == nil || last.Type() != closer {
		return false
	}
	prev := n.Child(count - 2)
	return prev != nil && prev.Type() == ","
}

// topLevel reports whether n sits outside every function body.
func topLevel(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if functionTypes[p.Type()] || p.Type() == "class_static_block" {
			return false
		}
	}
	return true
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() == typ {
			return true
		}
	}
	return false
}

func parentType(n *sitter.Node) string {
	if p := n.Parent(); p != nil {
		return p.Type()
	}
	return ""
}
