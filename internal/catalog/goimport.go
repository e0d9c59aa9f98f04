package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/jward/sapling/internal/lang"
)

// externalNamespace seeds the ids of imported functions so that re-importing
// the same declaration keeps every call site resolving.
var externalNamespace = uuid.MustParse("b2d7e0a4-91c3-4f6a-8e25-7c0d3f9a1b64")

const funcDeclQuery = `(function_declaration
  name: (identifier) @name
  parameters: (parameter_list) @params) @func`

// ParseGoDeclarations reads the exported top-level function declarations of
// a Go source file and describes each as an External function. Generic
// functions and methods are skipped.
func ParseGoDeclarations(ctx context.Context, path string, src []byte) ([]*Function, error) {
	grammar := golang.GetLanguage()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	pkg := packageName(root, src)

	q, err := sitter.NewQuery([]byte(funcDeclQuery), grammar)
	if err != nil {
		return nil, fmt.Errorf("compile declaration query: %w", err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var out []*Function
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)

		var decl, name, params *sitter.Node
		for _, c := range match.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "func":
				decl = c.Node
			case "name":
				name = c.Node
			case "params":
				params = c.Node
			}
		}
		if decl == nil || name == nil || params == nil {
			continue
		}
		fnName := name.Content(src)
		if !isExported(fnName) || decl.ChildByFieldName("type_parameters") != nil {
			continue
		}

		qualified := fnName
		if pkg != "" {
			qualified = pkg + "." + fnName
		}
		fn := &Function{
			ID:          uuid.NewSHA1(externalNamespace, []byte(qualified)),
			Name:        fnName,
			Kind:        External,
			Description: docComment(decl, src),
			Args:        goParams(qualified, params, src),
			Returns:     goResult(decl.ChildByFieldName("result"), src),
			Source:      fmt.Sprintf("%s:%d", path, decl.StartPoint().Row+1),
		}
		out = append(out, fn)
	}
	return out, nil
}

func packageName(root *sitter.Node, src []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if id := child.NamedChild(j); id.Type() == "package_identifier" {
				return id.Content(src)
			}
		}
	}
	return ""
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// docComment returns the line comments directly above decl.
func docComment(decl *sitter.Node, src []byte) string {
	var lines []string
	row := decl.StartPoint().Row
	for prev := decl.PrevNamedSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevNamedSibling() {
		if prev.EndPoint().Row+1 != row {
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(prev.Content(src), "//"))
		lines = append([]string{text}, lines...)
		row = prev.StartPoint().Row
	}
	return strings.Join(lines, " ")
}

func goParams(qualified string, list *sitter.Node, src []byte) []lang.ArgumentDefinition {
	var out []lang.ArgumentDefinition
	add := func(name string, typ lang.Type) {
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", len(out))
		}
		out = append(out, lang.ArgumentDefinition{
			ID:   uuid.NewSHA1(externalNamespace, []byte(fmt.Sprintf("%s#%d", qualified, len(out)))),
			Name: name,
			Type: typ,
		})
	}

	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		var typ lang.Type
		switch decl.Type() {
		case "parameter_declaration":
			typ = goType(decl.ChildByFieldName("type"), src)
		case "variadic_parameter_declaration":
			typ = lang.ListOf(goType(decl.ChildByFieldName("type"), src))
		default:
			continue
		}
		var names []string
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			if n := decl.NamedChild(j); n.Type() == "identifier" {
				names = append(names, n.Content(src))
			}
		}
		if len(names) == 0 {
			add("", typ)
			continue
		}
		for _, name := range names {
			add(name, typ.Clone())
		}
	}
	return out
}

// goResult maps a declaration's result to a single type. For multiple
// results the first non-error one wins.
func goResult(result *sitter.Node, src []byte) lang.Type {
	if result == nil {
		return lang.NullType()
	}
	if result.Type() != "parameter_list" {
		return goType(result, src)
	}
	for i := 0; i < int(result.NamedChildCount()); i++ {
		decl := result.NamedChild(i)
		typeNode := decl.ChildByFieldName("type")
		if typeNode == nil || typeNode.Content(src) == "error" {
			continue
		}
		return goType(typeNode, src)
	}
	return lang.NullType()
}

func goType(node *sitter.Node, src []byte) lang.Type {
	if node == nil {
		return lang.AnyType()
	}
	switch node.Type() {
	case "type_identifier":
		switch node.Content(src) {
		case "string", "rune", "byte":
			return lang.StringType()
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64",
			"float32", "float64":
			return lang.NumberType()
		case "bool":
			return lang.BooleanType()
		}
	case "slice_type", "array_type":
		if elem := node.ChildByFieldName("element"); elem != nil {
			if elem.Content(src) == "byte" {
				return lang.StringType()
			}
			return lang.ListOf(goType(elem, src))
		}
	case "pointer_type", "parenthesized_type":
		if node.NamedChildCount() > 0 {
			return goType(node.NamedChild(0), src)
		}
	}
	return lang.AnyType()
}
