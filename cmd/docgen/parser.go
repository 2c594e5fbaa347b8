package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"
)

// StructDoc is a parsed struct and its documented fields.
type StructDoc struct {
	Name   string
	Doc    string
	Fields []FieldDoc
}

// FieldDoc is one tagged struct field.
type FieldDoc struct {
	Name   string
	GoType string
	Key    string
	Doc    string
}

// ParseSource extracts the structs declared in src. Only fields carrying tag
// are kept; a "-" key hides a field.
func ParseSource(filename string, src []byte, tag string) ([]StructDoc, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var structs []StructDoc
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}

			doc := StructDoc{Name: typeSpec.Name.Name}
			switch {
			case typeSpec.Doc != nil:
				doc.Doc = commentText(typeSpec.Doc)
			case genDecl.Doc != nil:
				doc.Doc = commentText(genDecl.Doc)
			}

			for _, field := range structType.Fields.List {
				doc.Fields = append(doc.Fields, parseField(field, tag)...)
			}
			structs = append(structs, doc)
		}
	}

	return structs, nil
}

func parseField(field *ast.Field, tag string) []FieldDoc {
	if field.Tag == nil || len(field.Names) == 0 {
		return nil
	}
	key, ok := tagKey(field.Tag.Value, tag)
	if !ok {
		return nil
	}

	doc := ""
	switch {
	case field.Doc != nil:
		doc = commentText(field.Doc)
	case field.Comment != nil:
		doc = commentText(field.Comment)
	}

	docs := make([]FieldDoc, 0, len(field.Names))
	for _, name := range field.Names {
		docs = append(docs, FieldDoc{
			Name:   name.Name,
			GoType: typeToString(field.Type),
			Key:    key,
			Doc:    doc,
		})
	}
	return docs
}

// tagKey returns the key named by tag in a raw struct tag literal.
func tagKey(literal, tag string) (string, bool) {
	value, ok := reflect.StructTag(strings.Trim(literal, "`")).Lookup(tag)
	if !ok {
		return "", false
	}
	key, _, _ := strings.Cut(value, ",")
	if key == "" || key == "-" {
		return "", false
	}
	return key, true
}

func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.ArrayType:
		return "[]" + typeToString(t.Elt)
	case *ast.MapType:
		return "map[" + typeToString(t.Key) + "]" + typeToString(t.Value)
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	default:
		return "any"
	}
}

func commentText(g *ast.CommentGroup) string {
	return strings.Join(strings.Fields(g.Text()), " ")
}

// pickStructs returns the named structs in the order given.
func pickStructs(all []StructDoc, names []string) ([]StructDoc, error) {
	byName := make(map[string]StructDoc, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	picked := make([]StructDoc, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("struct %s not found", name)
		}
		picked = append(picked, s)
	}
	return picked, nil
}
