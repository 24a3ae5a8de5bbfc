// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package configdoc builds the configuration reference from the config
// package's source. Field docs may carry annotations on their own lines:
//
//	@default: "auto"
//	@enum: line, form, auto
//	@min: 0
//	@max: 65535
package configdoc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the documented configuration.
type Schema struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Attributes  []*Field `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Blocks      []*Block `yaml:"blocks" json:"blocks"`
}

// Block is one HCL block.
type Block struct {
	HCLName     string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []*Field `yaml:"fields" json:"fields"`
}

// Field is one HCL attribute.
type Field struct {
	HCLName     string   `yaml:"name" json:"name"`
	HCLType     string   `yaml:"type" json:"type"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Optional    bool     `yaml:"optional" json:"optional"`
	Default     string   `yaml:"default,omitempty" json:"default,omitempty"`
	Enum        []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Min         *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

type parsedField struct {
	goName string
	goType string
	doc    string
	hcl    string
	block  bool
	opt    bool
}

type parsedStruct struct {
	doc    string
	fields []parsedField
}

// Parser extracts HCL-tagged structs from Go source.
type Parser struct {
	fset    *token.FileSet
	structs map[string]*parsedStruct
}

// NewParser creates a new documentation parser.
func NewParser() *Parser {
	return &Parser{
		fset:    token.NewFileSet(),
		structs: make(map[string]*parsedStruct),
	}
}

// ParseDir parses the non-test Go files in dir.
func (p *Parser) ParseDir(dir string) error {
	pkgs, err := parser.ParseDir(p.fset, dir, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	for name, pkg := range pkgs {
		if strings.HasSuffix(name, "_test") {
			continue
		}
		for _, file := range pkg.Files {
			p.extract(file)
		}
	}
	return nil
}

func (p *Parser) extract(file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}

			ps := &parsedStruct{doc: strings.TrimSpace(gen.Doc.Text())}
			for _, f := range st.Fields.List {
				if len(f.Names) == 0 || f.Tag == nil {
					continue
				}
				tag := reflect.StructTag(strings.Trim(f.Tag.Value, "`")).Get("hcl")
				if tag == "" {
					continue
				}
				parts := strings.Split(tag, ",")
				pf := parsedField{
					goName: f.Names[0].Name,
					goType: typeString(f.Type),
					doc:    strings.TrimSpace(f.Doc.Text()),
					hcl:    parts[0],
				}
				for _, opt := range parts[1:] {
					switch opt {
					case "block":
						pf.block = true
					case "optional":
						pf.opt = true
					}
				}
				ps.fields = append(ps.fields, pf)
			}
			if len(ps.fields) > 0 {
				p.structs[ts.Name.Name] = ps
			}
		}
	}
}

// BuildSchema builds the schema rooted at rootType.
func (p *Parser) BuildSchema(rootType, title string) *Schema {
	schema := &Schema{Title: title}
	root := p.structs[rootType]
	if root == nil {
		return schema
	}
	schema.Description = root.doc

	for _, f := range root.fields {
		if !f.block {
			schema.Attributes = append(schema.Attributes, buildField(f))
			continue
		}
		block := &Block{HCLName: f.hcl, Description: cleanDescription(f.doc)}
		if ref := p.structs[strings.TrimLeft(f.goType, "*[]")]; ref != nil {
			if block.Description == "" {
				block.Description = ref.doc
			}
			for _, nested := range ref.fields {
				if !nested.block {
					block.Fields = append(block.Fields, buildField(nested))
				}
			}
		}
		schema.Blocks = append(schema.Blocks, block)
	}
	return schema
}

func buildField(pf parsedField) *Field {
	f := &Field{
		HCLName:     pf.hcl,
		HCLType:     hclType(pf.goType),
		Description: cleanDescription(pf.doc),
		Optional:    pf.opt,
	}

	for _, line := range strings.Split(pf.doc, "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok || !strings.HasPrefix(key, "@") {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "@default":
			f.Default = val
		case "@enum":
			for _, e := range strings.Split(val, ",") {
				f.Enum = append(f.Enum, strings.TrimSpace(e))
			}
		case "@min":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				f.Min = &v
			}
		case "@max":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				f.Max = &v
			}
		}
	}
	return f
}

func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.ArrayType:
		return "[]" + typeString(t.Elt)
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	default:
		return "unknown"
	}
}

func hclType(goType string) string {
	goType = strings.TrimPrefix(goType, "*")
	if strings.HasPrefix(goType, "[]") {
		return "list(" + hclType(strings.TrimPrefix(goType, "[]")) + ")"
	}
	switch goType {
	case "string":
		return "string"
	case "bool":
		return "bool"
	case "int", "int32", "int64", "uint16", "uint32", "float64":
		return "number"
	default:
		return "object"
	}
}

// cleanDescription drops annotation lines.
func cleanDescription(doc string) string {
	var clean []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			continue
		}
		clean = append(clean, line)
	}
	return strings.TrimSpace(strings.Join(clean, " "))
}
