package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node of a card layout file.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'card' @Ident"`
	Version string         `parser:"@Ident"`
	Items   []*Item        `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Item is a top-level entry inside the card body.
type Item struct {
	Field      *FieldDecl  `parser:"  @@"`
	Font       *FontDecl   `parser:"| @@"`
	Assignment *Assignment `parser:"| @@"`
}

// Kind returns the human-readable item type.
func (i *Item) Kind() string {
	switch {
	case i == nil:
		return "unknown"
	case i.Field != nil:
		return "field"
	case i.Font != nil:
		return "font"
	case i.Assignment != nil:
		return "assignment"
	default:
		return "unknown"
	}
}

// FieldDecl binds a text region to a spreadsheet column. Column names with
// spaces are written as strings.
type FieldDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Column Name           `parser:"'field' @( Ident | String )"`
	Block  *Block         `parser:"@@"`
}

// FontDecl registers a font file under a family name.
type FontDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Family Name           `parser:"'font' @( Ident | String )"`
	Block  *Block         `parser:"@@"`
}

// Block is a delimited list of assignments.
type Block struct {
	Assignments []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Get returns the last assignment for key, or nil.
func (b *Block) Get(key string) *Value {
	if b == nil {
		return nil
	}
	var out *Value
	for _, a := range b.Assignments {
		if a.Key == key {
			out = a.Value
		}
	}
	return out
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw returns the textual form of a scalar value; arrays are joined by commas.
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		parts := make([]string, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			parts = append(parts, item.Raw())
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Name accepts either a bare identifier or a quoted string.
type Name string

// Capture implements participle.Capture.
func (n *Name) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("name capture requires value")
	}
	v := values[0]
	if strings.HasPrefix(v, `"`) {
		unquoted, err := strconv.Unquote(v)
		if err != nil {
			return err
		}
		v = unquoted
	}
	*n = Name(v)
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Template returns the value of the top-level `template:` assignment.
func (d *Document) Template() string {
	for _, item := range d.Items {
		if item.Assignment != nil && item.Assignment.Key == "template" {
			return item.Assignment.Value.Raw()
		}
	}
	return ""
}

// Fields returns the field declarations in source order.
func (d *Document) Fields() []*FieldDecl {
	var out []*FieldDecl
	for _, item := range d.Items {
		if item.Field != nil {
			out = append(out, item.Field)
		}
	}
	return out
}

// Fonts returns the font declarations in source order.
func (d *Document) Fonts() []*FontDecl {
	var out []*FontDecl
	for _, item := range d.Items {
		if item.Font != nil {
			out = append(out, item.Font)
		}
	}
	return out
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
