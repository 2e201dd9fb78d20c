// Package language re-exports the gqlparser query AST under local names and
// parses operation documents. Execution consumes these documents directly;
// the schema itself is built programmatically, so no schema-document surface
// is exposed here.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseQuery parses an executable GraphQL document.
func ParseQuery(source string) (*QueryDocument, error) {
	return parser.ParseQuery(&ast.Source{Input: source})
}
