// Package caseconv provides the pure string case conversions used as
// template filters. Each function is stateless.
package caseconv

import (
	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Kebab converts to kebab-case.
func Kebab(s string) string { return strcase.ToKebab(s) }

// LowerCamel converts to lowerCamelCase.
func LowerCamel(s string) string { return strcase.ToLowerCamel(s) }

// Pascal converts to PascalCase.
func Pascal(s string) string { return strcase.ToCamel(s) }

// ShoutyKebab converts to SHOUTY-KEBAB-CASE.
func ShoutyKebab(s string) string { return strcase.ToScreamingKebab(s) }

// ShoutySnake converts to SHOUTY_SNAKE_CASE.
func ShoutySnake(s string) string { return strcase.ToScreamingSnake(s) }

// Snake converts to snake_case.
func Snake(s string) string { return strcase.ToSnake(s) }

// Title converts to Title Case with space-separated words.
func Title(s string) string {
	return titleCaser.String(strcase.ToDelimited(s, ' '))
}

// UpperCamel converts to UpperCamelCase. Alias of Pascal, kept because both
// filter names are part of the template surface.
func UpperCamel(s string) string { return strcase.ToCamel(s) }
