package airtable

import (
	"fmt"
	"strings"
)

// Formula is an Airtable filterByFormula expression. Expressions are built
// with the combinators below and pushed down to the store; the engine never
// filters records client-side.
type Formula string

// quote renders a string literal for a formula, backslash-escaping single
// quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

// Blank matches records where the field is empty.
func Blank(field string) Formula {
	return Formula(fmt.Sprintf("{%s} = ''", field))
}

// EqFold matches records where the field equals value case-insensitively.
func EqFold(field, value string) Formula {
	return Formula(fmt.Sprintf("LOWER({%s}) = %s", field, quote(strings.ToLower(value))))
}

// RecordID matches the record with the given immutable record ID.
func RecordID(id string) Formula {
	return Formula(fmt.Sprintf("RECORD_ID() = %s", quote(id)))
}

// Eq matches records where the field equals value exactly.
func Eq(field, value string) Formula {
	return Formula(fmt.Sprintf("{%s} = %s", field, quote(value)))
}

// Not negates a formula.
func Not(f Formula) Formula {
	return Formula(fmt.Sprintf("NOT(%s)", f))
}

// And combines formulas conjunctively. A single operand passes through.
func And(fs ...Formula) Formula {
	return combine("AND", fs)
}

// Or combines formulas disjunctively. A single operand passes through.
func Or(fs ...Formula) Formula {
	return combine("OR", fs)
}

func combine(op string, fs []Formula) Formula {
	switch len(fs) {
	case 0:
		return ""
	case 1:
		return fs[0]
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return Formula(op + "(" + strings.Join(parts, ", ") + ")")
}
