package dbd

import "fmt"

// ParseReason identifies the syntactic expectation a parse failure violated.
type ParseReason int

const (
	// NoSpaceInColumn: a column declaration has no whitespace separating
	// the type keyword from the column name.
	NoSpaceInColumn ParseReason = iota

	// NoDoubleColonInForeignKey: a foreign key annotation lacks the '::'
	// between table and column names.
	NoDoubleColonInForeignKey

	// NoClosingForeignKeyAngleBracket: a foreign key '<' is never closed.
	NoClosingForeignKeyAngleBracket

	// NoClosingAnnotationDollarSign: an entry tag block '$' is never closed.
	NoClosingAnnotationDollarSign

	// NoClosingIntegerSizeAngleBracket: an integer width '<' is never closed.
	NoClosingIntegerSizeAngleBracket

	// InvalidIntegerSizeNumber: the integer width annotation is not a
	// number that fits in 8 bits.
	InvalidIntegerSizeNumber

	// NoClosingArraySizeSquareBracket: an array size '[' is never closed.
	NoClosingArraySizeSquareBracket

	// InvalidArraySizeNumber: the array size annotation is not a valid
	// non-negative number.
	InvalidArraySizeNumber

	// InvalidLayout: a LAYOUT token is not a 32-bit hex value.
	InvalidLayout

	// InvalidBuild: a BUILD token is neither a version literal nor a
	// version range.
	InvalidBuild

	// InvalidType: a column declaration uses an unrecognized type keyword.
	InvalidType
)

// message returns the description for the reason; token carries the
// offending text for reasons that report it.
func (r ParseReason) message(token string) string {
	switch r {
	case NoSpaceInColumn:
		return "no space to separate column name and type"
	case NoDoubleColonInForeignKey:
		return "no '::' inside foreign key '<' and '>' brackets"
	case NoClosingForeignKeyAngleBracket:
		return "no matching '>' for opening '<' in foreign key"
	case NoClosingAnnotationDollarSign:
		return "no matching '$' for opening '$' in annotations"
	case NoClosingIntegerSizeAngleBracket:
		return "no matching '>' for opening '<' in integer size"
	case InvalidIntegerSizeNumber:
		return fmt.Sprintf("invalid integer size: %q", token)
	case NoClosingArraySizeSquareBracket:
		return "no matching ']' for opening '[' in array"
	case InvalidArraySizeNumber:
		return fmt.Sprintf("invalid array size: %q", token)
	case InvalidLayout:
		return fmt.Sprintf("invalid hex string for layout: %q", token)
	case InvalidBuild:
		return fmt.Sprintf("invalid build format: %q", token)
	case InvalidType:
		return fmt.Sprintf("invalid type name: %q", token)
	}
	return fmt.Sprintf("ParseReason(%d)", int(r))
}

// ParseError is a grammar failure located at an exact position in the
// source: Line counts newline-delimited segments from zero, Column is the
// byte offset within the remaining text. Token holds the offending text for
// reasons that carry one.
type ParseError struct {
	Line   int
	Column int
	Reason ParseReason
	Token  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %d, line %d: %s", e.Column, e.Line, e.Reason.message(e.Token))
}

// ResolveErrorKind identifies the structural contradiction resolution found
// between an entry and its column declaration.
type ResolveErrorKind int

const (
	// ColumnNotFound: an entry names a column the file never declares.
	ColumnNotFound ResolveErrorKind = iota

	// NoIntegerWidth: an entry for an int column has no width annotation.
	NoIntegerWidth

	// InvalidIntegerWidth: the declared width is not 8, 16, 32, or 64.
	InvalidIntegerWidth

	// FloatAsForeignKey: a float column declares a foreign key.
	FloatAsForeignKey

	// LocStringAsForeignKey: a locstring column declares a foreign key.
	LocStringAsForeignKey

	// StringAsForeignKey: a string column declares a foreign key.
	StringAsForeignKey
)

// ResolveError is a semantic failure produced while merging an entry with
// its column declaration. It carries no source position: resolution operates
// on structured data, not text.
type ResolveError struct {
	Kind ResolveErrorKind

	// Name is the entry name for ColumnNotFound.
	Name string

	// Width is the rejected width for InvalidIntegerWidth.
	Width int
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case ColumnNotFound:
		return fmt.Sprintf("column not found %q", e.Name)
	case NoIntegerWidth:
		return "no integer width for integer"
	case InvalidIntegerWidth:
		return fmt.Sprintf("invalid integer width %d", e.Width)
	case FloatAsForeignKey:
		return "float type is set as foreign key"
	case LocStringAsForeignKey:
		return "locstring type is set as foreign key"
	case StringAsForeignKey:
		return "string type is set as foreign key"
	}
	return fmt.Sprintf("ResolveErrorKind(%d)", int(e.Kind))
}
