package dbd

import (
	"strconv"
	"strings"
)

// Section and annotation markers of the .dbd grammar.
const (
	columnsHeader = "COLUMNS"
	buildKeyword  = "BUILD"
	layoutKeyword = "LAYOUT"
	commentMarker = "//"
)

// tagKeywords maps the boolean keywords recognized inside a $...$ tag block
// to the entry flag they set. The vocabulary is deliberately a table so new
// keywords can be added without touching the parser; unrecognized keywords
// are skipped.
var tagKeywords = map[string]func(*Entry){
	"id":        func(e *Entry) { e.PrimaryKey = true },
	"noninline": func(e *Entry) { e.Inline = false },
	"relation":  func(e *Entry) { e.Relation = true },
}

// Parse builds the raw tier from a .dbd document. name is the display name
// the file should carry, usually the source filename. The scan is
// line-oriented: a COLUMNS section first, then definition blocks separated
// by blank lines. The first grammar violation aborts the whole parse with a
// *ParseError locating the offending token.
func Parse(contents, name string) (*File, error) {
	f := NewFile(name)
	lines := strings.Split(contents, "\n")

	i := 0
	// Anything before the COLUMNS header is ignored.
	for i < len(lines) && strings.TrimSpace(trimCR(lines[i])) != columnsHeader {
		i++
	}
	if i < len(lines) {
		i++
		for ; i < len(lines); i++ {
			line := trimCR(lines[i])
			if strings.TrimSpace(line) == "" {
				break
			}
			column, err := parseColumnLine(line, i)
			if err != nil {
				return nil, err
			}
			f.AddColumn(column)
		}
	}

	for i < len(lines) {
		for i < len(lines) && strings.TrimSpace(trimCR(lines[i])) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		var def Definition
		for ; i < len(lines); i++ {
			line := trimCR(lines[i])
			if strings.TrimSpace(line) == "" {
				break
			}
			if err := parseDefinitionLine(&def, line, i); err != nil {
				return nil, err
			}
		}
		f.AddDefinition(def)
	}

	return f, nil
}

// trimCR drops a trailing carriage return so CRLF documents parse like LF
// ones. Only the suffix is touched: byte columns within the line stay valid.
func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// parseColumnLine parses one declaration of the COLUMNS section:
//
//	<type>[<Table::Column>] <name>[?] [// comment]
func parseColumnLine(line string, lineNo int) (Column, *ParseError) {
	decl := line
	comment := ""
	if j := strings.Index(line, commentMarker); j >= 0 {
		comment = strings.TrimSpace(line[j+len(commentMarker):])
		decl = line[:j]
	}
	decl = strings.TrimRight(decl, " \t")

	sep := strings.IndexAny(decl, " \t")
	if sep < 0 {
		return Column{}, &ParseError{Line: lineNo, Column: 0, Reason: NoSpaceInColumn}
	}

	typeToken := decl[:sep]
	name := strings.TrimSpace(decl[sep:])

	var fk *ForeignKey
	typeName := typeToken
	if j := strings.IndexByte(typeToken, '<'); j >= 0 {
		k := strings.IndexByte(typeToken, '>')
		if k < 0 {
			return Column{}, &ParseError{Line: lineNo, Column: j, Reason: NoClosingForeignKeyAngleBracket}
		}
		table, keyColumn, ok := strings.Cut(typeToken[j+1:k], "::")
		if !ok {
			return Column{}, &ParseError{Line: lineNo, Column: j, Reason: NoDoubleColonInForeignKey}
		}
		fk = &ForeignKey{Table: table, Column: keyColumn}
		typeName = typeToken[:j]
	}

	columnType, ok := columnTypes[typeName]
	if !ok {
		return Column{}, &ParseError{Line: lineNo, Column: 0, Reason: InvalidType, Token: typeName}
	}

	verified := true
	if strings.HasSuffix(name, "?") {
		verified = false
		name = name[:len(name)-1]
	}

	return Column{
		Name:       name,
		Type:       columnType,
		ForeignKey: fk,
		Verified:   verified,
		Comment:    comment,
	}, nil
}

// parseDefinitionLine dispatches one line of a definition block. BUILD and
// LAYOUT lines extend the block's version coverage; every other line is an
// entry.
func parseDefinitionLine(def *Definition, line string, lineNo int) *ParseError {
	switch {
	case strings.HasPrefix(line, buildKeyword):
		return parseBuildLine(def, line, lineNo)
	case strings.HasPrefix(line, layoutKeyword):
		return parseLayoutLine(def, line, lineNo)
	default:
		entry, err := parseEntryLine(line, lineNo)
		if err != nil {
			return err
		}
		def.Entries = append(def.Entries, entry)
		return nil
	}
}

// parseBuildLine parses a comma-separated list of version literals and
// ranges after the BUILD keyword.
func parseBuildLine(def *Definition, line string, lineNo int) *ParseError {
	rest := line[len(buildKeyword):]
	offset := len(buildKeyword)

	for len(rest) > 0 {
		token := rest
		advance := len(rest)
		if j := strings.IndexByte(rest, ','); j >= 0 {
			token = rest[:j]
			advance = j + 1
		}
		rest = rest[advance:]

		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			offset += advance
			continue
		}
		tokenColumn := offset + strings.Index(token, trimmed)

		version, versionRange, ok := parseBuildToken(trimmed)
		if !ok {
			return &ParseError{Line: lineNo, Column: tokenColumn, Reason: InvalidBuild, Token: trimmed}
		}
		if versionRange != nil {
			def.Ranges = append(def.Ranges, *versionRange)
		} else {
			def.AddVersion(version)
		}

		offset += advance
	}

	return nil
}

// parseLayoutLine parses a comma-separated list of 32-bit hex layout
// fingerprints after the LAYOUT keyword.
func parseLayoutLine(def *Definition, line string, lineNo int) *ParseError {
	rest := line[len(layoutKeyword):]
	offset := len(layoutKeyword)

	for len(rest) > 0 {
		token := rest
		advance := len(rest)
		if j := strings.IndexByte(rest, ','); j >= 0 {
			token = rest[:j]
			advance = j + 1
		}
		rest = rest[advance:]

		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			offset += advance
			continue
		}
		tokenColumn := offset + strings.Index(token, trimmed)

		value, err := strconv.ParseUint(trimmed, 16, 32)
		if err != nil {
			return &ParseError{Line: lineNo, Column: tokenColumn, Reason: InvalidLayout, Token: trimmed}
		}
		def.AddLayout(Layout(value))

		offset += advance
	}

	return nil
}

// parseEntryLine parses one column usage inside a definition block:
//
//	[$tag,...$]<name>[<width>][[size]] [// comment]
func parseEntryLine(line string, lineNo int) (Entry, *ParseError) {
	entry := Entry{Inline: true}

	rest := line
	column := 0
	if strings.HasPrefix(rest, "$") {
		j := strings.IndexByte(rest[1:], '$')
		if j < 0 {
			return Entry{}, &ParseError{Line: lineNo, Column: 0, Reason: NoClosingAnnotationDollarSign}
		}
		for _, keyword := range strings.Split(rest[1:1+j], ",") {
			if apply, ok := tagKeywords[strings.TrimSpace(keyword)]; ok {
				apply(&entry)
			}
		}
		rest = rest[j+2:]
		column = j + 2
	}

	if j := strings.Index(rest, commentMarker); j >= 0 {
		entry.Comment = strings.TrimSpace(rest[j+len(commentMarker):])
		rest = rest[:j]
	}
	rest = strings.TrimRight(rest, " \t")

	nameEnd := strings.IndexAny(rest, "<[")
	if nameEnd < 0 {
		entry.Name = rest
		return entry, nil
	}
	entry.Name = strings.TrimRight(rest[:nameEnd], " \t")
	annotation := rest[nameEnd:]
	annotationColumn := column + nameEnd

	if strings.HasPrefix(annotation, "<") {
		k := strings.IndexByte(annotation, '>')
		if k < 0 {
			return Entry{}, &ParseError{Line: lineNo, Column: annotationColumn, Reason: NoClosingIntegerSizeAngleBracket}
		}
		number := annotation[1:k]
		digits := number
		if strings.HasPrefix(digits, "u") {
			entry.Unsigned = true
			digits = digits[1:]
		}
		width, err := strconv.ParseUint(digits, 10, 8)
		if err != nil {
			return Entry{}, &ParseError{Line: lineNo, Column: annotationColumn + 1, Reason: InvalidIntegerSizeNumber, Token: number}
		}
		w := int(width)
		entry.Width = &w
		annotation = annotation[k+1:]
		annotationColumn += k + 1
	}

	if strings.HasPrefix(annotation, "[") {
		k := strings.IndexByte(annotation, ']')
		if k < 0 {
			return Entry{}, &ParseError{Line: lineNo, Column: annotationColumn, Reason: NoClosingArraySizeSquareBracket}
		}
		number := annotation[1:k]
		size, err := strconv.ParseUint(number, 10, 31)
		if err != nil {
			return Entry{}, &ParseError{Line: lineNo, Column: annotationColumn + 1, Reason: InvalidArraySizeNumber, Token: number}
		}
		s := int(size)
		entry.ArraySize = &s
	}

	return entry, nil
}
