package model

import (
	"strconv"
	"strings"
)

// Character validation constants
const (
	firstDigitChar = '0'
	lastDigitChar  = '9'
	firstLowerChar = 'a'
	lastLowerChar  = 'z'
	firstUpperChar = 'A'
	lastUpperChar  = 'Z'
	underscoreChar = '_'
	spaceChar      = ' '
	slashChar      = '/'
)

// NormalizeColumnName converts a raw header cell into a SQL-safe identifier.
//
// The name is trimmed, '/' becomes '_', every rune outside
// [ A-Za-z0-9_] is dropped, spaces become '_' and the result is lower-cased.
// A name may become empty; callers decide whether that is acceptable.
func NormalizeColumnName(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, string(slashChar), string(underscoreChar))

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == spaceChar:
			b.WriteRune(underscoreChar)
		case (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// NormalizeHeader normalizes every header cell and resolves collisions.
//
// A name that was already produced gets the lowest numeric suffix
// (_1, _2, ...) that is not yet taken, so names are unique and assigned in
// order of first occurrence.
func NormalizeHeader(h Header) Header {
	out := make(Header, 0, len(h))
	seen := make(map[string]bool, len(h))

	for _, raw := range h {
		name := NormalizeColumnName(raw)
		if seen[name] {
			name = nextFreeName(name, seen)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func nextFreeName(base string, seen map[string]bool) string {
	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !seen[candidate] {
			return candidate
		}
	}
}

// reservedWords holds common SQL keywords that SQLite, PostgreSQL and
// SQL Server reject as bare column names.
var reservedWords = map[string]bool{
	"add": true, "all": true, "alter": true, "and": true, "as": true,
	"asc": true, "between": true, "by": true, "case": true, "check": true,
	"column": true, "constraint": true, "create": true, "default": true,
	"delete": true, "desc": true, "distinct": true, "drop": true, "else": true,
	"end": true, "exists": true, "foreign": true, "from": true, "group": true,
	"having": true, "in": true, "index": true, "insert": true, "into": true,
	"is": true, "join": true, "key": true, "like": true, "not": true,
	"null": true, "on": true, "or": true, "order": true, "primary": true,
	"references": true, "select": true, "set": true, "table": true,
	"then": true, "to": true, "union": true, "unique": true, "update": true,
	"user": true, "values": true, "when": true, "where": true, "with": true,
}

// UnsafeIdentifiers returns the column names a database rejects when they
// are used unquoted: empty names, names starting with a digit and SQL
// keywords. Scripts never quote identifiers, so such columns make loading
// fail.
func UnsafeIdentifiers(columns []Column) []string {
	var unsafe []string
	for _, c := range columns {
		name := c.Name
		if name == "" || (name[0] >= firstDigitChar && name[0] <= lastDigitChar) || reservedWords[name] {
			unsafe = append(unsafe, strconv.Quote(name))
		}
	}
	return unsafe
}
