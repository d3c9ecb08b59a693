package ddl

import (
	"errors"
	"fmt"
	"strings"
)

// MaxIdentLen is PostgreSQL's identifier length limit (NAMEDATALEN-1).
const MaxIdentLen = 63

// ErrInvalidIdent is returned when a table, column, type or field name is not
// a valid unquoted SQL identifier.
var ErrInvalidIdent = errors.New("invalid identifier")

// reserved holds the PostgreSQL key words that cannot be used as unquoted
// column or table names.
var reserved = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		all analyse analyze and any array as asc asymmetric both case cast check
		collate column constraint create current_catalog current_date current_role
		current_time current_timestamp current_user default deferrable desc distinct
		do else end except false fetch for foreign from grant group having in
		initially intersect into lateral leading limit localtime localtimestamp not
		null offset on only or order placing primary references returning select
		session_user some symmetric system_user table then to trailing true union
		unique user using variadic when where window with`) {
		reserved[w] = struct{}{}
	}
}

// ValidIdent checks that name can be emitted without quoting: it starts with
// an ASCII letter or underscore, continues with letters, digits, underscores
// or dollar signs, fits in MaxIdentLen bytes and is not a reserved key word.
func ValidIdent(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdent)
	}
	if len(name) > MaxIdentLen {
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidIdent, name, MaxIdentLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		case i > 0 && (c == '$' || ('0' <= c && c <= '9')):
		default:
			return fmt.Errorf("%w: %q has unexpected character %q at %d", ErrInvalidIdent, name, c, i)
		}
	}
	if _, ok := reserved[strings.ToLower(name)]; ok {
		return fmt.Errorf("%w: %q is a reserved key word", ErrInvalidIdent, name)
	}
	return nil
}

// ValidQualifiedIdent is ValidIdent for a possibly schema-qualified name such
// as "public.figures".
func ValidQualifiedIdent(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) > 3 {
		return fmt.Errorf("%w: %q has too many dotted parts", ErrInvalidIdent, name)
	}
	for _, p := range parts {
		if err := ValidIdent(p); err != nil {
			return err
		}
	}
	return nil
}

// unqualified returns the last segment of a dotted name.
func unqualified(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// schemaOf returns everything before the last dot, or "".
func schemaOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}
