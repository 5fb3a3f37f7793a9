// Package query turns optional request filters into a store-neutral
// predicate that repositories compile into their own query language.
package query

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidPattern is returned when a name pattern does not compile.
	ErrInvalidPattern = errors.New("invalid name pattern")

	// ErrPatternTooLong is returned when a name pattern exceeds the limit.
	ErrPatternTooLong = errors.New("name pattern too long")
)

// DefaultMaxPatternLength bounds name patterns unless configured otherwise.
const DefaultMaxPatternLength = 256

// PatternMode decides how free-text name input is interpreted.
type PatternMode string

const (
	// PatternRegex passes the input through as regular expression syntax.
	PatternRegex PatternMode = "regex"
	// PatternLiteral escapes every metacharacter so the input matches as text.
	PatternLiteral PatternMode = "literal"
)

// ParsePatternMode validates a configured mode name.
func ParsePatternMode(s string) (PatternMode, error) {
	switch m := PatternMode(s); m {
	case PatternRegex, PatternLiteral:
		return m, nil
	}
	return "", fmt.Errorf("unknown name match mode %q", s)
}

// Constraint is one conjunct of a Predicate. The concrete types are
// NameMatch and AttendingEquals.
type Constraint interface {
	constraint()
}

// NameMatch matches records whose first or last name contains Pattern,
// ignoring case. Pattern is regular expression syntax.
type NameMatch struct {
	Pattern string
}

// AttendingEquals matches records whose stored attendance text equals Value
// exactly.
type AttendingEquals struct {
	Value string
}

func (NameMatch) constraint()       {}
func (AttendingEquals) constraint() {}

// Predicate is a conjunction of constraints. The zero value matches every
// record.
type Predicate struct {
	constraints []Constraint
}

// And returns a new predicate with c appended. The receiver is not modified.
func (p Predicate) And(c Constraint) Predicate {
	next := make([]Constraint, 0, len(p.constraints)+1)
	next = append(next, p.constraints...)
	next = append(next, c)
	return Predicate{constraints: next}
}

// IsEmpty reports whether the predicate has no constraints.
func (p Predicate) IsEmpty() bool {
	return len(p.constraints) == 0
}

// Constraints returns a copy of the constraints in insertion order.
func (p Predicate) Constraints() []Constraint {
	out := make([]Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

// Filters are the optional list filters. A nil field means the parameter
// was not supplied.
type Filters struct {
	Name      *string
	Attending *string
}

// Translator builds predicates from filters.
type Translator struct {
	mode   PatternMode
	maxLen int
}

// NewTranslator constructs a Translator. An empty mode means PatternRegex and
// a non-positive maxLen means DefaultMaxPatternLength.
func NewTranslator(mode PatternMode, maxLen int) *Translator {
	if mode == "" {
		mode = PatternRegex
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxPatternLength
	}
	return &Translator{mode: mode, maxLen: maxLen}
}

// Mode returns the configured pattern mode.
func (t *Translator) Mode() PatternMode {
	return t.mode
}

// Translate builds the predicate for f. A present but empty name still
// produces a NameMatch whose empty pattern matches every record. An empty
// attending value is ignored.
func (t *Translator) Translate(f Filters) (Predicate, error) {
	var p Predicate

	if f.Name != nil {
		pattern, err := t.pattern(*f.Name)
		if err != nil {
			return Predicate{}, err
		}
		p = p.And(NameMatch{Pattern: pattern})
	}

	if f.Attending != nil && *f.Attending != "" {
		p = p.And(AttendingEquals{Value: *f.Attending})
	}

	return p, nil
}

func (t *Translator) pattern(name string) (string, error) {
	if len(name) > t.maxLen {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrPatternTooLong, len(name), t.maxLen)
	}
	if t.mode == PatternLiteral {
		return regexp.QuoteMeta(name), nil
	}
	if _, err := regexp.Compile("(?i)" + name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return name, nil
}
