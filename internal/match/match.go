package match

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a single entry name is selected by one pattern.
// The whole name must match; a substring hit is not a match.
type Matcher interface {
	Match(name string) bool
}

// Set restricts which entries participate in an operation. An empty set
// selects everything; otherwise an entry is selected when any pattern in
// the set matches its whole base name.
type Set interface {
	Selects(name string) bool
	Empty() bool
}

// Stripper removes every occurrence of its patterns from a text buffer.
// Only the regex dialect supports this.
type Stripper interface {
	Strip(content string) string
}

// NewRegexSet compiles the patterns as regular expressions. Names are
// matched against the whole pattern; Strip applies each raw pattern as a
// global substring removal.
func NewRegexSet(patterns []string) (Set, error) {
	rs := regexSet{}
	for _, pattern := range patterns {
		anchored, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
		if err != nil {
			return nil, &ErrBadPattern{pattern: pattern, reason: err.Error()}
		}
		raw, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ErrBadPattern{pattern: pattern, reason: err.Error()}
		}
		rs.patterns = append(rs.patterns, regexPattern{anchored: anchored, raw: raw})
	}
	return &rs, nil
}

// NewGlobSet compiles the patterns as doublestar globs.
func NewGlobSet(patterns []string) (Set, error) {
	gs := globSet{}
	for _, pattern := range patterns {
		if doublestar.ValidatePattern(pattern) == false {
			return nil, &ErrBadPattern{pattern: pattern, reason: "invalid glob"}
		}
		gs.patterns = append(gs.patterns, pattern)
	}
	return &gs, nil
}

type regexPattern struct {
	anchored *regexp.Regexp
	raw      *regexp.Regexp
}

func (rp regexPattern) Match(name string) bool {
	return rp.anchored.MatchString(name)
}

type regexSet struct {
	patterns []regexPattern
}

func (rs *regexSet) Empty() bool {
	return len(rs.patterns) == 0
}

func (rs *regexSet) Selects(name string) bool {
	if len(rs.patterns) == 0 {
		return true
	}
	for _, pattern := range rs.patterns {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}

func (rs *regexSet) Strip(content string) string {
	for _, pattern := range rs.patterns {
		content = pattern.raw.ReplaceAllString(content, "")
	}
	return content
}

type globSet struct {
	patterns []string
}

func (gs *globSet) Empty() bool {
	return len(gs.patterns) == 0
}

func (gs *globSet) Selects(name string) bool {
	if len(gs.patterns) == 0 {
		return true
	}
	for _, pattern := range gs.patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

type ErrBadPattern struct {
	pattern string
	reason  string
}

func (e *ErrBadPattern) Error() string {
	return fmt.Sprintf("bad pattern '%s': %s", e.pattern, e.reason)
}
