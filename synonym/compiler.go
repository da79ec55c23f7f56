package synonym

import (
	"fmt"
	"strings"

	"github.com/c360/dynsynonym/errors"
)

// Options control rule compilation.
type Options struct {
	// Expand controls comma-group semantics: true builds a full equivalence
	// class (every term expands to every other term of the group), false
	// normalizes every term of the group to its first term.
	Expand bool
	// Lenient skips malformed rule lines instead of failing the compile.
	Lenient bool
}

// DefaultOptions returns the options used when none are supplied
func DefaultOptions() Options {
	return Options{Expand: true}
}

// Compile transforms raw rule text into an immutable Map. It is pure and
// deterministic for identical input and options.
//
// Rule grammar (Solr synonym format subset):
//
//	# comment
//	a, b, c          comma group: equivalence class (or normalization, see Options.Expand)
//	a, b => c, d     explicit mapping: each left term expands to all right terms
//
// Terms are case-folded. A malformed line fails the whole compile with
// ErrMalformedRules identifying the 1-based line number, unless
// Options.Lenient is set, in which case the line is skipped.
func Compile(text []byte, opts Options) (*Map, error) {
	b := newBuilder()

	lines := strings.Split(string(text), "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := b.addLine(line, opts); err != nil {
			if opts.Lenient {
				continue
			}
			return nil, errors.WrapInvalid(errors.ErrMalformedRules, "Compiler", "Compile",
				fmt.Sprintf("line %d: %v", i+1, err))
		}
	}

	return b.build(fingerprint(text)), nil
}

// builder accumulates entries during a compile. Expansion order follows
// rule order; duplicates are merged.
type builder struct {
	entries map[string][]string
	seen    map[string]map[string]struct{}
	rules   int
}

func newBuilder() *builder {
	return &builder{
		entries: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

func (b *builder) addLine(line string, opts Options) error {
	left, right, mapped, err := splitRule(line)
	if err != nil {
		return err
	}

	b.rules++

	switch {
	case mapped:
		for _, from := range left {
			for _, to := range right {
				b.add(from, to)
			}
		}
	case opts.Expand:
		for _, from := range left {
			for _, to := range left {
				b.add(from, to)
			}
		}
	default:
		// Normalization mode: everything in the group maps to the first term
		for _, from := range left[1:] {
			b.add(from, left[0])
		}
	}

	return nil
}

// add records from → to, skipping self-mappings and duplicates
func (b *builder) add(from, to string) {
	if from == to {
		return
	}
	set, ok := b.seen[from]
	if !ok {
		set = make(map[string]struct{})
		b.seen[from] = set
	}
	if _, dup := set[to]; dup {
		return
	}
	set[to] = struct{}{}
	b.entries[from] = append(b.entries[from], to)
}

func (b *builder) build(fp string) *Map {
	return &Map{
		entries:     b.entries,
		rules:       b.rules,
		fingerprint: fp,
	}
}

// splitRule parses one rule line into its left terms, right terms, and
// whether it is an explicit mapping.
func splitRule(line string) (left, right []string, mapped bool, err error) {
	parts := strings.Split(line, "=>")
	switch len(parts) {
	case 1:
		left, err = splitTerms(parts[0])
		return left, nil, false, err
	case 2:
		if left, err = splitTerms(parts[0]); err != nil {
			return nil, nil, true, err
		}
		if right, err = splitTerms(parts[1]); err != nil {
			return nil, nil, true, err
		}
		return left, right, true, nil
	default:
		return nil, nil, true, fmt.Errorf("more than one %q in rule", "=>")
	}
}

// splitTerms parses a comma-separated term list, folding case. Empty terms
// are malformed.
func splitTerms(s string) ([]string, error) {
	fields := strings.Split(s, ",")
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		term := strings.ToLower(strings.TrimSpace(f))
		if term == "" {
			return nil, fmt.Errorf("empty term in %q", strings.TrimSpace(s))
		}
		terms = append(terms, term)
	}
	return terms, nil
}
