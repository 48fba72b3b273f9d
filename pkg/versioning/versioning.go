package versioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Scheme describes how to validate and compare version strings.
type Scheme string

const (
	// SchemeSemverFull enforces full Semantic Versioning (SemVer 2.0.0).
	SchemeSemverFull Scheme = "semver-full"
	// SchemeSemverCompact enforces numeric MAJOR.MINOR.PATCH only.
	SchemeSemverCompact Scheme = "semver-compact"
	// SchemeLexical accepts any non-empty string and compares bytes.
	SchemeLexical Scheme = "lexical"
)

type Comparison int

const (
	ComparisonUnknown Comparison = iota
	ComparisonLess
	ComparisonEqual
	ComparisonGreater
)

// String renders a comparison for log fields.
func (c Comparison) String() string {
	switch c {
	case ComparisonLess:
		return "less"
	case ComparisonEqual:
		return "equal"
	case ComparisonGreater:
		return "greater"
	default:
		return "unknown"
	}
}

// ParseScheme maps a config value onto a Scheme. Empty and "semver" select
// SemverFull.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", "semver", SchemeSemverFull:
		return SchemeSemverFull, nil
	case SchemeSemverCompact:
		return SchemeSemverCompact, nil
	case SchemeLexical:
		return SchemeLexical, nil
	default:
		return "", fmt.Errorf("unsupported version scheme: %s", s)
	}
}

// Validate checks that v is well formed under scheme.
func Validate(scheme Scheme, v string) error {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return errors.New("empty version")
	}
	switch scheme {
	case SchemeLexical:
		return nil
	case SchemeSemverCompact:
		sv, err := semver.StrictNewVersion(trimmed)
		if err != nil {
			return fmt.Errorf("invalid semver '%s': %w", v, err)
		}
		if sv.Prerelease() != "" || sv.Metadata() != "" {
			return fmt.Errorf("semver-compact forbids prerelease or build metadata: %s", v)
		}
		return nil
	default:
		if _, err := semver.StrictNewVersion(trimmed); err != nil {
			return fmt.Errorf("invalid semver '%s': %w", v, err)
		}
		return nil
	}
}

// Compare determines ordering between version a and b using the provided scheme.
func Compare(scheme Scheme, a, b string) (Comparison, error) {
	if scheme == SchemeLexical {
		return compareLexical(a, b), nil
	}
	if err := Validate(scheme, a); err != nil {
		return ComparisonUnknown, err
	}
	if err := Validate(scheme, b); err != nil {
		return ComparisonUnknown, err
	}
	av := semver.MustParse(strings.TrimSpace(a))
	bv := semver.MustParse(strings.TrimSpace(b))
	switch av.Compare(bv) {
	case -1:
		return ComparisonLess, nil
	case 1:
		return ComparisonGreater, nil
	default:
		return ComparisonEqual, nil
	}
}

// Drift describes found relative to expected ("behind", "ahead") for
// mismatch messages. It returns "" when the two are not comparable or
// compare equal under SemVer precedence (e.g. differing build metadata).
func Drift(expected, found string) string {
	cmp, err := Compare(SchemeSemverFull, found, expected)
	if err != nil {
		return ""
	}
	switch cmp {
	case ComparisonLess:
		return "behind"
	case ComparisonGreater:
		return "ahead"
	default:
		return ""
	}
}

func compareLexical(a, b string) Comparison {
	cmp := strings.Compare(strings.TrimSpace(a), strings.TrimSpace(b))
	if cmp < 0 {
		return ComparisonLess
	}
	if cmp > 0 {
		return ComparisonGreater
	}
	return ComparisonEqual
}
