// Package header reads and writes the version banner that generated
// stylesheets carry on their first line:
//
//	/*! HydeFront v3.2.1 | MIT License | https://hydephp.com*/
//
// The version is the text between the "/*! <Product> v" prefix and the
// first pipe that follows it.
package header

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aymerick/raymond"
)

// DefaultTemplate renders the banner used by HydeFront builds.
const DefaultTemplate = "/*! {{{product}}} v{{{version}}} | {{{license}}} | {{{url}}}*/"

// ErrMalformedAsset matches every *MalformedAssetError via errors.Is.
var ErrMalformedAsset = errors.New("malformed asset")

// MalformedAssetError reports an asset whose banner cannot be parsed.
type MalformedAssetError struct {
	Path   string
	Reason string
}

func (e *MalformedAssetError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed asset: %s", e.Reason)
	}
	return fmt.Sprintf("malformed asset %s: %s", e.Path, e.Reason)
}

func (e *MalformedAssetError) Is(target error) bool {
	return target == ErrMalformedAsset
}

// Scope selects how much of an asset a version fix may rewrite.
type Scope string

const (
	// ScopeHeader rewrites only the version slot of the banner.
	ScopeHeader Scope = "header"
	// ScopeGlobal replaces every literal occurrence of the old version.
	ScopeGlobal Scope = "global"
)

// Header is a parsed banner. Offsets index into the text it was parsed from.
type Header struct {
	Product string
	Version string
	Trailer string

	versionStart int
	versionEnd   int
}

// Prefix is the exact text an asset must start with.
func Prefix(product string) string {
	return "/*! " + product + " v"
}

// Marker identifies an already-injected banner anywhere in an asset.
func Marker(product string) string {
	return "/*! " + product
}

// Parse locates the banner at the very start of text.
func Parse(text, product string) (Header, error) {
	prefix := Prefix(product)
	if !strings.HasPrefix(text, prefix) {
		return Header{}, &MalformedAssetError{Reason: fmt.Sprintf("missing %q prefix", prefix)}
	}
	rest := text[len(prefix):]
	pipe := strings.IndexByte(rest, '|')
	if pipe < 0 {
		return Header{}, &MalformedAssetError{Reason: "missing '|' delimiter after version"}
	}

	raw := rest[:pipe]
	version := strings.TrimSpace(raw)
	lead := 0
	if version != "" {
		lead = len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	}

	trailer := rest[pipe+1:]
	if end := strings.Index(trailer, "*/"); end >= 0 {
		trailer = trailer[:end]
	} else if nl := strings.IndexByte(trailer, '\n'); nl >= 0 {
		trailer = trailer[:nl]
	}

	start := len(prefix) + lead
	return Header{
		Product:      product,
		Version:      version,
		Trailer:      strings.TrimSpace(trailer),
		versionStart: start,
		versionEnd:   start + len(version),
	}, nil
}

// Extract returns the banner version of text.
func Extract(text, product string) (string, error) {
	h, err := Parse(text, product)
	if err != nil {
		return "", err
	}
	return h.Version, nil
}

// HasMarker reports whether text already carries a banner for product.
func HasMarker(text, product string) bool {
	return strings.Contains(text, Marker(product))
}

// Inject prepends banner as its own line.
func Inject(text, banner string) string {
	return banner + "\n" + text
}

// Replace rewrites oldVersion to newVersion. With ScopeHeader only the
// banner's version slot changes; text must still parse for product. With
// ScopeGlobal every literal occurrence is replaced, except that an empty
// oldVersion falls back to the header slot. The bool reports whether text
// changed.
func Replace(text, product, oldVersion, newVersion string, scope Scope) (string, bool, error) {
	if oldVersion == newVersion {
		return text, false, nil
	}
	if scope == ScopeGlobal && oldVersion != "" {
		out := strings.ReplaceAll(text, oldVersion, newVersion)
		return out, out != text, nil
	}

	h, err := Parse(text, product)
	if err != nil {
		return text, false, err
	}
	if h.Version != oldVersion {
		return text, false, nil
	}
	out := text[:h.versionStart] + newVersion + text[h.versionEnd:]
	return out, out != text, nil
}

// Data feeds the banner template.
type Data struct {
	Product string
	Version string
	License string
	URL     string
}

// Render expands a Handlebars banner template and checks that the result
// parses back to data.Version.
func Render(template string, data Data) (string, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	out, err := raymond.Render(template, map[string]interface{}{
		"product": data.Product,
		"version": data.Version,
		"license": data.License,
		"url":     data.URL,
	})
	if err != nil {
		return "", fmt.Errorf("render header template: %w", err)
	}
	out = strings.TrimRight(out, "\r\n")

	got, err := Extract(out, data.Product)
	if err != nil {
		return "", fmt.Errorf("header template does not produce a parseable banner: %w", err)
	}
	if got != data.Version {
		return "", fmt.Errorf("header template renders version %q, expected %q", got, data.Version)
	}
	return out, nil
}
