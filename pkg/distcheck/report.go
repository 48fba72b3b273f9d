package distcheck

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hydephp/distcheck/pkg/ascii"
	"github.com/hydephp/distcheck/pkg/exitcode"
)

// Status is the per-asset comparison outcome.
type Status string

const (
	StatusMatch     Status = "match"
	StatusMismatch  Status = "mismatch"
	StatusMalformed Status = "malformed"
)

// Mode names what a run did.
type Mode string

const (
	ModeVerify Mode = "verify"
	ModeFix    Mode = "fix"
	ModeInject Mode = "inject"
)

// AssetResult describes one generated asset.
type AssetResult struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Found    string `json:"found,omitempty"`
	Status   Status `json:"status"`
	// Drift is "behind" or "ahead" when both versions are valid SemVer.
	Drift  string `json:"drift,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Detail is the human-readable explanation of a non-matching result.
func (a AssetResult) Detail() string {
	switch a.Status {
	case StatusMismatch:
		d := fmt.Sprintf("expected '%s', found '%s'", a.Expected, a.Found)
		if a.Drift != "" {
			d += " (" + a.Drift + ")"
		}
		return d
	case StatusMalformed:
		return a.Reason
	default:
		return ""
	}
}

// FileChange represents a change made to a file
type FileChange struct {
	File       string `json:"file"`
	OldVersion string `json:"old_version,omitempty"`
	NewVersion string `json:"new_version"`
}

// Report is the outcome of one Run.
type Report struct {
	Mode     Mode          `json:"mode"`
	Manifest string        `json:"manifest"`
	Version  string        `json:"version,omitempty"`
	Root     *RootResult   `json:"root,omitempty"`
	Assets   []AssetResult `json:"assets,omitempty"`
	Changes  []FileChange  `json:"changes,omitempty"`
	ExitCode int           `json:"exit_code"`
	Message  string        `json:"message,omitempty"`
}

// Mismatches returns the assets whose version differs from the manifest.
func (r *Report) Mismatches() []AssetResult {
	var out []AssetResult
	for _, a := range r.Assets {
		if a.Status == StatusMismatch {
			out = append(out, a)
		}
	}
	return out
}

// OK reports whether the run succeeded.
func (r *Report) OK() bool {
	return r.ExitCode == exitcode.Success
}

// Err returns a code-carrying error for a failed run, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return exitcode.Wrap(r.ExitCode, nil)
}

// Summary renders the report as a table for terminal output.
func (r *Report) Summary() string {
	title := cases.Title(language.Und)

	var sb strings.Builder
	if r.Root != nil && r.Root.Monorepo {
		state := "verified"
		switch {
		case r.Root.Skipped:
			state = "skipped"
		case r.Root.Failed():
			state = fmt.Sprintf("expected '%s', found '%s'", r.Root.Locked, r.Root.Found)
		}
		sb.WriteString(fmt.Sprintf("Root lock (%s): %s\n\n", r.Root.Dependency, state))
	}

	rows := make([][]string, 0, len(r.Assets))
	for _, a := range r.Assets {
		rows = append(rows, []string{a.Path, a.Found, title.String(string(a.Status)), ascii.Truncate(a.Detail(), 60)})
	}
	if len(rows) > 0 {
		sb.WriteString(ascii.Table([]string{"Asset", "Found", "Status", "Detail"}, rows))
	}

	footer := []string{
		fmt.Sprintf("%s: %s", title.String(string(r.Mode)), r.Version),
		fmt.Sprintf("Result: %s", exitcode.String(r.ExitCode)),
	}
	if len(r.Changes) > 0 {
		footer = append(footer, fmt.Sprintf("Files changed: %d", len(r.Changes)))
	}
	sb.WriteString(ascii.Box(footer))
	return sb.String()
}
