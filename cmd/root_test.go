package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/hydephp/distcheck/pkg/exitcode"
)

// execRoot runs a fresh command tree and returns stdout, stderr and the error.
func execRoot(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	registerSubcommands(cmd)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// newPackage lays out <tmp>/monorepo/packages/hydefront and returns the
// package and monorepo root directories.
func newPackage(t *testing.T, manifest, hyde, app string) (string, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "monorepo")
	pkg := filepath.Join(root, "packages", "hydefront")
	writeFile(t, pkg, "package.json", `{"name":"hydefront","version":"`+manifest+`"}`)
	writeFile(t, pkg, "dist/hyde.css", "/*! HydeFront v"+hyde+" | MIT License | https://hydephp.com*/\n.prose{}\n")
	writeFile(t, pkg, "dist/app.css", "/*! HydeFront v"+app+" | MIT License | https://hydephp.com*/\nbody{}\n")
	return pkg, root
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestInitializeLogger(t *testing.T) {
	for _, level := range []string{"info", "debug", "invalid"} {
		cmd := &cobra.Command{}
		cmd.Flags().String("log-level", level, "")
		cmd.Flags().Bool("json", false, "")
		cmd.Flags().Bool("no-color", false, "")

		// This should not panic
		initializeLogger(cmd)
	}
}

func TestRootCmd_Help(t *testing.T) {
	out, _, err := execRoot(t, []string{"--help"})
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}
	if !strings.Contains(out, "distcheck") {
		t.Error("Help output should contain 'distcheck'")
	}
	for _, flag := range []string{"--fix", "--inject-version", "--skip-root-version-check"} {
		if !strings.Contains(out, flag) {
			t.Errorf("Help output should list %s", flag)
		}
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, _, err := execRoot(t, []string{"--version"})
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.HasPrefix(out, "distcheck ") {
		t.Errorf("Version output should start with 'distcheck', got %q", out)
	}
}

func TestRootCmd_InvalidFlag(t *testing.T) {
	_, _, err := execRoot(t, []string{"--invalid-flag"})
	if err == nil {
		t.Fatal("Invalid flag should return an error")
	}
	if code := exitcode.From(err); code != exitcode.ConfigError {
		t.Errorf("exit code = %d, want %d", code, exitcode.ConfigError)
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	if _, _, err := execRoot(t, []string{"dist/hyde.css"}); err == nil {
		t.Error("positional arguments should be rejected")
	}
}

func TestVersion_JSON(t *testing.T) {
	out, _, err := execRoot(t, []string{"--log-level", "error", "version", "--json"})
	if err != nil {
		t.Fatalf("version --json failed: %v\n%s", err, out)
	}
	var v map[string]any
	if json.Unmarshal([]byte(out), &v) != nil {
		t.Fatalf("version output is not valid JSON: %s", out)
	}
	for _, key := range []string{"version", "goVersion", "platform"} {
		if _, ok := v[key].(string); !ok {
			t.Errorf("expected %s field in JSON", key)
		}
	}
}

func TestVersion_Text(t *testing.T) {
	out, _, err := execRoot(t, []string{"version"})
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "distcheck ") || !strings.Contains(out, "OS/Arch:") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestShortSHA(t *testing.T) {
	tests := map[string]string{
		"":                 "unknown",
		"abc":              "abc",
		"0123456789abcdef": "01234567",
	}
	for in, want := range tests {
		if got := shortSHA(in); got != want {
			t.Errorf("shortSHA(%q) = %q, want %q", in, got, want)
		}
	}
}
