package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/adamancini/updraft/internal/changelog"
	"github.com/adamancini/updraft/internal/state"
	"github.com/adamancini/updraft/internal/types"
)

func TestStatus_Empty(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "", "status", "-C", dir)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(stdout, "No update state is recorded in this directory.") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestStatus_Text(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)
	writeState(t, dir, state.State{PackageName: "tool", Version: "1.0.0", Initialized: true, Interrupted: true})

	stdout, _, err := executeCmd(t, "", "status", "-C", dir)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	for _, want := range []string{"Package:", "tool", "Version:", "1.0.0", "Interrupted:", "true"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestStatus_CheckYAML(t *testing.T) {
	isolateEnv(t)
	_, srv := releaseFixture(t)
	dir := newProject(t)
	writeState(t, dir, state.State{PackageName: "tool", Version: "1.0.0", Initialized: true})

	stdout, stderr, err := executeCmd(t, "", "status", "--check", "-C", dir, "--api-url", srv.URL, "-o", "yaml")
	if err != nil {
		t.Fatalf("status error = %v\nstderr: %s", err, stderr)
	}

	var view statusView
	if err := yaml.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("stdout is not YAML: %v\n%s", err, stdout)
	}
	if !view.Recorded {
		t.Error("recorded = false, want true")
	}
	if view.Latest != "2.0.0" {
		t.Errorf("latest = %q, want 2.0.0", view.Latest)
	}
	if view.Decision != types.DecisionUpdateAvailable {
		t.Errorf("decision = %s, want %s", view.Decision, types.DecisionUpdateAvailable)
	}
}

func TestStatus_CheckWithoutPackage(t *testing.T) {
	isolateEnv(t)
	_, srv := releaseFixture(t)
	dir := newProject(t)

	_, _, err := executeCmd(t, "", "status", "--check", "-C", dir, "--api-url", srv.URL)
	if !errors.Is(err, ErrReported) {
		t.Errorf("status --check without a package = %v, want ErrReported", err)
	}
}

func TestPackages(t *testing.T) {
	isolateEnv(t)
	_, srv := releaseFixture(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "", "packages", "-C", dir, "--api-url", srv.URL)
	if err != nil {
		t.Fatalf("packages error = %v", err)
	}
	if strings.TrimSpace(stdout) != "tool" {
		t.Errorf("stdout = %q, want tool", stdout)
	}

	stdout, _, err = executeCmd(t, "", "packages", "-C", dir, "--api-url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("packages -o json error = %v", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(stdout), &names); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if len(names) != 1 || names[0] != "tool" {
		t.Errorf("names = %v", names)
	}
}

func TestPackages_Empty(t *testing.T) {
	isolateEnv(t)
	srv := newAPI(t, map[string]apiRelease{})
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "", "packages", "-C", dir, "--api-url", srv.URL)
	if err != nil {
		t.Fatalf("packages error = %v", err)
	}
	if !strings.Contains(stdout, "No packages are available.") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestChangelog_FromStdin(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "+ dark mode - legacy api · login loop", "changelog", "-f", "-", "-C", dir)
	if err != nil {
		t.Fatalf("changelog error = %v", err)
	}
	for _, want := range []string{"Added", "dark mode", "Removed", "legacy api", "Fixed", "login loop"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestChangelog_PlainFromFile(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)
	path := filepath.Join(dir, "NEWS.txt")
	if err := os.WriteFile(path, []byte("| read the docs + search"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCmd(t, "", "changelog", "--file", path, "--plain", "-C", dir)
	if err != nil {
		t.Fatalf("changelog error = %v", err)
	}
	want := "+ search\n| read the docs\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestChangelog_PackageJSON(t *testing.T) {
	isolateEnv(t)
	_, srv := releaseFixture(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "", "changelog", "tool", "-C", dir, "--api-url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("changelog error = %v", err)
	}
	var records []changelog.Record
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	want := []changelog.Record{
		{Kind: types.ChangeAdded, Description: "feature one"},
		{Kind: types.ChangeFixed, Description: "crash on start"},
	}
	if len(records) != len(want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("records[%d] = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestChangelog_Kind(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "+ dark mode · login loop + search · typo", "changelog", "-f", "-", "--kind", "Fixed", "--plain", "-C", dir)
	if err != nil {
		t.Fatalf("changelog error = %v", err)
	}
	want := "· login loop\n· typo\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}

	stdout, _, err = executeCmd(t, "+ dark mode", "changelog", "-f", "-", "--kind", "removed", "-o", "json", "-C", dir)
	if err != nil {
		t.Fatalf("changelog -o json error = %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("stdout = %q, want an empty list", stdout)
	}

	if _, _, err := executeCmd(t, "", "changelog", "-f", "-", "--kind", "changed", "-C", dir); err == nil {
		t.Error("unknown --kind should fail")
	}
}

func TestChangelog_RequiresSource(t *testing.T) {
	isolateEnv(t)

	if _, _, err := executeCmd(t, "", "changelog"); err == nil {
		t.Error("changelog without a package or --file should fail")
	}
	if _, _, err := executeCmd(t, "", "changelog", "tool", "--file", "x"); err == nil {
		t.Error("changelog with both a package and --file should fail")
	}
}

func TestReset(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "", "reset", "-C", dir)
	if err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if !strings.Contains(stdout, "There is no update state to remove.") {
		t.Errorf("stdout = %q", stdout)
	}

	writeState(t, dir, state.State{PackageName: "tool", Version: "1.0.0", Initialized: true})
	stdout, _, err = executeCmd(t, "", "reset", "-C", dir)
	if err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if !strings.Contains(stdout, "Update state removed.") {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, ".updraft", "state.json")); !os.IsNotExist(err) {
		t.Error("state file should be removed")
	}
}

func TestReset_RecoversCorruptState(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)
	path := filepath.Join(dir, ".updraft", "state.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := executeCmd(t, "", "reset", "-C", dir); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if _, _, err := executeCmd(t, "", "status", "-C", dir); err != nil {
		t.Errorf("status after reset error = %v", err)
	}
}

func TestReset_Spanish(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)

	stdout, _, err := executeCmd(t, "", "reset", "-C", dir, "--lang", "es")
	if err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if !strings.Contains(stdout, "No hay estado de actualización que eliminar.") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestVersion(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCmd(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(stdout, "updraft version 1.0.0-test (commit abc123") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = executeCmd(t, "", "version", "-o", "json")
	if err != nil {
		t.Fatalf("version -o json error = %v", err)
	}
	var info buildInfo
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if info.Version != "1.0.0-test" || info.Commit != "abc123" {
		t.Errorf("info = %+v", info)
	}
}

func TestCompletion(t *testing.T) {
	isolateEnv(t)

	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCmd(t, "", "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error = %v", shell, err)
			}
			if !strings.Contains(stdout, "updraft") {
				t.Errorf("completion %s output does not mention updraft", shell)
			}
		})
	}

	if _, _, err := executeCmd(t, "", "completion", "powershell"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestLangCompletionListsCatalogs(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCmd(t, "", "__complete", "status", "--lang", "")
	if err != nil {
		t.Fatalf("__complete error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) < 3 || lines[0] != "en" || lines[1] != "es" {
		t.Errorf("completions = %q, want en and es", stdout)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	isolateEnv(t)
	dir := newProject(t)

	_, stderr, err := executeCmd(t, "", "status", "-C", dir, "-o", "xml")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("status -o xml = %v, want ErrReported", err)
	}
	if !strings.Contains(stderr, "unknown format: xml") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestEnvOverridesFileAndFlagOverridesEnv(t *testing.T) {
	isolateEnv(t)
	_, srv := releaseFixture(t)
	dir := newProject(t)
	settings := "api_url: http://127.0.0.1:1/unreachable\ngit:\n  depth: 0\n"
	if err := os.WriteFile(filepath.Join(dir, "updraft.yaml"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("UPDRAFT_API_URL", srv.URL)
	if _, _, err := executeCmd(t, "", "packages", "-C", dir); err != nil {
		t.Errorf("env should override the settings file: %v", err)
	}

	if _, _, err := executeCmd(t, "", "packages", "-C", dir, "--api-url", "http://127.0.0.1:1/unreachable"); !errors.Is(err, ErrReported) {
		t.Errorf("flag should override the environment, got %v", err)
	}
}
