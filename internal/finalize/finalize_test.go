package finalize

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

type mockRunner struct {
	calls []string
	dirs  []string
	fail  map[string]CmdResult
	err   map[string]error
}

func (m *mockRunner) Run(ctx context.Context, dir, name string, args ...string) (CmdResult, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	m.calls = append(m.calls, line)
	m.dirs = append(m.dirs, dir)
	if err := m.err[line]; err != nil {
		return CmdResult{}, err
	}
	if res, ok := m.fail[line]; ok {
		return res, nil
	}
	return CmdResult{}, nil
}

func TestPlan_Commands(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
		want []string
	}{
		{"everything", Plan{Install: true, PkgManager: "yarn", GitInit: true, LintFix: true},
			[]string{"yarn install", "git init --quiet", "npm run --silent lint:fix"}},
		{"default package manager", Plan{Install: true}, []string{"npm install"}},
		{"git only", Plan{GitInit: true, LintFix: true}, []string{"git init --quiet"}},
		{"nothing", Plan{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, c := range tt.plan.Commands() {
				got = append(got, c.String())
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_AllSucceed(t *testing.T) {
	m := &mockRunner{}
	cmds := Plan{Install: true, GitInit: true, LintFix: true}.Commands()
	if err := Run(context.Background(), m, "/tmp/app", cmds, nil); err != nil {
		t.Fatal(err)
	}
	if len(m.calls) != 3 {
		t.Fatalf("calls = %v", m.calls)
	}
	for _, d := range m.dirs {
		if d != "/tmp/app" {
			t.Fatalf("dir = %q", d)
		}
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	m := &mockRunner{
		fail: map[string]CmdResult{"npm install": {ExitCode: 1, Stderr: "boom"}},
		err:  map[string]error{"git init --quiet": errors.New("not found")},
	}
	cmds := Plan{Install: true, GitInit: true, LintFix: true}.Commands()
	err := Run(context.Background(), m, "dir", cmds, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(m.calls) != 3 {
		t.Fatalf("all commands should run, got %v", m.calls)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", n, err)
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Fatalf("got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &mockRunner{}
	err := Run(ctx, m, "dir", Plan{Install: true}.Commands(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(m.calls) != 0 {
		t.Fatalf("calls = %v", m.calls)
	}
}

func TestPreflight(t *testing.T) {
	prev := lookPath
	t.Cleanup(func() { lookPath = prev })
	lookPath = func(name string) (string, error) {
		if name == "yarn" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}

	if err := Preflight(Plan{Install: true, GitInit: true}.Commands()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Preflight(Plan{Install: true, PkgManager: "yarn"}.Commands())
	if err == nil || !strings.Contains(err.Error(), "yarn") {
		t.Fatalf("got %v", err)
	}
}

func TestCmdResult_SetExit(t *testing.T) {
	var r CmdResult
	if err := r.setExit(nil); err != nil || r.ExitCode != 0 {
		t.Fatalf("got %d, %v", r.ExitCode, err)
	}
	other := errors.New("boom")
	if err := r.setExit(other); err != other {
		t.Fatalf("got %v", err)
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := lookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	res, err := ExecRunner{}.Run(context.Background(), dir, "sh", "-c", "pwd; exit 3")
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, dir) {
		t.Fatalf("stdout = %q, want dir %q", res.Stdout, dir)
	}
}

func TestExecRunner_Cancelled(t *testing.T) {
	if _, err := lookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, t.TempDir(), "sh", "-c", "exit 0")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
