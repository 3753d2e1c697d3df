// Package finalize runs the post-generation commands: dependency install,
// git init and lint fixes.
package finalize

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/multierr"

	"github.com/jorge-barreto/stgen/internal/logger"
)

// Command is one external command run inside the generated project.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Plan selects the post-generation commands.
type Plan struct {
	Install    bool
	PkgManager string
	GitInit    bool
	LintFix    bool
}

// Commands returns the commands in run order. Lint fixes need installed
// dependencies and are dropped when Install is false.
func (p Plan) Commands() []Command {
	var cmds []Command
	if p.Install {
		pm := p.PkgManager
		if pm == "" {
			pm = "npm"
		}
		cmds = append(cmds, Command{Name: pm, Args: []string{"install"}})
	}
	if p.GitInit {
		cmds = append(cmds, Command{Name: "git", Args: []string{"init", "--quiet"}})
	}
	if p.Install && p.LintFix {
		cmds = append(cmds, Command{Name: "npm", Args: []string{"run", "--silent", "lint:fix"}})
	}
	return cmds
}

var lookPath = exec.LookPath

// Preflight checks that every binary cmds need is available on PATH.
func Preflight(cmds []Command) error {
	seen := make(map[string]bool)
	var missing []string
	for _, c := range cmds {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		if _, err := lookPath(c.Name); err != nil {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required binaries not found in PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Run executes cmds in dir. A failing command does not stop the ones after
// it; all failures are returned together. Cancellation stops the run.
func Run(ctx context.Context, r CommandRunner, dir string, cmds []Command, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	var errs error
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		log.Debug("running command", "command", c.String(), "dir", dir)
		res, err := r.Run(ctx, dir, c.Name, c.Args...)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}
		if res.ExitCode != 0 {
			log.Warn("command failed", "command", c.String(), "exitCode", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
			errs = multierr.Append(errs, fmt.Errorf("%s: exit status %d", c, res.ExitCode))
		}
	}
	return errs
}
