// Package generator runs one generator end to end: prompting, composing
// the plan, registering the app, writing the project and finishing it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/compose"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/finalize"
	"github.com/jorge-barreto/stgen/internal/logger"
	"github.com/jorge-barreto/stgen/internal/naming"
	"github.com/jorge-barreto/stgen/internal/pipeline"
	"github.com/jorge-barreto/stgen/internal/prompt"
	"github.com/jorge-barreto/stgen/internal/registry"
	"github.com/jorge-barreto/stgen/internal/render"
	"github.com/jorge-barreto/stgen/internal/ux"
)

const abortMessage = "An error occurred when creating your SmartThings app. Try again."

// Registrar creates the app record for a generated project.
type Registrar interface {
	CreateApp(ctx context.Context, req registry.AppRequest) (*registry.App, error)
	RegisterURL(appID string) string
}

// Generator holds the inputs of one run.
type Generator struct {
	Def       *config.Generator
	Templates fs.FS
	Prompter  prompt.Prompter
	Overrides map[answers.Key]answers.Value
	Options   map[string]string
	// Dest is the directory the project folder is created in.
	Dest        string
	SkipWelcome bool
	SkipInstall bool
	APIURL      string
	// NewRegistrar builds the registry client once the token is known.
	// Nil uses the SmartThings API at APIURL.
	NewRegistrar func(token string) Registrar
	Commands     finalize.CommandRunner
	Log          *logger.Logger
}

// Result describes what a run produced.
type Result struct {
	RunID   string
	Answers *answers.Store
	Plan    *compose.Plan
	App     *registry.App
	// Dir is the project directory, empty when nothing was written.
	Dir   string
	Files []string
	// Aborted is set when registration failed and nothing was written.
	Aborted bool
	// Unavailable is set when the chosen variant cannot be generated yet.
	Unavailable bool
}

// Run executes the generator. A registration failure is reported to the
// user and returned as an aborted Result, not an error.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Answers: answers.New()}
	log := g.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("run", res.RunID, "generator", g.Def.Name)

	if !g.SkipWelcome {
		ux.Welcome(g.Def.Title)
	}

	pr := &pipeline.Runner{
		Generator: g.Def,
		Store:     res.Answers,
		Prompter:  g.Prompter,
		Overrides: g.Overrides,
		Options:   g.Options,
		Log:       log,
	}
	if err := pr.Run(ctx); err != nil {
		return nil, err
	}
	store := res.Answers

	plan, err := compose.Compose(g.Def, store)
	if err != nil {
		return nil, err
	}
	res.Plan = plan
	log.Debug("plan composed", "variant", plan.Variant.ID, "sources", strings.Join(plan.Descriptor.Sources(), ","), "files", len(plan.Files))
	if !plan.Available() {
		ux.Warn(plan.Variant.Unavailable)
		res.Unavailable = true
		return res, nil
	}

	// Stage before registering so a taken destination fails the run
	// without leaving an app record behind.
	folder := store.String(g.Def.FolderKey)
	tree, err := g.stage(res.RunID, folder)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tree.Discard()
		}
	}()

	var reg Registrar
	if plan.Variant.Register != nil && store.Truthy(answers.SmartThingsPat) {
		reg = g.registrar(store.String(answers.SmartThingsPat), log)
		app, err := g.register(ctx, reg, plan, store)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("registration failed", "error", err)
			if errors.Is(err, registry.ErrAppExists) {
				ux.Fail("Try again with a different, unique app name")
			}
			ux.Abort(abortMessage)
			res.Aborted = true
			return res, nil
		}
		res.App = app
	}

	dir, files, err := g.write(ctx, tree, plan, g.templateData(store, res.App), log)
	if err != nil {
		return nil, err
	}
	committed = true
	res.Dir, res.Files = dir, files
	for _, f := range files {
		ux.FileCreated(filepath.ToSlash(filepath.Join(folder, f)))
	}

	g.finish(ctx, dir, plan, store, log)

	name := store.String(answers.Name)
	if name == "" {
		name = store.String(answers.ApplicationName)
	}
	ux.Created(name, folder)
	if res.App != nil {
		ux.RegisterHint(store.String(answers.SmartThingsPat), reg.RegisterURL(res.App.AppID))
	}
	ux.EditorHint(folder)
	return res, nil
}

func (g *Generator) registrar(token string, log *logger.Logger) Registrar {
	if g.NewRegistrar != nil {
		return g.NewRegistrar(token)
	}
	return registry.New(log, registry.Config{BaseURL: g.APIURL, Token: token})
}

func (g *Generator) register(ctx context.Context, reg Registrar, plan *compose.Plan, store *answers.Store) (*registry.App, error) {
	ux.Info("Creating a new SmartThings project for you")
	return reg.CreateApp(ctx, registry.AppRequest{
		Name:            store.String(answers.Name),
		DisplayName:     store.String(answers.DisplayName),
		Description:     store.String(answers.Description),
		Lambda:          store.String(answers.HostingProvider) == "lambda",
		Functions:       store.String(answers.LambdaArn),
		TargetURL:       store.String(answers.WebhookTargetURL),
		Classifications: plan.Variant.Register.Classifications,
		Scopes:          store.List(answers.SmartAppPermissions),
	})
}

// templateData is the context every template is rendered with. Templates
// fail on missing keys, so every question id is present, unanswered ones
// with the zero value of their kind.
func (g *Generator) templateData(store *answers.Store, app *registry.App) map[string]any {
	data := make(map[string]any, len(g.Def.Questions)+3)
	for i := range g.Def.Questions {
		q := &g.Def.Questions[i]
		switch q.Kind {
		case config.KindConfirm:
			data[string(q.ID)] = false
		case config.KindCheckbox:
			data[string(q.ID)] = []string{}
		default:
			data[string(q.ID)] = ""
		}
	}
	for k, v := range store.Map() {
		data[k] = v
	}
	data["appId"], data["oauthClientId"], data["oauthClientSecret"] = "", "", ""
	if app != nil {
		data["appId"] = app.AppID
		data["oauthClientId"] = app.OAuthClientID
		data["oauthClientSecret"] = app.OAuthClientSecret
	}
	return data
}

// stage creates the staging tree for Dest/folder. It fails when the
// destination already exists.
func (g *Generator) stage(runID, folder string) (*render.Tree, error) {
	if folder == "" {
		return nil, fmt.Errorf("no project folder: %q is unset", g.Def.FolderKey)
	}
	return render.New(g.Templates, filepath.Join(g.Dest, folder), runID)
}

// write renders the plan into tree and commits it. The caller discards
// the tree when write fails.
func (g *Generator) write(ctx context.Context, tree *render.Tree, plan *compose.Plan, data map[string]any, log *logger.Logger) (string, []string, error) {
	for _, a := range plan.Files {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if err := g.apply(tree, plan, a, data, log); err != nil {
			return "", nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if err := tree.Commit(); err != nil {
		return "", nil, err
	}
	log.Info("project written", "dir", tree.Dest(), "files", len(tree.Files()))
	return tree.Dest(), tree.Files(), nil
}

func (g *Generator) apply(tree *render.Tree, plan *compose.Plan, a config.FileAction, data map[string]any, log *logger.Logger) error {
	switch a.Kind {
	case config.ActionCopy:
		return tree.Copy(plan.Source(a.Src), a.Dest)
	case config.ActionTemplate:
		return tree.CopyTemplate(plan.Source(a.Src), a.Dest, data)
	case config.ActionEnv:
		vars := make(map[string]string, len(a.Env))
		for _, e := range a.Env {
			v, err := render.Execute(e.Name, e.Value, data)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Dest, err)
			}
			vars[e.Name] = v
		}
		return tree.WriteEnv(a.Dest, vars)
	case config.ActionMergeJSON:
		switch a.Merge {
		case config.MergePackage:
			return tree.MergeJSON(a.Dest, plan.Descriptor.Package())
		case config.MergeExtensions:
			return tree.MergeJSON(a.Dest, plan.Descriptor.Extensions())
		}
		return fmt.Errorf("%s: unknown merge target %q", a.Dest, a.Merge)
	case config.ActionTree:
		rename, err := renamer(a.Rename, data)
		if err != nil {
			return err
		}
		skipped, err := tree.Walk(plan.Source(a.Src), a.Dest, data, render.WalkOptions{Include: a.Include, Rename: rename})
		for _, s := range skipped {
			log.Debug("ignoring unmatched file", "file", s)
		}
		return err
	}
	return fmt.Errorf("%s: unknown action kind %q", a.Dest, a.Kind)
}

// renamer substitutes rename tokens in tree output paths.
func renamer(rules []config.Rename, data map[string]any) (func(string) string, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	var pairs []string
	for _, r := range rules {
		v, _ := data[string(r.Key)].(string)
		if r.Transform != "" {
			fn, ok := naming.Lookup(r.Transform)
			if !ok {
				return nil, fmt.Errorf("rename %s: unknown transform %q", r.Token, r.Transform)
			}
			v = fn(v)
		}
		pairs = append(pairs, r.Token, v)
	}
	return strings.NewReplacer(pairs...).Replace, nil
}

// finish runs install, git init and lint fixes. Failures are reported but
// do not fail the run.
func (g *Generator) finish(ctx context.Context, dir string, plan *compose.Plan, store *answers.Store, log *logger.Logger) {
	linter := store.String(answers.Linter)
	fp := finalize.Plan{
		Install:    plan.Variant.Install && !g.SkipInstall,
		PkgManager: store.String(answers.PkgManager),
		GitInit:    store.Truthy(answers.GitInit),
		LintFix:    linter != "" && linter != "none",
	}
	cmds := fp.Commands()
	if len(cmds) == 0 {
		return
	}
	runner := g.Commands
	if runner == nil {
		if err := finalize.Preflight(cmds); err != nil {
			ux.Warn(fmt.Sprintf("Skipping %s: %v", joinCommands(cmds), err))
			return
		}
		runner = finalize.ExecRunner{}
	}
	if err := finalize.Run(ctx, runner, dir, cmds, log); err != nil {
		ux.Warn(fmt.Sprintf("Finishing the project failed: %v", err))
	}
}

func joinCommands(cmds []finalize.Command) string {
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.String()
	}
	return strings.Join(slices.Compact(parts), ", ")
}
