package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/blueprint"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/finalize"
	"github.com/jorge-barreto/stgen/internal/prompt"
	"github.com/jorge-barreto/stgen/internal/registry"
	"github.com/jorge-barreto/stgen/internal/render"
	"github.com/jorge-barreto/stgen/internal/ux"
)

type mockRegistrar struct {
	app      *registry.App
	err      error
	requests []registry.AppRequest
}

func (m *mockRegistrar) CreateApp(ctx context.Context, req registry.AppRequest) (*registry.App, error) {
	m.requests = append(m.requests, req)
	return m.app, m.err
}

func (m *mockRegistrar) RegisterURL(appID string) string {
	return "https://api.example.com/apps/" + appID + "/register"
}

type mockCommands struct {
	calls []string
}

func (m *mockCommands) Run(ctx context.Context, dir, name string, args ...string) (finalize.CmdResult, error) {
	m.calls = append(m.calls, strings.Join(append([]string{name}, args...), " "))
	return finalize.CmdResult{}, nil
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ux.Out
	ux.Out = &buf
	t.Cleanup(func() { ux.Out = prev })
	return &buf
}

func load(t *testing.T, name string) *config.Generator {
	t.Helper()
	g, err := blueprint.Load(name)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func smartAppAnswers() map[answers.Key]answers.Value {
	return map[answers.Key]answers.Value{
		answers.Type:                     answers.String("app-smartapp"),
		answers.DisplayName:              answers.String("My Test App"),
		answers.Name:                     answers.String("my-test-app"),
		answers.Description:              answers.String("My test app description"),
		answers.SmartAppPermissions:      answers.List("r:devices:*", "x:devices:*"),
		answers.GenerateSmartAppFeatures: answers.Bool(false),
		answers.HostingProvider:          answers.String("express"),
		answers.WebhookTargetURL:         answers.String("https://example.com/hook"),
		answers.ContextStoreProvider:     answers.String("dynamodb"),
		answers.AwsAccessKeyID:           answers.String("bad-access-key"),
		answers.AwsSecretAccessKey:       answers.String("bad-secret-access-key"),
		answers.AwsRegion:                answers.String("us-east-2"),
		answers.CheckJavaScript:          answers.Bool(true),
		answers.Linter:                   answers.String("xo"),
		answers.Tester:                   answers.String("mocha"),
		answers.GitInit:                  answers.Bool(false),
		answers.PkgManager:               answers.String("npm"),
	}
}

func newGenerator(t *testing.T, def *config.Generator, m map[answers.Key]answers.Value) (*Generator, *mockCommands) {
	t.Helper()
	cmds := &mockCommands{}
	return &Generator{
		Def:         def,
		Templates:   blueprint.Templates(),
		Prompter:    &prompt.Canned{Answers: m},
		Dest:        t.TempDir(),
		SkipWelcome: true,
		Commands:    cmds,
	}, cmds
}

func readJSON(t *testing.T, path string) any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("%s: %v\n%s", path, err, data)
	}
	return v
}

func assertJSON(t *testing.T, path, want string) {
	t.Helper()
	var expected any
	if err := json.Unmarshal([]byte(want), &expected); err != nil {
		t.Fatal(err)
	}
	got := readJSON(t, path)
	if !reflect.DeepEqual(got, expected) {
		data, _ := os.ReadFile(path)
		t.Fatalf("%s mismatch:\n%s", path, data)
	}
}

func assertFiles(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f))); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
}

func assertNoFiles(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f))); err == nil {
			t.Errorf("unexpected %s", f)
		}
	}
}

const smartAppPackage = `{
  "name": "my-test-app",
  "displayName": "My Test App",
  "description": "My test app description",
  "version": "0.0.1",
  "main": "./app.js",
  "scripts": {"start": "node ./app.js", "lint": "xo", "lint:fix": "xo --fix"},
  "dependencies": {
    "@smartthings/smartapp": "^1.8.0",
    "dotenv": "^8.0.0",
    "express": "^4.17.1",
    "@smartthings/dynamodb-context-store": "^2.0.0"
  },
  "devDependencies": {"mocha": "^6.1.4", "chai": "^4.2.0", "xo": "^0.24.0"},
  "xo": {"semicolon": false, "space": 2, "rules": {"no-unused-vars": 1, "no-multi-assign": 1}}
}`

func TestRun_SmartApp(t *testing.T) {
	captureOutput(t)
	g, cmds := newGenerator(t, load(t, "node"), smartAppAnswers())

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Aborted || res.Unavailable {
		t.Fatalf("result = %+v", res)
	}
	if res.Dir != filepath.Join(g.Dest, "my-test-app") {
		t.Fatalf("dir = %q", res.Dir)
	}
	assertFiles(t, res.Dir,
		".vscode/extensions.json",
		".vscode/launch.json",
		"CHANGELOG.md",
		"README.md",
		"jsconfig.json",
		"package.json",
		".vscodeignore",
		"app.js",
		"locales/en.json",
	)
	assertNoFiles(t, res.Dir, ".gitignore", ".env", ".eslintrc.json")
	assertJSON(t, filepath.Join(res.Dir, "package.json"), smartAppPackage)
	assertJSON(t, filepath.Join(res.Dir, ".vscode", "extensions.json"), `{"recommendations": ["samverschueren.linter-xo"]}`)

	if !slices.Equal(cmds.calls, []string{"npm install", "npm run --silent lint:fix"}) {
		t.Fatalf("commands = %v", cmds.calls)
	}
	if !slices.Contains(res.Files, "package.json") {
		t.Fatalf("files = %v", res.Files)
	}
}

func TestRun_STSchema(t *testing.T) {
	captureOutput(t)
	g, _ := newGenerator(t, load(t, "node"), map[answers.Key]answers.Value{
		answers.Type:        answers.String("app-c2c-st-schema"),
		answers.DisplayName: answers.String("My Test ST Schema App"),
		answers.Name:        answers.String("my-test-st-schema-app"),
		answers.Description: answers.String("My test st-schema app description"),
		answers.Linter:      answers.String("xo"),
		answers.Tester:      answers.String("mocha"),
		answers.GitInit:     answers.Bool(false),
	})
	g.SkipInstall = true

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan.Root != "node/app-c2c-st-schema" {
		t.Fatalf("root = %q", res.Plan.Root)
	}
	assertFiles(t, res.Dir, "README.md", "package.json", "index.js")
	assertNoFiles(t, res.Dir, "app.js", ".vscode/extensions.json", "jsconfig.json")
	assertJSON(t, filepath.Join(res.Dir, "package.json"), `{
  "name": "my-test-st-schema-app",
  "displayName": "My Test ST Schema App",
  "description": "My test st-schema app description",
  "version": "0.0.1",
  "main": "./app.js",
  "scripts": {"lint": "xo", "lint:fix": "xo --fix"},
  "dependencies": {"body-parser": "^1.19.0", "express": "^4.17.1", "request": "^2.88.0"},
  "devDependencies": {"mocha": "^6.1.4", "chai": "^4.2.0", "xo": "^0.24.0"},
  "xo": {"semicolon": false, "space": 2, "rules": {"no-unused-vars": 1, "no-multi-assign": 1}}
}`)
}

func TestRun_RegistrationFailureWritesNothing(t *testing.T) {
	out := captureOutput(t)
	m := smartAppAnswers()
	m[answers.SmartThingsPat] = answers.String("bad-pat")
	g, cmds := newGenerator(t, load(t, "node"), m)
	reg := &mockRegistrar{err: errors.New("status 401")}
	g.NewRegistrar = func(token string) Registrar { return reg }

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("registration failure should not be an error: %v", err)
	}
	if !res.Aborted {
		t.Fatal("expected aborted result")
	}
	if len(reg.requests) != 1 {
		t.Fatalf("CreateApp calls = %d", len(reg.requests))
	}
	entries, err := os.ReadDir(g.Dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("dest should be empty, found %d entries", len(entries))
	}
	if len(cmds.calls) != 0 {
		t.Fatalf("commands = %v", cmds.calls)
	}
	if !strings.Contains(out.String(), abortMessage) {
		t.Fatalf("abort message missing:\n%s", out.String())
	}
}

func TestRun_DuplicateName(t *testing.T) {
	out := captureOutput(t)
	m := smartAppAnswers()
	m[answers.SmartThingsPat] = answers.String("pat")
	g, _ := newGenerator(t, load(t, "node"), m)
	g.NewRegistrar = func(string) Registrar {
		return &mockRegistrar{err: fmt.Errorf("%q: %w", "my-test-app", registry.ErrAppExists)}
	}

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Aborted {
		t.Fatal("expected aborted result")
	}
	if !strings.Contains(out.String(), "different, unique app name") {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestRun_RegistrationSuccess(t *testing.T) {
	out := captureOutput(t)
	m := smartAppAnswers()
	m[answers.SmartThingsPat] = answers.String("good-pat")
	g, _ := newGenerator(t, load(t, "node"), m)
	reg := &mockRegistrar{app: &registry.App{AppID: "app-123", OAuthClientID: "cid", OAuthClientSecret: "csecret"}}
	var token string
	g.NewRegistrar = func(tok string) Registrar {
		token = tok
		return reg
	}

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if token != "good-pat" {
		t.Fatalf("token = %q", token)
	}
	req := reg.requests[0]
	if req.Name != "my-test-app" || req.Lambda || req.TargetURL != "https://example.com/hook" {
		t.Fatalf("request = %+v", req)
	}
	if !slices.Equal(req.Classifications, []string{"AUTOMATION"}) || !slices.Equal(req.Scopes, []string{"r:devices:*", "x:devices:*"}) {
		t.Fatalf("request = %+v", req)
	}

	env, err := os.ReadFile(filepath.Join(res.Dir, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`ST_APP_ID="app-123"`,
		`OAUTH_CLIENT_ID="cid"`,
		`OAUTH_CLIENT_SECRET="csecret"`,
		`AWS_REGION="us-east-2"`,
	} {
		if !strings.Contains(string(env), want) {
			t.Errorf(".env missing %s:\n%s", want, env)
		}
	}
	if !strings.Contains(out.String(), "https://api.example.com/apps/app-123/register") {
		t.Fatalf("register hint missing:\n%s", out.String())
	}
}

func TestRun_Java(t *testing.T) {
	captureOutput(t)
	g, cmds := newGenerator(t, load(t, "java"), map[answers.Key]answers.Value{
		answers.ApplicationName:        answers.String("My Test App"),
		answers.ApplicationDescription: answers.String("My test app description"),
		answers.ClassNamePrefix:        answers.String("MyTestApp"),
		answers.BasePackageName:        answers.String("com.smartthings.mytestapp"),
		answers.FolderName:             answers.String("mytestapp"),
		answers.ClientID:               answers.String("my-client-id"),
		answers.ClientSecret:           answers.String("my-client-secret"),
		answers.SmartAppPermissions:    answers.List("r:devices:*", "x:devices:*"),
		answers.ContextStore:           answers.String("dynamodb"),
	})

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Dir != filepath.Join(g.Dest, "mytestapp") {
		t.Fatalf("dir = %q", res.Dir)
	}
	jbd := "src/main/java/com/smartthings/mytestapp"
	assertFiles(t, res.Dir,
		"build.gradle",
		"CHANGELOG.md",
		"README.md",
		".gitignore",
		jbd+"/MyTestAppConfiguration.java",
		jbd+"/handlers/MyTestAppEventHandler.java",
		"src/main/resources/application.yml",
	)
	body, err := os.ReadFile(filepath.Join(res.Dir, filepath.FromSlash(jbd), "handlers", "MyTestAppConfigurationHandler.java"))
	if err != nil {
		t.Fatal(err)
	}
	for _, perm := range []string{`.addPermissionsItem("r:devices:*")`, `.addPermissionsItem("x:devices:*")`} {
		if !strings.Contains(string(body), perm) {
			t.Errorf("configuration handler missing %s", perm)
		}
	}
	if !slices.Equal(cmds.calls, []string{"git init --quiet"}) {
		t.Fatalf("commands = %v", cmds.calls)
	}
}

func TestRun_UnavailableVariant(t *testing.T) {
	out := captureOutput(t)
	def := load(t, "node")
	q := def.Question(answers.Type)
	for i := range q.Choices {
		q.Choices[i].Disabled = ""
	}
	g, _ := newGenerator(t, def, map[answers.Key]answers.Value{
		answers.Type:        answers.String("app-api-only"),
		answers.DisplayName: answers.String("My App"),
	})

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Unavailable || res.Dir != "" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(out.String(), "not yet available") {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestRun_DestinationExists(t *testing.T) {
	captureOutput(t)
	m := smartAppAnswers()
	m[answers.SmartThingsPat] = answers.String("pat")
	g, cmds := newGenerator(t, load(t, "node"), m)
	reg := &mockRegistrar{app: &registry.App{AppID: "app-123"}}
	g.NewRegistrar = func(string) Registrar { return reg }
	if err := os.Mkdir(filepath.Join(g.Dest, "my-test-app"), 0755); err != nil {
		t.Fatal(err)
	}
	_, err := g.Run(context.Background())
	if !errors.Is(err, render.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if len(reg.requests) != 0 {
		t.Fatalf("CreateApp called %d times for a taken destination", len(reg.requests))
	}
	if len(cmds.calls) != 0 {
		t.Fatalf("commands = %v", cmds.calls)
	}
	entries, err := os.ReadDir(g.Dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("dest should hold only the existing folder, found %d entries", len(entries))
	}
}

func TestRun_Cancelled(t *testing.T) {
	captureOutput(t)
	g, _ := newGenerator(t, load(t, "node"), smartAppAnswers())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	entries, _ := os.ReadDir(g.Dest)
	if len(entries) != 0 {
		t.Fatal("cancelled run wrote files")
	}
}

func TestTemplateData_HasEveryQuestion(t *testing.T) {
	def := load(t, "node")
	g := &Generator{Def: def}
	s := answers.New()
	s.Set(answers.Name, answers.String("x"))
	data := g.templateData(s, nil)
	for _, q := range def.Questions {
		if _, ok := data[string(q.ID)]; !ok {
			t.Errorf("missing %s", q.ID)
		}
	}
	if data["name"] != "x" || data["appId"] != "" {
		t.Fatalf("data = %v", data)
	}
	if data["generateSmartAppFeatures"] != false {
		t.Fatalf("confirm zero = %v", data["generateSmartAppFeatures"])
	}
}
