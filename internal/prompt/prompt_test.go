package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
)

func typeQuestion() *config.Question {
	return &config.Question{
		ID:      answers.Type,
		Kind:    config.KindList,
		Message: "Choose an app type.",
		Choices: []config.Choice{
			{Name: "SmartApp", Value: "app-smartapp"},
			{Name: "API Access", Value: "app-api-only", Disabled: "coming soon"},
			{Name: "ST Schema", Value: "app-c2c-st-schema"},
		},
	}
}

func permissionsQuestion() *config.Question {
	return &config.Question{
		ID:      answers.SmartAppPermissions,
		Kind:    config.KindCheckbox,
		Message: "Permissions?",
		Choices: []config.Choice{
			{Name: "r:devices:*", Value: "r:devices:*"},
			{Name: "x:devices:*", Value: "x:devices:*"},
			{Name: "r:locations:*", Value: "r:locations:*"},
		},
	}
}

func ask(t *testing.T, input string, q *config.Question, def answers.Value) (answers.Value, string) {
	t.Helper()
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(input), &out)
	v, err := term.Ask(context.Background(), q, def)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	return v, out.String()
}

func TestTerminal_List(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   answers.Value
		want  string
	}{
		{"by number", "3\n", answers.Value{}, "app-c2c-st-schema"},
		{"by value", "app-smartapp\n", answers.Value{}, "app-smartapp"},
		{"empty takes default", "\n", answers.String("app-c2c-st-schema"), "app-c2c-st-schema"},
		{"empty without default takes first enabled", "\n", answers.Value{}, "app-smartapp"},
		{"out of range passes through", "9\n", answers.Value{}, "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := ask(t, tt.input, typeQuestion(), tt.def)
			if v.Str() != tt.want {
				t.Fatalf("got %q, want %q", v.Str(), tt.want)
			}
		})
	}
}

func TestTerminal_ListShowsDisabledReason(t *testing.T) {
	_, out := ask(t, "1\n", typeQuestion(), answers.Value{})
	if !strings.Contains(out, "API Access (coming soon)") {
		t.Fatalf("disabled reason not shown:\n%s", out)
	}
	if !strings.Contains(out, "Choose an app type.") {
		t.Fatalf("message not shown:\n%s", out)
	}
}

func TestTerminal_Checkbox(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   answers.Value
		want  []string
	}{
		{"numbers", "1,3\n", answers.Value{}, []string{"r:devices:*", "r:locations:*"}},
		{"mixed", "2 r:devices:*\n", answers.Value{}, []string{"x:devices:*", "r:devices:*"}},
		{"empty keeps default", "\n", answers.List("x:devices:*"), []string{"x:devices:*"}},
		{"empty without default", "\n", answers.Value{}, nil},
		{"none", "none\n", answers.List("x:devices:*"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := ask(t, tt.input, permissionsQuestion(), tt.def)
			if v.Kind() != answers.KindList {
				t.Fatalf("kind = %s", v.Kind())
			}
			got := v.List()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTerminal_Confirm(t *testing.T) {
	q := &config.Question{ID: answers.GitInit, Kind: config.KindConfirm, Message: "Init git?"}
	tests := []struct {
		input string
		def   answers.Value
		want  answers.Value
	}{
		{"y\n", answers.Value{}, answers.Bool(true)},
		{"No\n", answers.Bool(true), answers.Bool(false)},
		{"\n", answers.Bool(true), answers.Bool(true)},
		{"\n", answers.Value{}, answers.Bool(false)},
		{"maybe\n", answers.Value{}, answers.String("maybe")},
	}
	for _, tt := range tests {
		v, _ := ask(t, tt.input, q, tt.def)
		if !v.Equal(tt.want) {
			t.Fatalf("input %q: got %v, want %v", tt.input, v, tt.want)
		}
	}
}

func TestTerminal_TextDefaultAndSecret(t *testing.T) {
	q := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}
	v, out := ask(t, "\n", q, answers.String("my-app"))
	if v.Str() != "my-app" {
		t.Fatalf("got %q", v.Str())
	}
	if !strings.Contains(out, "(my-app)") {
		t.Fatalf("default not shown:\n%s", out)
	}

	secret := &config.Question{ID: answers.AwsSecretAccessKey, Kind: config.KindPassword, Message: "Secret?"}
	v, out = ask(t, "\n", secret, answers.String("hunter2"))
	if v.Str() != "hunter2" {
		t.Fatalf("got %q", v.Str())
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret default echoed:\n%s", out)
	}
}

func TestTerminal_ClosedInput(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), io.Discard)
	q := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}
	_, err := term.Ask(context.Background(), q, answers.Value{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestTerminal_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}
	_, err := term.Ask(ctx, q, answers.Value{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTerminal_SequentialQuestionsOnPipe(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lang := &config.Question{
		ID:      "language",
		Kind:    config.KindList,
		Message: "Which language?",
		Choices: []config.Choice{{Name: "NodeJS", Value: "node"}, {Name: "Java", Value: "java"}},
	}
	go pw.Write([]byte("2\n"))
	v, err := term.Ask(ctx, lang, answers.String("node"))
	if err != nil || v.Str() != "java" {
		t.Fatalf("language = %q, %v", v.Str(), err)
	}

	go pw.Write([]byte("My App\n"))
	name := &config.Question{ID: answers.DisplayName, Kind: config.KindInput, Message: "Display name?"}
	v, err = term.Ask(ctx, name, answers.Value{})
	if err != nil || v.Str() != "My App" {
		t.Fatalf("display name = %q, %v", v.Str(), err)
	}
}

func TestTerminal_BufferedInputSpansQuestions(t *testing.T) {
	term := NewTerminal(strings.NewReader("1\nMy App\n"), io.Discard)
	if v, err := term.Ask(context.Background(), typeQuestion(), answers.Value{}); err != nil || v.Str() != "app-smartapp" {
		t.Fatalf("type = %q, %v", v.Str(), err)
	}
	name := &config.Question{ID: answers.DisplayName, Kind: config.KindInput, Message: "Display name?"}
	if v, err := term.Ask(context.Background(), name, answers.Value{}); err != nil || v.Str() != "My App" {
		t.Fatalf("display name = %q, %v", v.Str(), err)
	}
}

func TestTerminal_ReadAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, io.Discard)
	q := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := term.Ask(ctx, q, answers.Value{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	go pw.Write([]byte("late\n"))
	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	v, err := term.Ask(ctx2, q, answers.Value{})
	if err != nil || v.Str() != "late" {
		t.Fatalf("got %q, %v", v.Str(), err)
	}
}

func TestTerminal_SecretReadWithoutEcho(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("visible\n"), &out)
	secretCalls := 0
	term.readSecret = func() (string, error) {
		secretCalls++
		return "pat-123", nil
	}

	pat := &config.Question{ID: answers.SmartThingsPat, Kind: config.KindPassword, Message: "Token?"}
	v, err := term.Ask(context.Background(), pat, answers.Value{})
	if err != nil || v.Str() != "pat-123" {
		t.Fatalf("token = %q, %v", v.Str(), err)
	}
	if secretCalls != 1 {
		t.Fatalf("readSecret called %d times", secretCalls)
	}
	if strings.Contains(out.String(), "pat-123") {
		t.Fatalf("secret echoed:\n%s", out.String())
	}

	name := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}
	v, err = term.Ask(context.Background(), name, answers.Value{})
	if err != nil || v.Str() != "visible" {
		t.Fatalf("name = %q, %v", v.Str(), err)
	}
}

func TestTerminal_NonTTYHasNoSecretReader(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), io.Discard)
	if term.readSecret != nil {
		t.Fatal("non-terminal input should read secrets as lines")
	}
}

func TestTerminal_Reject(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out)
	term.Reject(typeQuestion(), "This field is required.")
	if !strings.Contains(out.String(), "This field is required.") {
		t.Fatalf("got %q", out.String())
	}
}

func TestCanned(t *testing.T) {
	c := NewCanned(map[answers.Key]answers.Value{
		answers.Type: answers.String("app-smartapp"),
	})
	ctx := context.Background()

	v, err := c.Ask(ctx, typeQuestion(), answers.Value{})
	if err != nil || v.Str() != "app-smartapp" {
		t.Fatalf("got %v, %v", v, err)
	}

	v, err = c.Ask(ctx, permissionsQuestion(), answers.Value{})
	if err != nil || v.Kind() != answers.KindList || len(v.List()) != 0 {
		t.Fatalf("checkbox zero: got %v, %v", v, err)
	}

	name := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}
	v, err = c.Ask(ctx, name, answers.String("derived"))
	if err != nil || v.Str() != "derived" {
		t.Fatalf("default: got %v, %v", v, err)
	}

	asked := c.Asked()
	if len(asked) != 3 || asked[0] != answers.Type || asked[2] != answers.Name {
		t.Fatalf("asked = %v", asked)
	}
}

func TestCanned_Strict(t *testing.T) {
	c := &Canned{Strict: true}
	_, err := c.Ask(context.Background(), typeQuestion(), answers.String("app-smartapp"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCanned_RejectedTwice(t *testing.T) {
	q := &config.Question{ID: answers.Name, Kind: config.KindInput, Message: "Name?"}
	c := NewCanned(map[answers.Key]answers.Value{answers.Name: answers.String("bad app")})
	if _, err := c.Ask(context.Background(), q, answers.Value{}); err != nil {
		t.Fatal(err)
	}
	c.Reject(q, "Invalid app identifier")
	_, err := c.Ask(context.Background(), q, answers.Value{})
	if !errors.Is(err, ErrUnavailable) || !strings.Contains(err.Error(), "Invalid app identifier") {
		t.Fatalf("got %v", err)
	}
}

func TestZero(t *testing.T) {
	if v := Zero(typeQuestion()); v.Str() != "app-smartapp" {
		t.Fatalf("list zero = %v", v)
	}
	if v := Zero(&config.Question{Kind: config.KindConfirm}); !v.Equal(answers.Bool(false)) {
		t.Fatalf("confirm zero = %v", v)
	}
	if v := Zero(&config.Question{Kind: config.KindInput}); !v.Equal(answers.String("")) {
		t.Fatalf("input zero = %v", v)
	}
}
