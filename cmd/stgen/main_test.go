package main

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/prompt"
)

func TestChooseLanguage_HandsOffInput(t *testing.T) {
	term := prompt.NewTerminal(strings.NewReader("2\nMy App\n"), io.Discard)
	ctx := context.Background()

	lang, err := chooseLanguage(ctx, term)
	if err != nil {
		t.Fatal(err)
	}
	if lang != "java" {
		t.Fatalf("language = %q, want java", lang)
	}

	q := &config.Question{ID: answers.ApplicationName, Kind: config.KindInput, Message: "Name?"}
	v, err := term.Ask(ctx, q, answers.Value{})
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "My App" {
		t.Fatalf("next answer = %q, want %q", v.Str(), "My App")
	}
}

func TestChooseLanguage_RejectsUnknown(t *testing.T) {
	term := prompt.NewTerminal(strings.NewReader("ruby\nnode\n"), io.Discard)
	lang, err := chooseLanguage(context.Background(), term)
	if err != nil {
		t.Fatal(err)
	}
	if lang != "node" {
		t.Fatalf("language = %q, want node", lang)
	}
}
