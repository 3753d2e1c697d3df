package ux

import (
	"fmt"
	"io"
	"os"
)

// ANSI color helpers
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Cyan      = "\033[36m"
)

// Out receives all user-facing output.
var Out io.Writer = os.Stdout

func printf(format string, args ...any) {
	fmt.Fprintf(Out, format, args...)
}

// Welcome prints the greeting shown before the first question.
func Welcome(title string) {
	printf("\n  %sWelcome to the %s%s%sSmartThings%s%s generator!%s\n", Bold, Reset, Bold+Cyan, Underline, Reset, Bold, Reset)
	if title != "" {
		printf("  %s%s%s\n", Dim, title, Reset)
	}
	printf("\n")
}

// Info prints a progress note.
func Info(msg string) {
	printf("%s%s%s\n", Blue, msg, Reset)
}

// Warn prints a non-fatal problem.
func Warn(msg string) {
	printf("%s%s%s\n", Yellow, msg, Reset)
}

// Fail prints a failure the user can fix and retry.
func Fail(msg string) {
	printf("%s%s%s\n", Red, msg, Reset)
}

// Abort prints the banner shown when generation stops after prompting.
func Abort(msg string) {
	printf("\n%s%s✗ %s%s\n\n", Bold, Red, msg, Reset)
}

// FileCreated prints one line per written file.
func FileCreated(path string) {
	printf("   %screate%s %s\n", Green, Reset, path)
}

// Created prints the completion message. folder is shown when it differs
// from name.
func Created(name, folder string) {
	printf("\n")
	if folder == "" || folder == name {
		printf("Your app %s%s%s has been created.\n", Bold, name, Reset)
	} else {
		printf("Your app %s%s%s has been created in %s.\n", Bold, name, Reset, folder)
	}
	printf("\n")
}

// RegisterHint prints the command that confirms a registered app.
func RegisterHint(token, url string) {
	printf("\n%sRegister to confirm your app at any time:%s\n", Bold, Reset)
	printf("  curl -X PUT -H \"Authorization: Bearer %s\" %s%s%s%s\n\n", token, Bold, Underline, url, Reset)
}

// EditorHint prints how to open the project in Visual Studio Code.
func EditorHint(folder string) {
	printf("To start editing with Visual Studio Code, use the following commands:\n\n")
	printf("    %scode %s%s\n\n", Cyan, folder, Reset)
}
