package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/stgen/internal/answers"
	"github.com/jorge-barreto/stgen/internal/blueprint"
	"github.com/jorge-barreto/stgen/internal/config"
	"github.com/jorge-barreto/stgen/internal/docs"
	"github.com/jorge-barreto/stgen/internal/generator"
	"github.com/jorge-barreto/stgen/internal/logger"
	"github.com/jorge-barreto/stgen/internal/prompt"
	"github.com/jorge-barreto/stgen/internal/ux"
)

func main() {
	app := &cli.Command{
		Name:        "stgen",
		Usage:       "Create SmartThings SmartApp and ST Schema projects",
		Description: "Run 'stgen docs' for documentation on app types, answers files, and more.",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ux.Welcome("")
			name, err := chooseLanguage(ctx, stdinTerminal())
			if err != nil {
				return err
			}
			return runGenerator(ctx, cmd, name, nil, true)
		},
		Commands: []*cli.Command{
			nodeCmd(),
			javaCmd(),
			checkCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "answers", Usage: "Read answers from a YAML file instead of prompting"},
		&cli.StringFlag{Name: "dest", Value: ".", Usage: "Directory to create the project folder in"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log diagnostics to stderr"},
	}
}

func nodeFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{Name: "app-type", Usage: "smartapp, c2c-st-schema, c2c-smartapp or api-only"},
		&cli.StringFlag{Name: "app-display-name", Usage: "Display name of the app"},
		&cli.StringFlag{Name: "app-name", Usage: "Identifier of the app"},
		&cli.StringFlag{Name: "app-description", Usage: "Description of the app"},
		&cli.BoolFlag{Name: "skip-welcome", Usage: "Do not print the welcome message"},
		&cli.BoolFlag{Name: "skip-install", Usage: "Do not install dependencies"},
	)
}

func nodeCmd() *cli.Command {
	return &cli.Command{
		Name:  "node",
		Usage: "Create a NodeJS SmartApp or ST Schema connector",
		Flags: nodeFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			options := make(map[string]string)
			for _, name := range []string{"app-type", "app-display-name", "app-name", "app-description"} {
				if v := cmd.String(name); v != "" {
					options[name] = v
				}
			}
			return runGenerator(ctx, cmd, "node", options, cmd.Bool("skip-welcome"))
		},
	}
}

func javaCmd() *cli.Command {
	return &cli.Command{
		Name:  "java",
		Usage: "Create a Java Spring Boot SmartApp",
		Flags: append(commonFlags(),
			&cli.BoolFlag{Name: "skip-welcome", Usage: "Do not print the welcome message"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runGenerator(ctx, cmd, "java", nil, cmd.Bool("skip-welcome"))
		},
	}
}

// stdinTerminal is the single prompter reading os.Stdin. The language
// chooser and the generator share it so no input is lost between them.
var stdinTerminal = sync.OnceValue(func() *prompt.Terminal {
	return prompt.NewTerminal(os.Stdin, os.Stdout)
})

func chooseLanguage(ctx context.Context, p prompt.Prompter) (string, error) {
	q := &config.Question{
		ID:      "language",
		Kind:    config.KindList,
		Message: "Which language do you want to use?",
		Choices: []config.Choice{
			{Name: "NodeJS", Value: "node"},
			{Name: "Java", Value: "java"},
		},
	}
	for {
		v, err := p.Ask(ctx, q, answers.String("node"))
		if err != nil {
			return "", err
		}
		if _, ok := q.Choice(v.Str()); ok {
			return v.Str(), nil
		}
		p.Reject(q, fmt.Sprintf("%q is not one of the choices", v.Str()))
	}
}

func runGenerator(ctx context.Context, cmd *cli.Command, name string, options map[string]string, skipWelcome bool) error {
	log, err := logger.New(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync()

	def, err := blueprint.Load(name)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	env, err := config.LoadEnv(cwd)
	if err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	overrides := make(map[answers.Key]answers.Value)
	var p prompt.Prompter = stdinTerminal()
	if path := cmd.String("answers"); path != "" {
		overrides, err = config.LoadAnswers(path, def)
		if err != nil {
			return err
		}
		p = prompt.NewCanned(nil)
	}
	if env.Token != "" && def.Question(answers.SmartThingsPat) != nil {
		if _, ok := overrides[answers.SmartThingsPat]; !ok {
			overrides[answers.SmartThingsPat] = answers.String(env.Token)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	g := &generator.Generator{
		Def:         def,
		Templates:   blueprint.Templates(),
		Prompter:    p,
		Overrides:   overrides,
		Options:     options,
		Dest:        cmd.String("dest"),
		SkipWelcome: skipWelcome,
		SkipInstall: cmd.Bool("skip-install"),
		APIURL:      env.APIURL,
		Log:         log,
	}
	_, err = g.Run(ctx)
	return err
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate generator definition files",
		ArgsUsage: "<definition.yaml>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				for _, name := range blueprint.Names() {
					if _, err := blueprint.Load(name); err != nil {
						return err
					}
					fmt.Printf("%s✓%s %s (built-in)\n", ux.Green, ux.Reset, name)
				}
				return nil
			}
			for _, path := range cmd.Args().Slice() {
				g, err := config.Load(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Printf("%s✓%s %s: %d questions, %d variants\n", ux.Green, ux.Reset, path, len(g.Questions), len(g.Variants))
			}
			return nil
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'stgen docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}
