package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"viper/src/codegen"
	"viper/src/il"
	"viper/src/il/verify"
	"viper/src/util"
	"viper/src/vm"
)

// main is the toolchain's single entry point, dispatching to the
// run/verify/print/repl subcommands via urfave/cli/v3, the same "one
// binary, several verbs" shape the example pack's wudi-hey module uses
// urfave/cli for, adapted from the teacher's flag-parsing
// util.ParseArgs/Options (src/util/args.go), which this CLI layer replaces
// rather than wraps: cli/v3 already owns flag parsing, help text, and
// subcommand dispatch, so duplicating util.ParseArgs' hand-rolled switch
// statement on top of it would just be two competing sources of truth for
// the same options.
func main() {
	cmd := &cli.Command{
		Name:  "vil",
		Usage: "Viper IL toolchain: verify, interpret, and disassemble IL modules",
		Commands: []*cli.Command{
			runCommand(),
			verifyCommand(),
			printCommand(),
			replCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vil: %s\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "verify and interpret an IL module",
		ArgsUsage: "<file.il>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-call-depth", Value: 4096, Usage: "call depth before StackOverflow traps"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := util.Default()
			opts.Src = cmd.Args().First()
			opts.MaxCallDepth = int(cmd.Int("max-call-depth"))
			if err := opts.Validate(); err != nil {
				return err
			}
			m, err := loadModule(opts.Src)
			if err != nil {
				return err
			}
			if res := verify.Module(m, opts.Threads); !res.OK() {
				return fmt.Errorf("module failed verification:\n%s", res.String())
			}
			runner := vm.NewRunner(m, vm.RunConfig{MaxCallDepth: opts.MaxCallDepth})
			result, err := runner.Run()
			if err != nil {
				if msg, ok := runner.LastTrapMessage(); ok {
					fmt.Fprintln(os.Stderr, msg)
				}
				return err
			}
			// Process exit code is @main's return value truncated to the
			// host's exit-code width.
			if code := int(result & 0xff); code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "run the IL verifier and report diagnostics",
		ArgsUsage: "<file.il>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "threads", Value: 1, Usage: "parallel per-function verification worker count"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := util.Default()
			opts.Src = cmd.Args().First()
			opts.Threads = int(cmd.Int("threads"))
			if err := opts.Validate(); err != nil {
				return err
			}
			m, err := loadModule(opts.Src)
			if err != nil {
				return err
			}
			res := verify.Module(m, opts.Threads)
			if !res.OK() {
				fmt.Println(res.String())
				return fmt.Errorf("%d diagnostic(s)", len(res.Diagnostics))
			}
			fmt.Println("module verified OK")
			return nil
		},
	}
}

func printCommand() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "parse an IL module and re-emit its canonical textual form",
		ArgsUsage: "<file.il>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Usage: "emit native assembly for a codegen target instead (aarch64, x86-64)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, err := loadModule(cmd.Args().First())
			if err != nil {
				return err
			}
			if name := cmd.String("target"); name != "" {
				target, ok := codegen.Targets[name]
				if !ok {
					return fmt.Errorf("unknown codegen target %q", name)
				}
				asm, err := target.EmitAssembly(m)
				if err != nil {
					return err
				}
				fmt.Print(asm)
				return nil
			}
			fmt.Print(m.String())
			return nil
		},
	}
}

// replCommand starts an interactive session that loads an IL module once
// and re-runs it against edits, grounded in the example pack's
// chzyer/readline usage for a line-editing front end, the same role a REPL
// plays for any of this pack's other interpreters.
func replCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "interactively load and re-run IL modules",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rl, err := readline.New("vil> ")
			if err != nil {
				return err
			}
			defer rl.Close()

			var current *il.Module
			for {
				line, err := rl.Readline()
				if err != nil {
					return nil
				}
				switch {
				case line == "":
					continue
				case line == ":quit" || line == ":q":
					return nil
				case hasPrefix(line, ":load "):
					m, err := loadModule(line[len(":load "):])
					if err != nil {
						fmt.Println(err)
						continue
					}
					current = m
					fmt.Println("loaded")
				case line == ":run":
					if current == nil {
						fmt.Println("no module loaded; use :load <file>")
						continue
					}
					runner := vm.NewRunner(current, vm.RunConfig{})
					result, err := runner.Run()
					if err != nil {
						fmt.Println(err)
						continue
					}
					fmt.Printf("%d\n", result)
				default:
					fmt.Println("commands: :load <file>, :run, :quit")
				}
			}
		},
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func loadModule(path string) (*il.Module, error) {
	if path == "" {
		return nil, fmt.Errorf("missing <file.il> argument")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := il.Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}
