package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Mode selects which of the driver's subcommands ParseArgs resolved to (§6.3/§3 CLI SURFACE).
type Mode int

const (
	ModeRun Mode = iota
	ModeBuild
	ModeRepl
)

// Options carries every flag the driver understands through to the pipeline stages that need it.
type Options struct {
	Mode Mode

	Src string // Path to source file. Empty in ModeRepl.
	Out string // Path to output file (ModeBuild: executable; with -emit-llvm: textual IR destination, stdout if empty).

	Target string // Target triple override, e.g. "x86_64-pc-linux-gnu". Empty means host default.

	EmitLLVM bool // Print textual LLVM IR instead of executing/linking.
	Tokens   bool // Dump the token stream and exit.
	AST      bool // Dump the parsed AST and exit.
	Verbose  bool // Print tokens, AST and IR as they're produced.
}

const appVersion = "lcc 1.0"

// ParseArgs parses os.Args[1:] into an Options. The first non-flag argument is either a subcommand name
// (run/build/repl) or, if omitted, ModeRun is assumed and the argument is the source path.
func ParseArgs(args []string) (Options, error) {
	opt := Options{Mode: ModeRun}

	if len(args) == 0 {
		opt.Mode = ModeRepl
		return opt, nil
	}

	i := 0
	switch args[0] {
	case "run":
		opt.Mode = ModeRun
		i = 1
	case "build":
		opt.Mode = ModeBuild
		i = 1
	case "repl":
		opt.Mode = ModeRepl
		i = 1
	case "-h", "--help", "help":
		printHelp()
		os.Exit(0)
	case "--version", "version":
		fmt.Println(appVersion)
		os.Exit(0)
	}

	for ; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printHelp()
			os.Exit(0)
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag -o but no argument")
			}
			i++
			opt.Out = args[i]
		case "-target":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag -target but no argument")
			}
			i++
			opt.Target = args[i]
		case "-emit-llvm":
			opt.EmitLLVM = true
		case "-tokens":
			opt.Tokens = true
		case "-ast":
			opt.AST = true
		case "-v", "-verbose":
			opt.Verbose = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			if opt.Src != "" {
				return opt, fmt.Errorf("unexpected argument: %s (source already set to %s)", args[i], opt.Src)
			}
			opt.Src = args[i]
		}
	}

	if opt.Mode != ModeRepl && opt.Src == "" {
		return opt, fmt.Errorf("no source file given")
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "usage: lcc [run|build|repl] [flags] <file>")
	_, _ = fmt.Fprintln(w, "-o\tOutput path (build: executable, -emit-llvm: IR destination).")
	_, _ = fmt.Fprintln(w, "-target\tTarget triple override, e.g. x86_64-pc-linux-gnu.")
	_, _ = fmt.Fprintln(w, "-emit-llvm\tPrint textual LLVM IR instead of executing/linking.")
	_, _ = fmt.Fprintln(w, "-tokens\tDump the token stream and exit.")
	_, _ = fmt.Fprintln(w, "-ast\tDump the parsed AST and exit.")
	_, _ = fmt.Fprintln(w, "-v, -verbose\tPrint tokens, AST and IR as they are produced.")
	_, _ = fmt.Fprintln(w, "-h, --help\tPrint this help message and exit.")
	_ = w.Flush()
}
