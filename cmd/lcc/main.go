// Command lcc is the L compiler driver: flag parsing, the run/build/repl subcommands, and the -tokens/-ast/-v
// diagnostic dumps (§4 CLI SURFACE). Grounded on the teacher's src/main.go: read source, lex/parse, resolve,
// lower, then dispatch on the requested output.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"lcc/src/frontend"
	"lcc/src/ir"
	"lcc/src/ir/llvm"
	"lcc/src/resolve"
	"lcc/src/util"
)

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opt.Mode == util.ModeRepl {
		repl(opt)
		return
	}

	src, err := util.ReadSource(opt.Src)
	if err != nil {
		fail(err)
	}

	if opt.Tokens {
		dumpTokens(src)
		return
	}

	prog, err := compile(src, opt.Verbose)
	if err != nil {
		fail(err)
	}
	if err := resolve.Validate(prog); err != nil {
		fail(err)
	}

	if opt.AST {
		prog.Print(0)
		return
	}

	lw := llvm.NewLowerer(moduleName(opt.Src), opt.Verbose)
	if err := lw.Lower(prog); err != nil {
		fail(err)
	}

	if opt.EmitLLVM {
		emitIR(lw, opt.Out)
		lw.Dispose()
		return
	}

	switch opt.Mode {
	case util.ModeRun:
		// RunMain hands module ownership to the JIT execution engine; Dispose must not be called afterward.
		code, err := lw.RunMain()
		if err != nil {
			fail(err)
		}
		os.Exit(code)
	case util.ModeBuild:
		err := build(lw, opt)
		lw.Dispose()
		if err != nil {
			fail(err)
		}
	}
}

// compile runs the lex/parse/resolve stages shared by every subcommand (§4.1-§4.2). It deliberately stops
// short of resolve.Validate's "main must exist" rule (§4.5): the repl subcommand lowers one function
// declaration per line, most of which are not named main, so that rule is only enforced by run/build, not here.
func compile(src string, verbose bool) (*ir.Node, error) {
	if verbose {
		toks, err := frontend.TokenStream(src)
		if err == nil {
			fmt.Println("tokens:", strings.Join(toks, " "))
		}
	}
	prog, err := frontend.Parse(src)
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Println("AST:")
		prog.Print(0)
	}
	if err := resolve.Resolve(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

func dumpTokens(src string) {
	toks, err := frontend.TokenStream(src)
	if err != nil {
		fail(err)
	}
	fmt.Println(strings.Join(toks, " "))
}

func emitIR(lw *llvm.Lowerer, out string) {
	text := lw.String()
	if out == "" {
		fmt.Println(text)
		return
	}
	if err := os.WriteFile(out, []byte(text+"\n"), 0o644); err != nil {
		fail(err)
	}
}

// build implements the `build` subcommand (§4 CLI SURFACE): emit an object file, then shell out to the system
// C toolchain to link it against the runtime helper object into an executable at -o.
func build(lw *llvm.Lowerer, opt util.Options) error {
	objBytes, err := lw.EmitObject(opt.Target)
	if err != nil {
		return util.Wrapf(util.CodegenError, err, "emitting object code")
	}
	objPath := opt.Out + ".o"
	if err := llvm.WriteObject(objBytes, objPath); err != nil {
		return util.Wrapf(util.CodegenError, err, "writing object file")
	}
	defer os.Remove(objPath)

	out := opt.Out
	if out == "" {
		out = "a.out"
	}
	cc := findCC()
	args := []string{objPath, "-o", out}
	runtimeObj := os.Getenv("LCC_RUNTIME_OBJ")
	if runtimeObj != "" {
		args = append([]string{runtimeObj}, args...)
	}
	cmd := exec.Command(cc, args...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return util.Wrapf(util.CodegenError, err, "linking with %s", cc)
	}
	return nil
}

func findCC() string {
	for _, candidate := range []string{"cc", "clang", "gcc"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	return "cc"
}

// repl implements the REPL subcommand (§3 SUPPLEMENTED FEATURES): read one line at a time, each a complete
// function declaration (L has no top-level statements outside of fn bodies), and make declarations from
// earlier lines visible to later ones.
//
// A single Lowerer/JIT session kept alive across the whole loop doesn't fit tinygo.org/x/go-llvm's ownership
// model: RunMain hands its module over to the execution engine, so a module that has already run can't be
// appended to and run again. This follows the fallback the original cyclang REPL uses for the same reason —
// accumulate the source of every successful non-main declaration in persisted, and on each line recompile and
// relower persisted+line from scratch. main declarations are run but never added to persisted, so a later line
// can declare its own main without colliding with one already executed.
func repl(opt util.Options) {
	fmt.Println("lcc repl — enter a complete `fn` declaration per line, or a blank line to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	var persisted []string
	for {
		fmt.Print("lcc> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			return
		}

		src := strings.Join(append(persisted, line), "\n")
		prog, err := compile(src, opt.Verbose)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		lw := llvm.NewLowerer("repl", opt.Verbose)
		if err := lw.Lower(prog); err != nil {
			fmt.Fprintln(os.Stderr, err)
			lw.Dispose()
			continue
		}
		if !declaresMain(prog) {
			persisted = append(persisted, line)
			lw.Dispose()
			fmt.Println("ok")
			continue
		}
		code, err := lw.RunMain()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Printf("=> %d\n", code)
	}
}

// declaresMain reports whether any top-level function in prog is named main.
func declaresMain(prog *ir.Node) bool {
	for _, fn := range prog.Children {
		if fn.Data.(string) == "main" {
			return true
		}
	}
	return false
}

func moduleName(src string) string {
	if src == "" {
		return "repl"
	}
	return src
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
