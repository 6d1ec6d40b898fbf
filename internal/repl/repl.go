// Package repl implements the interactive read-eval-print loop: each
// line is lexed, parsed, and compiled into a fresh chunk run against a
// persistent VM instance, so top-level bindings from one line are visible
// to the next (§6).
package repl

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"vellum/internal/compiler"
	"vellum/internal/iostream"
	"vellum/internal/lexer"
	"vellum/internal/module"
	"vellum/internal/object"
	"vellum/internal/parser"
	"vellum/internal/vm"
)

const Version = "0.1.0"

// Start runs the loop against stdin/stdout. The prompt is suppressed when
// stdin isn't a terminal, so piped scripts read one statement at a time
// without noise (§4.11: go-isatty gates TTY-only behavior).
func Start(installPrefix string) {
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	if interactive {
		fmt.Printf("vellum %s | Ctrl-D to exit\n", Version)
	}

	machine := vm.New()
	loader := module.NewLoader(machine, installPrefix)
	module.RegisterBuiltinExtensions(loader)
	machine.SetImporter(loader.Import)

	machine.Globals.SetStr("__argv__", object.NewList(nil))
	machine.Globals.SetStr("__globals__", machine.Globals)
	machine.Globals.SetStr("__stdin__", iostream.Stdin)
	machine.Globals.SetStr("__stdout__", iostream.Stdout)
	machine.Globals.SetStr("__stderr__", iostream.Stderr)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print(">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		toks := lexer.New(line).ScanTokens()
		p := parser.New(toks)
		stmts := p.Parse()
		if len(p.Errors) > 0 {
			fmt.Fprintln(os.Stderr, p.Errors[0])
			continue
		}

		chunk := compiler.Compile(stmts, "<repl>", "<repl>")
		result, err := machine.Run(chunk)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Render(0))
			continue
		}
		if interactive && result != nil {
			fmt.Println(object.Repr(result))
		}
	}
	if interactive {
		fmt.Println()
	}
}
