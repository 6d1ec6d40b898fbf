// cmd/vellum is the interpreter's command-line front end: manual os.Args
// parsing in the style of cmd/sentra (no flag package), dispatching to the
// REPL, an inline -e expression, or a script file (§6).
package main

import (
	"fmt"
	"os"
	"strings"

	"vellum/internal/compiler"
	"vellum/internal/config"
	"vellum/internal/iostream"
	"vellum/internal/lexer"
	vlog "vellum/internal/log"
	"vellum/internal/memory"
	"vellum/internal/module"
	"vellum/internal/object"
	"vellum/internal/parser"
	"vellum/internal/repl"
	"vellum/internal/vm"
)

const version = "0.1.0"

func main() {
	cfg, scriptArgs, ok := parseArgs(os.Args[1:])
	if !ok {
		os.Exit(1)
	}
	vlog.SetLevel(cfg.Verbosity)

	switch {
	case cfg.ScriptPath == "" && !cfg.ExprMode:
		repl.Start(cfg.InstallPrefix)
	case cfg.ExprMode:
		os.Exit(runSource(cfg.Expr, "<expr>", cfg, scriptArgs))
	default:
		src, err := os.ReadFile(cfg.ScriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vellum: %v\n", err)
			os.Exit(1)
		}
		os.Exit(runSource(string(src), cfg.ScriptPath, cfg, scriptArgs))
	}
}

// parseArgs mirrors cmd/sentra's hand-rolled flag handling: no flag
// package, options recognized by exact string before the first positional
// argument, which (together with everything after it) becomes the script's
// own __argv__.
func parseArgs(args []string) (config.Config, []string, bool) {
	var cfg config.Config

	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-h" || a == "--help":
			printUsage()
			os.Exit(0)
		case a == "-V" || a == "--version":
			fmt.Printf("vellum %s\n", version)
			os.Exit(0)
		case a == "-e" || a == "--expr":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "vellum: -e requires an argument")
				return cfg, nil, false
			}
			cfg.ExprMode = true
			cfg.Expr = args[i+1]
			i++
		case a == "-":
			// interactive, explicit
		case strings.HasPrefix(a, "-v"):
			n := strings.Count(a, "v")
			if n == 0 || strings.Trim(a, "-v") != "" {
				fmt.Fprintf(os.Stderr, "vellum: unrecognized option %q\n", a)
				return cfg, nil, false
			}
			cfg.Verbosity += n
		case strings.HasPrefix(a, "-") && a != "-":
			fmt.Fprintf(os.Stderr, "vellum: unrecognized option %q\n", a)
			return cfg, nil, false
		default:
			cfg.ScriptPath = a
			goto positionals
		}
	}
positionals:
	cfg.Args = append(cfg.Args, args[i:]...)
	cfg.InstallPrefix = config.DefaultInstallPrefix()
	return cfg, cfg.Args, true
}

func printUsage() {
	fmt.Println(`usage: vellum [options] file [args...]
       vellum [options] -e 'expr' [args...]
       vellum -

options:
  -h, --help        print this message and exit
  -V, --version     print the version and exit
  -v, -vv, -vvv     increase log verbosity
  -e, --expr EXPR   execute EXPR as a script body`)
}

// runSource lexes, parses, compiles, and runs one top-level unit of source
// against a fresh VM, wiring the module loader and script globals exactly
// as spec.md §6 describes. Returns the process exit code.
func runSource(src, name string, cfg config.Config, scriptArgs []string) int {
	toks := lexer.NewWithFile(src, name).ScanTokens()
	p := parser.NewWithSource(toks, src, name)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		fmt.Fprintln(os.Stderr, p.Errors[0])
		return 1
	}

	machine := vm.New()
	loader := module.NewLoader(machine, cfg.InstallPrefix)
	module.RegisterBuiltinExtensions(loader)
	machine.SetImporter(loader.Import)
	installScriptGlobals(machine, scriptArgs, cfg.InstallPrefix)

	chunk := compiler.Compile(stmts, name, name)
	_, runErr := machine.Run(chunk)
	vlog.Tracef("modules loaded: %v\n", loader.CachedImportPaths())
	vlog.Tracef("%s\n", memory.Global.Stats().Report())
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Render(cfg.Verbosity))
		return 1
	}
	return 0
}

func installScriptGlobals(machine *vm.VM, scriptArgs []string, installPrefix string) {
	argv := make([]object.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		argv[i] = object.NewString(a)
	}
	machine.Globals.SetStr("__argv__", object.NewList(argv))

	path := config.ResolveSearchPath(nil, installPrefix)
	pathVals := make([]object.Value, len(path))
	for i, p := range path {
		pathVals[i] = object.NewString(p)
	}
	machine.Globals.SetStr("__path__", object.NewList(pathVals))

	machine.Globals.SetStr("__globals__", machine.Globals)
	machine.Globals.SetStr("__stdin__", iostream.Stdin)
	machine.Globals.SetStr("__stdout__", iostream.Stdout)
	machine.Globals.SetStr("__stderr__", iostream.Stderr)
}
