// Package module implements the native-extension and script module
// loader: a single registration-returns-module contract (resolving the
// duplicate-loader Open Question, see DESIGN.md), a path search order of
// cwd, then VELLUM_PATH, then an install prefix, and a load cache keyed by
// the import path as written, including any "@version" suffix (§4.8).
package module

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/mod/semver"

	"vellum/internal/compiler"
	"vellum/internal/errors"
	"vellum/internal/lexer"
	"vellum/internal/object"
	"vellum/internal/parser"
	"vellum/internal/vm"
)

// Native is the registration contract every extension module satisfies:
// called once per process with a fresh object.Module to populate, exactly
// paralleling how a script module's top-level statements populate their
// own Module via the compiler/vm pipeline.
type Native func(m *object.Module)

// Loader resolves import paths to modules, running script modules on the
// owning VM and caching both kinds by import path as written.
type Loader struct {
	vm       *vm.VM
	searchPath []string
	cache    map[string]*object.Module
	natives  map[string]Native
}

const pathEnvVar = "VELLUM_PATH"
const legacyPathEnvVar = "KS_PATH"

func NewLoader(v *vm.VM, installPrefix string) *Loader {
	l := &Loader{
		vm:      v,
		cache:   map[string]*object.Module{},
		natives: map[string]Native{},
	}
	if cwd, err := os.Getwd(); err == nil {
		l.searchPath = append(l.searchPath, cwd)
	}
	p := os.Getenv(pathEnvVar)
	if p == "" {
		p = os.Getenv(legacyPathEnvVar)
	}
	if p != "" {
		l.searchPath = append(l.searchPath, filepath.SplitList(p)...)
	}
	if installPrefix != "" {
		l.searchPath = append(l.searchPath, installPrefix)
	}
	return l
}

// RegisterNative installs an extension module under name, available to
// `import name` without touching the filesystem search path.
func (l *Loader) RegisterNative(name string, fn Native) {
	l.natives[name] = fn
}

// Import is wired as a vm.Importer via VM.SetImporter. An import path may
// carry an "@version" suffix (e.g. "geo@v1.2.0"); the requested version is
// compared against the loaded module's own __version__ attribute with
// golang.org/x/mod/semver rather than a hand-rolled dotted-tuple compare.
func (l *Loader) Import(path string) (*object.Module, *errors.LangError) {
	importName, wantVersion := splitVersion(path)

	if m, ok := l.cache[path]; ok {
		return m, nil
	}
	if fn, ok := l.natives[importName]; ok {
		m := object.NewModule(importName)
		fn(m)
		if lerr := checkVersion(m, wantVersion); lerr != nil {
			return nil, lerr
		}
		l.cache[path] = m
		return m, nil
	}

	file, lerr := l.resolve(importName)
	if lerr != nil {
		return nil, lerr
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(errors.KindImportError, err, "reading module %q", path)
	}

	toks := lexer.NewWithFile(string(src), file).ScanTokens()
	p := parser.NewWithSource(toks, string(src), file)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		return nil, errors.New(errors.KindSyntaxError, "%s: %v", file, p.Errors[0])
	}

	modName := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	chunk := compiler.Compile(stmts, modName, file)

	m, runErr := l.vm.RunModule(chunk, modName)
	if runErr != nil {
		return nil, runErr
	}
	if lerr := checkVersion(m, wantVersion); lerr != nil {
		return nil, lerr
	}
	l.cache[path] = m
	return m, nil
}

// CachedImportPaths returns the import paths currently in the module
// cache, sorted, for the `-vvv` diagnostic dump of which modules a script
// pulled in. golang.org/x/exp/maps gives a
// snapshot of the key set without exposing the live cache map itself.
func (l *Loader) CachedImportPaths() []string {
	keys := maps.Keys(l.cache)
	sort.Strings(keys)
	return keys
}

func (l *Loader) resolve(path string) (string, *errors.LangError) {
	candidates := []string{path}
	if !strings.HasSuffix(path, ".vel") {
		candidates = append(candidates, path+".vel")
	}
	for _, dir := range l.searchPath {
		for _, c := range candidates {
			full := filepath.Join(dir, c)
			if _, err := os.Stat(full); err == nil {
				return full, nil
			}
		}
	}
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.KindImportError, "module %q not found", path)
}

// splitVersion separates an optional "@version" suffix off an import path.
// The version need not be a canonical semver string (callers may write
// "@1.2.0"); a leading "v" is added if missing since golang.org/x/mod/semver
// requires it.
func splitVersion(path string) (string, string) {
	at := strings.LastIndex(path, "@")
	if at < 0 {
		return path, ""
	}
	v := path[at+1:]
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return path[:at], v
}

// checkVersion compares want, when one was requested, against m's
// __version__ attribute with golang.org/x/mod/semver, rather than a
// hand-rolled dotted-tuple comparison; a requested version against a
// module with no __version__ is an ImportError.
func checkVersion(m *object.Module, want string) *errors.LangError {
	if want == "" {
		return nil
	}
	got, ok := m.Get("__version__")
	if !ok {
		return errors.New(errors.KindImportError, "module %q has no __version__ to compare against %s", m.Name, want)
	}
	gotStr, ok := got.(*object.String)
	if !ok {
		return errors.New(errors.KindImportError, "module %q __version__ is not a string", m.Name)
	}
	have := gotStr.String()
	if !strings.HasPrefix(have, "v") {
		have = "v" + have
	}
	if !semver.IsValid(have) || !semver.IsValid(want) {
		return errors.New(errors.KindImportError, "module %q version %q is not valid semver for comparison with %s", m.Name, have, want)
	}
	if semver.Compare(have, want) < 0 {
		return errors.New(errors.KindImportError, "module %q version %s does not satisfy requested %s", m.Name, have, want)
	}
	return nil
}
