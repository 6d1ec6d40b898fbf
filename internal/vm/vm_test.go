package vm

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"vellum/internal/compiler"
	"vellum/internal/lexer"
	"vellum/internal/parser"
)

// run lexes, parses, and compiles src, then executes it on a fresh VM and
// returns its stdout. Mirrors the teacher's own "compile a tiny program and
// check the result" style (vm_test.go), adapted to the source-level
// pipeline this VM actually exposes rather than hand-assembled bytecode.
func run(t *testing.T, src string) string {
	t.Helper()

	toks := lexer.New(src).ScanTokens()
	p := parser.New(toks)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse error: %v", p.Errors[0])
	}
	chunk := compiler.Compile(stmts, "<test>", "<test>")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	oldStdout := os.Stdout
	os.Stdout = w

	machine := New()
	_, runErr := machine.Run(chunk)

	w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if runErr != nil {
		t.Fatalf("runtime error: %s", runErr.Render(0))
	}
	return buf.String()
}

// TestEndToEndScenarios covers the literal input/output scenarios
// enumerated as testable properties, plus method-surface, error-kind,
// complex-number and spawn/join cases.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic precedence", `print(1 + 2 * 3)`, "7\n"},
		{"list push", `a = [1,2,3]
a.push(4)
print(a)`, "[1, 2, 3, 4]\n"},
		{"dict index assign", `d = {"a": 1}
d["b"] = 2
print(d["a"] + d["b"])`, "3\n"},
		{"for over range", `for i in range(3) print(i)`, "0\n1\n2\n"},
		{"try/catch", `try { throw Error("boom") } catch e { print(e.what) }`, "boom\n"},
		{"string concat in loop", `s = ""
for c in "abc" s = s + c
print(s)`, "abc\n"},
		{"list pop", `a = [1,2,3]
print(a.pop())
print(a)`, "3\n[1, 2]\n"},
		{"dict method surface", `d = {}
d.set("x", 1)
print(d.get("x"))
print(d.get("y", -1))`, "1\n-1\n"},
		{"set method surface", `s = set()
s.add(1)
s.add(1)
print(s.has(1))
s.remove(1)
print(s.has(1))`, "true\nfalse\n"},
		{"taxonomy error kind", `try { throw KeyError("missing") } catch e { print(e.what) }`, "missing\n"},
		{"complex pseudo-attributes", `c = complex(1, 2)
print(c.real)
print(c.imag)`, "1\n2\n"},
		{"complex equality", `print(complex(1, 2) == complex(1, 2))
print(complex(1, 0) == 1)`, "true\ntrue\n"},
		{"spawn and join", `result = []
fn worker() { result.push(1) }
t = spawn(worker)
t.join()
print(result)`, "[1]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := run(t, tc.src)
			if got != tc.want {
				t.Errorf("output = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBooleanShortCircuit(t *testing.T) {
	got := run(t, `
state = {"called": false}
fn sideEffect() {
    state["called"] = true
    return true
}
x = false && sideEffect()
print(state["called"])
`)
	if strings.TrimSpace(got) != "false" {
		t.Errorf("short-circuit && evaluated its right side; got %q", got)
	}
}

func TestIntegerOverflowPromotesToBigInt(t *testing.T) {
	got := run(t, `print(9223372036854775807 + 1)`)
	want := "9223372036854775808\n"
	if got != want {
		t.Errorf("overflow result = %q, want %q", got, want)
	}
}

func TestPowZeroExponent(t *testing.T) {
	got := run(t, `print(0 ** 0)
print(5 ** 0)`)
	if got != "1\n1\n" {
		t.Errorf("x ** 0 = %q, want 1 for every base", got)
	}
}

func TestEmptyContainerIndexRaises(t *testing.T) {
	toks := lexer.New(`a = []
print(a[0])`).ScanTokens()
	p := parser.New(toks)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse error: %v", p.Errors[0])
	}
	chunk := compiler.Compile(stmts, "<test>", "<test>")
	machine := New()
	_, runErr := machine.Run(chunk)
	if runErr == nil {
		t.Fatal("expected an error indexing an empty list")
	}
}
