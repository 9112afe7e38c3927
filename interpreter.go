// interpreter.go: the public API surface of the ember core.
//
// PUBLIC API
// ----------
//   - NewInterpreter() *Interpreter — a fresh interpreter whose global
//     environment holds only the core type names (i32, f64, string, ...).
//     Callers wire in a built-in registry themselves
//     (see Registry, below) — the core never imports one itself.
//   - (*Interpreter).Global() *Env — the root environment built-ins and
//     module imports bind into.
//   - (*Interpreter).Run(src, name string) (Value, error) — tokenize, parse,
//     and evaluate src as a top-level program against Global().
//   - (*Interpreter).RunFile(path string) (Value, error) — read, resolve
//     `.lang` modules relative to path's directory, and Run.
//
// This mirrors the teacher's own public/private split (a thin exported type
// delegating to unexported machinery) so the evaluator's recursive walk
// (eval.go) and the module loader (modules.go) stay free to change shape
// without touching this file's contract.
package ember

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Version is the CLI-reported version string (spec §6 `-v`/`--version`).
const Version = "0.1.0"

// Registry is the external built-in-function collaborator's contract (spec
// §1, §6): anything that can install named callables into a global
// environment. The concrete implementation lives in package builtins; the
// core never imports it.
type Registry interface {
	Install(global *Env)
}

// Interpreter owns a global environment and the module cache backing
// `import` resolution.
type Interpreter struct {
	global  *Env
	modules *moduleCache
}

// NewInterpreter creates an interpreter with a fresh global environment
// holding only the core type names, and an empty module cache.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		global:  NewEnv(nil),
		modules: newModuleCache(),
	}
	installCoreTypes(ip.global)
	return ip
}

// coreTypeNames are the scalar type names usable as TypeAnn names and, via
// this binding, as direct conversion calls (e.g. `i32(x)`) — spec §4.3's
// "Call: Type" dispatch needs them resolvable from an identifier.
var coreTypeNames = []string{
	"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "bool", "string",
}

func installCoreTypes(global *Env) {
	for _, name := range coreTypeNames {
		global.Def(name, TypeValue(name, nil))
	}
}

// Global returns the root environment.
func (ip *Interpreter) Global() *Env { return ip.global }

// Use installs a built-in Registry's callables into the global environment.
func (ip *Interpreter) Use(reg Registry) { reg.Install(ip.global) }

// Run parses and evaluates src as a top-level program. name is used only
// for diagnostics (the header of error snippets).
func (ip *Interpreter) Run(src, name string) (Value, error) {
	prog, p := Parse(src)
	if err := p.Err(); err != nil {
		return Null(), errors.WithMessage(WrapErrorWithName(err, name, src), "parse failed")
	}
	ev := newEvaluator(ip)
	res := ev.evalProgram(prog, ip.global)
	if res.Sig == SigError {
		return Null(), errors.WithMessage(WrapErrorWithName(res.Err, name, src), "evaluation failed")
	}
	return res.Val, nil
}

// RunFile reads path and Runs it, registering its directory as the base for
// relative module resolution (spec §4.5, §6).
func (ip *Interpreter) RunFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null(), errors.Wrapf(err, "reading %s", path)
	}
	ip.modules.baseDir = filepath.Dir(path)
	return ip.Run(string(data), filepath.Base(path))
}
