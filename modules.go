// modules.go: the module loader (spec §4.5). Resolves a dotted import path
// to a `.lang` file, parses and evaluates it once, and caches the result —
// re-imports of the same resolved path reuse the cached Module value.
//
// SPEC_FULL addition: each load gets a ULID (github.com/oklog/ulid/v2),
// used only as a diagnostic identifier threaded through cycle-detection and
// failure messages, to make a bad import traceable without re-running.
package ember

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// emberPathEnv is the search-path environment variable consulted when a
// relative import isn't found in the directory of the file passed to
// RunFile or in the current directory (spec §4.5, mirroring the teacher's MSGPATH).
const emberPathEnv = "EMBERPATH"

// moduleCache maps a resolved absolute path to its loaded Module value, and
// tracks paths currently mid-load to catch import cycles.
type moduleCache struct {
	baseDir string
	loaded  map[string]Value
	loading map[string]ulid.ULID
}

func newModuleCache() *moduleCache {
	return &moduleCache{
		loaded:  make(map[string]Value),
		loading: make(map[string]ulid.ULID),
	}
}

func newLoadID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
}

// resolveImport implements spec §4.5's four steps: path resolution, cache
// lookup, load-and-cache on miss, and the two binding forms (`import x` vs
// `import x of ...`).
func (ev *evaluator) resolveImport(n *Node, env *Env) Result {
	relPath := strings.ReplaceAll(n.Name, ".", string(filepath.Separator)) + ".lang"
	absPath := resolveModulePath(ev.ip.modules.baseDir, relPath)

	mod, ok := ev.ip.modules.loaded[absPath]
	if !ok {
		mod = ev.loadModule(n, absPath)
		ev.ip.modules.loaded[absPath] = mod
	}

	if len(n.Children) == 0 {
		name := n.Op
		if name == "" {
			name = n.Name
		}
		env.Def(name, mod)
		return none(mod)
	}

	for _, item := range n.Children {
		v, ok := Value{}, false
		if mod.Tag == VModule {
			v, ok = mod.Mod.Env.GetLocal(item.Name)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, errors.Errorf("import %s: no such member '%s'", n.Name, item.Name))
			v = Null()
		}
		name := item.Op
		if name == "" {
			name = item.Name
		}
		env.Def(name, v)
	}
	return none(mod)
}

// resolveModulePath tries relPath in baseDir (the directory of the file
// passed to RunFile; nested imports use the same base, not the importing
// module's own directory), then the current working directory, then each
// root in EMBERPATH — the first
// existing file wins; otherwise it falls back to the baseDir-joined form so
// the subsequent read produces a clear "file not found" diagnostic (spec
// §4.5 "Resolve relative specs against importer dir -> CWD -> search path").
func resolveModulePath(baseDir, relPath string) string {
	var bases []string
	if baseDir != "" {
		bases = append(bases, baseDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		bases = append(bases, cwd)
	}
	for _, base := range bases {
		cand := filepath.Join(base, relPath)
		if fi, err := os.Stat(cand); err == nil && !fi.IsDir() {
			abs, _ := filepath.Abs(cand)
			return filepath.Clean(abs)
		}
	}
	if sp := os.Getenv(emberPathEnv); sp != "" {
		for _, root := range filepath.SplitList(sp) {
			if root == "" {
				continue
			}
			cand := filepath.Join(root, relPath)
			if fi, err := os.Stat(cand); err == nil && !fi.IsDir() {
				abs, _ := filepath.Abs(cand)
				return filepath.Clean(abs)
			}
		}
	}
	fallback := relPath
	if baseDir != "" {
		fallback = filepath.Join(baseDir, relPath)
	}
	abs, err := filepath.Abs(fallback)
	if err != nil {
		return fallback
	}
	return abs
}

// loadModule reads, parses, and evaluates absPath into a fresh module
// environment parented to the global environment (spec §4.5 step 3).
// Failures (missing file, parse error, runtime error, import cycle) are
// reported to stderr with a diagnostic load ID and yield a null module so
// the importing file can keep running (spec §4.5 "Failure modes").
func (ev *evaluator) loadModule(n *Node, absPath string) Value {
	loadID := newLoadID()

	if _, cycling := ev.ip.modules.loading[absPath]; cycling {
		fmt.Fprintln(os.Stderr, errors.Errorf("[load %s] import cycle on %s", loadID, absPath))
		return Null()
	}
	ev.ip.modules.loading[absPath] = loadID
	defer delete(ev.ip.modules.loading, absPath)

	data, err := os.ReadFile(absPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(err, "[load %s] reading module '%s'", loadID, n.Name))
		return Null()
	}
	src := string(data)

	prog, p := Parse(src)
	if perr := p.Err(); perr != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(WrapErrorWithName(perr, absPath, src), "[load %s]", loadID))
		return Null()
	}

	modEnv := NewEnv(ev.ip.global)
	res := ev.evalProgram(prog, modEnv)
	if res.Sig == SigError {
		fmt.Fprintln(os.Stderr, errors.Wrapf(WrapErrorWithName(res.Err, absPath, src), "[load %s]", loadID))
		return Null()
	}

	stem := strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	return ModuleValue(stem, modEnv, nil)
}
