package ember

import (
	"os"
	"path/filepath"
	"testing"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatalf("writing test module: %v", err)
	}
}

func TestImportBareBindsModuleUnderName(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "geometry.lang", "var answer = 42")

	ip := NewInterpreter()
	src := "import geometry\ngeometry.answer"
	v, err := runFileSrc(t, ip, dir, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Tag != VInt || v.I != 42 {
		t.Fatalf("expected geometry.answer == 42, got %+v", v)
	}
}

func TestImportOfItemsBindsUnderAlias(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "geometry.lang", "var area = 10\nvar perimeter = 20")

	ip := NewInterpreter()
	src := "import geometry of { area as a }\na"
	v, err := runFileSrc(t, ip, dir, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Tag != VInt || v.I != 10 {
		t.Fatalf("expected aliased import 'a' == 10, got %+v", v)
	}
}

func TestImportIsCachedAcrossRepeatedImports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "counter.lang", "var n = 1")

	ip := NewInterpreter()
	src := "import counter\nimport counter\ncounter.n"
	v, err := runFileSrc(t, ip, dir, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Tag != VInt || v.I != 1 {
		t.Fatalf("expected repeated import of the same module to reuse the cached value, got %+v", v)
	}
}

func TestImportMissingModuleYieldsNullNotFatal(t *testing.T) {
	dir := t.TempDir()
	ip := NewInterpreter()
	src := "import nosuchmodule\n1 + 1"
	v, err := runFileSrc(t, ip, dir, src)
	if err != nil {
		t.Fatalf("a missing module must not abort the importing program, got error: %v", err)
	}
	if v.Tag != VInt || v.I != 2 {
		t.Fatalf("expected program to keep running after a failed import, got %+v", v)
	}
}

func TestImportCycleIsDetectedNotInfinite(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.lang", "import b\nvar x = 1")
	writeModule(t, dir, "b.lang", "import a\nvar y = 2")

	ip := NewInterpreter()
	src := "import a\na.x"
	v, err := runFileSrc(t, ip, dir, src)
	if err != nil {
		t.Fatalf("a cyclic import must be detected and reported, not bubbled up as a fatal error: %v", err)
	}
	if v.Tag != VInt || v.I != 1 {
		t.Fatalf("expected the importing module to still finish evaluating past the cycle, got %+v", v)
	}
}

// runFileSrc runs src as though it were a file inside dir, so relative
// imports resolve against dir the way RunFile's caller would set it up.
func runFileSrc(t *testing.T, ip *Interpreter, dir, src string) (Value, error) {
	t.Helper()
	path := filepath.Join(dir, "main.lang")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing entry source: %v", err)
	}
	return ip.RunFile(path)
}
