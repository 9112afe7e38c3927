package ember

import "testing"

func mustRun(t *testing.T, src string) Value {
	t.Helper()
	v, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error running %q: %v", src, err)
	}
	return v
}

func TestArithmeticAndPrint(t *testing.T) {
	v := mustRun(t, "var a = 3\nvar b = 4\na*a + b - 2")
	if v.Tag != VInt || v.I != 17 {
		t.Fatalf("expected 3*3+4-2 == 17, got %+v", v)
	}
}

func TestNamedReturnFunctionCollection(t *testing.T) {
	v := mustRun(t, `
fn sq(x:i32):(r:i32) { r = x * x }
sq(7).r
`)
	if v.Tag != VInt || v.I != 49 {
		t.Fatalf("expected sq(7).r == 49, got %+v", v)
	}
}

func TestExplicitReturnBypassesNamedReturnCollection(t *testing.T) {
	v := mustRun(t, `
fn f(x:i32):(r:i32) { return x + 1 }
f(9)
`)
	if v.Tag != VInt || v.I != 10 {
		t.Fatalf("expected explicit return to bypass the named-return tuple, got %+v", v)
	}
}

func TestPatternInstantiationAndFieldAccess(t *testing.T) {
	v := mustRun(t, `
pat Point {
  var x
  var y
}
var p = Point(3, 4)
p.x + p.y
`)
	if v.Tag != VInt || v.I != 7 {
		t.Fatalf("expected Point(3,4).x + .y == 7, got %+v", v)
	}
}

func TestSwitchWithDefaultYield(t *testing.T) {
	v := mustRun(t, `
var n = 7
var s = switch (n % 2) {
  case 0: { yield "even" } break
  default: { yield "odd" } break
}
s
`)
	if v.Tag != VString || v.Str != "odd" {
		t.Fatalf("expected switch default case to yield 'odd', got %+v", v)
	}
}

func TestSmartNewlineInsideParens(t *testing.T) {
	v := mustRun(t, "var total = (\n  1 +\n  2 +\n  3\n)\ntotal")
	if v.Tag != VInt || v.I != 6 {
		t.Fatalf("expected newline-suppressed paren expr to sum to 6, got %+v", v)
	}
}

func TestForLoopYieldAccumulates(t *testing.T) {
	v := mustRun(t, `
var total = 0
for (i : 5) {
  total = total + i
  yield total
}
`)
	if v.Tag != VInt || v.I != 10 {
		t.Fatalf("expected accumulated yield of sum 0..4 == 10, got %+v", v)
	}
}

func TestForLoopPlainFallThroughDoesNotOverwriteAccumulator(t *testing.T) {
	v := mustRun(t, `
for (i : 3) {
  yield i
  i + 100
}
`)
	if v.Tag != VInt || v.I != 2 {
		t.Fatalf("expected last yield (2) to remain the accumulator despite a later plain fall-through statement, got %+v", v)
	}
}

func TestForLoopBreakStopsWithAccumulator(t *testing.T) {
	v := mustRun(t, `
for (i : 10) {
  i == 3 ? break : null
  yield i
}
`)
	if v.Tag != VInt || v.I != 2 {
		t.Fatalf("expected break at i==3 to leave accumulator at last yield 2, got %+v", v)
	}
}

func TestCustomOperatorOverload(t *testing.T) {
	v := mustRun(t, `
pat Point {
  var x
  var y
}
fn "+"(a:Point, b:Point):(r:Point) { r = Point(a.x + b.x, a.y + b.y) }
var p = Point(1, 2) + Point(3, 4)
p.r.x + p.r.y
`)
	if v.Tag != VInt || v.I != 10 {
		t.Fatalf("expected custom '+' overload to sum fields to 10, got %+v", v)
	}
}

func TestCopyDoesNotAliasTupleMutation(t *testing.T) {
	v := mustRun(t, `
var a = (1, 2)
var b = copy a
b[0] = 99
a[0]
`)
	if v.Tag != VInt || v.I != 1 {
		t.Fatalf("expected copy to isolate mutation, got %+v", v)
	}
}

func TestMoveTakesOwnershipOfIdentifier(t *testing.T) {
	v := mustRun(t, `
var a = "hi"
var b = move a
a
`)
	if v.Tag != VNull {
		t.Fatalf("expected source identifier to be null after move, got %+v", v)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, "var z = 0\n10 / z")
	if err == nil {
		t.Fatalf("expected a runtime error for division by zero")
	}
}

func TestUndefinedBaseInPatDeclIsRuntimeError(t *testing.T) {
	_, err := run(t, "pat A : NoSuchBase { var x }")
	if err == nil {
		t.Fatalf("expected a runtime error referencing an undefined base pattern")
	}
}

func TestTupleNegativeIndexWraps(t *testing.T) {
	v := mustRun(t, "var t = (10, 20, 30)\nt[-1]")
	if v.Tag != VInt || v.I != 30 {
		t.Fatalf("expected t[-1] == 30, got %+v", v)
	}
}
