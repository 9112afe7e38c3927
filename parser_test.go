package ember

import "testing"

func parseOK(t *testing.T, src string) *Node {
	t.Helper()
	prog, p := Parse(src)
	if err := p.Err(); err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return prog
}

func firstStmt(t *testing.T, prog *Node) *Node {
	t.Helper()
	if len(prog.Children) == 0 {
		t.Fatalf("program has no statements")
	}
	return prog.Children[0]
}

func TestParseTupleVsGroupedExpr(t *testing.T) {
	prog := parseOK(t, "(1)")
	stmt := firstStmt(t, prog)
	if stmt.Kind == KTuple {
		t.Fatalf("a single parenthesized expression must not become a tuple, got %+v", stmt)
	}
	if stmt.Kind != KIntLit || stmt.IntVal != 1 {
		t.Fatalf("expected grouped int literal 1, got %+v", stmt)
	}
}

func TestParseTupleWithTopLevelComma(t *testing.T) {
	prog := parseOK(t, "(1, 2)")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KTuple {
		t.Fatalf("expected a tuple for (1, 2), got kind %v", stmt.Kind)
	}
	if len(stmt.Children) != 2 {
		t.Fatalf("expected 2 tuple elements, got %d", len(stmt.Children))
	}
}

func TestParseNamedTupleElement(t *testing.T) {
	prog := parseOK(t, "(r: 7, s: 8)")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KTuple || len(stmt.Children) != 2 {
		t.Fatalf("expected 2-element named tuple, got %+v", stmt)
	}
	if stmt.Children[0].Name != "r" || stmt.Children[1].Name != "s" {
		t.Fatalf("expected names r,s on tuple elements, got %+v %+v", stmt.Children[0], stmt.Children[1])
	}
}

func TestParseVarDecl(t *testing.T) {
	prog := parseOK(t, "var x = 1")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KVarDecl {
		t.Fatalf("expected KVarDecl, got %v", stmt.Kind)
	}
	if stmt.Name != "x" {
		t.Fatalf("expected name x, got %q", stmt.Name)
	}
	if stmt.Init == nil || stmt.Init.Kind != KIntLit {
		t.Fatalf("expected initializer 1, got %+v", stmt.Init)
	}
}

func TestParseFnDeclWithNamedReturn(t *testing.T) {
	prog := parseOK(t, "fn sq(x:i32):(r:i32) { r = x * x }")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KFnDecl {
		t.Fatalf("expected KFnDecl, got %v", stmt.Kind)
	}
	if stmt.Name != "sq" {
		t.Fatalf("expected name sq, got %q", stmt.Name)
	}
	if stmt.TypeAnn == nil || stmt.TypeAnn.Kind != KTypeAnn || len(stmt.TypeAnn.Children) != 1 {
		t.Fatalf("expected named-return tuple type annotation, got %+v", stmt.TypeAnn)
	}
	if stmt.TypeAnn.Children[0].Name != "r" {
		t.Fatalf("expected named return slot 'r', got %+v", stmt.TypeAnn.Children[0])
	}
	if stmt.Body == nil || stmt.Body.Kind != KScope {
		t.Fatalf("expected scope body, got %+v", stmt.Body)
	}
}

func TestParseCustomOperatorFnDecl(t *testing.T) {
	prog := parseOK(t, `fn "+"(a:Point, b:Point):(r:Point) { r = a }`)
	stmt := firstStmt(t, prog)
	if stmt.Kind != KFnDecl {
		t.Fatalf("expected KFnDecl, got %v", stmt.Kind)
	}
	if stmt.Op != "+" {
		t.Fatalf("expected custom operator '+' recorded on Op, got %q", stmt.Op)
	}
}

func TestParseSwitchDefaultCase(t *testing.T) {
	prog := parseOK(t, `switch (1) { case 0: { yield "even" } break; default: { yield "odd" } break }`)
	stmt := firstStmt(t, prog)
	if stmt.Kind != KSwitch {
		t.Fatalf("expected KSwitch, got %v", stmt.Kind)
	}
	if len(stmt.Children) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(stmt.Children))
	}
	if stmt.Children[0].Cond == nil {
		t.Fatalf("expected first case to carry an explicit condition")
	}
	if stmt.Children[1].Cond != nil {
		t.Fatalf("expected default case to have a nil condition, got %+v", stmt.Children[1].Cond)
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parseOK(t, "for (i : items) { yield i }")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KFor {
		t.Fatalf("expected KFor, got %v", stmt.Kind)
	}
	if stmt.Name != "i" {
		t.Fatalf("expected loop var name i, got %q", stmt.Name)
	}
	if stmt.Init == nil || stmt.Init.Kind != KIdent || stmt.Init.Name != "items" {
		t.Fatalf("expected range expr 'items', got %+v", stmt.Init)
	}
}

func TestParseMultiAssign(t *testing.T) {
	prog := parseOK(t, "(a, b) = (1, 2)")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KMultiAssign {
		t.Fatalf("expected KMultiAssign for tuple-target assignment, got %v", stmt.Kind)
	}
}

func TestParseTemplateInstantiationBacktracks(t *testing.T) {
	prog := parseOK(t, "var x = Box<i32>(1)\nvar y = a < b")
	if len(prog.Children) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Children))
	}
	second := prog.Children[1]
	if second.Kind != KVarDecl || second.Init == nil || second.Init.Kind != KBinOp {
		t.Fatalf("expected 'a < b' to parse as a plain comparison after template-inst backtracking, got %+v", second.Init)
	}
}

func TestParseImportWithOfItems(t *testing.T) {
	prog := parseOK(t, "import math.geometry of { area, Point as P }")
	stmt := firstStmt(t, prog)
	if stmt.Kind != KImportDecl {
		t.Fatalf("expected KImportDecl, got %v", stmt.Kind)
	}
	if stmt.Name != "math.geometry" {
		t.Fatalf("expected dotted module path, got %q", stmt.Name)
	}
	if len(stmt.Children) != 2 {
		t.Fatalf("expected 2 import items, got %d", len(stmt.Children))
	}
	if stmt.Children[1].Name != "Point" || stmt.Children[1].Op != "P" {
		t.Fatalf("expected aliased import item Point as P, got %+v", stmt.Children[1])
	}
}
