package ember

import "testing"

func TestEnvDefAndGetLocal(t *testing.T) {
	e := NewEnv(nil)
	e.Def("x", Int(1))
	v, ok := e.GetLocal("x")
	if !ok || v.I != 1 {
		t.Fatalf("expected local x=1, got %+v ok=%v", v, ok)
	}
}

func TestEnvGetLocalDoesNotSeeParent(t *testing.T) {
	parent := NewEnv(nil)
	parent.Def("x", Int(1))
	child := NewEnv(parent)
	if _, ok := child.GetLocal("x"); ok {
		t.Fatalf("GetLocal must not see bindings in the parent frame")
	}
	if _, ok := child.Get("x"); !ok {
		t.Fatalf("Get must walk the parent chain")
	}
}

func TestEnvSetFindsNearestEnclosingFrame(t *testing.T) {
	parent := NewEnv(nil)
	parent.Def("x", Int(1))
	child := NewEnv(parent)
	child.Set("x", Int(2))

	if _, ok := child.GetLocal("x"); ok {
		t.Fatalf("Set should update the parent's binding, not shadow it locally")
	}
	v, _ := parent.GetLocal("x")
	if v.I != 2 {
		t.Fatalf("expected parent x updated to 2, got %d", v.I)
	}
}

func TestEnvSetDefinesLocallyWhenUnbound(t *testing.T) {
	e := NewEnv(nil)
	e.Set("y", Int(9))
	v, ok := e.GetLocal("y")
	if !ok || v.I != 9 {
		t.Fatalf("expected Set to define y locally when unbound anywhere, got %+v ok=%v", v, ok)
	}
}

func TestEnvGetMissReturnsNullFalse(t *testing.T) {
	e := NewEnv(nil)
	v, ok := e.Get("nope")
	if ok {
		t.Fatalf("expected miss for undefined name")
	}
	if v.Tag != VNull {
		t.Fatalf("expected Null() on miss, got %+v", v)
	}
}

func TestEnvChainRefcounting(t *testing.T) {
	parent := NewEnv(nil)
	if parent.rc.n != 1 {
		t.Fatalf("expected fresh env refcount 1, got %d", parent.rc.n)
	}
	child := NewEnv(parent)
	if parent.rc.n != 2 {
		t.Fatalf("expected parent refcount 2 after child creation, got %d", parent.rc.n)
	}
	child.release()
	if parent.rc.n != 1 {
		t.Fatalf("expected parent refcount back to 1 after child release, got %d", parent.rc.n)
	}
}
