// value.go: the tagged runtime Value, reference-counted per spec §3's
// ownership model. Go's garbage collector is what actually reclaims memory;
// the refcount here exists to preserve the original's ownership contract
// (acquire/release pairs, PatDef/Env lifetime tied to a count) so the
// evaluator's lifecycle invariants and the testable property
// "refcount_after(release(acquire(V))) == refcount_before(V)" (spec §8)
// hold the same way they do in the C source this was distilled from.
package ember

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueTag is the kind discriminator of a Value.
type ValueTag int

const (
	VNull ValueTag = iota
	VInt
	VFloat
	VBool
	VString
	VTuple
	VVariant
	VFunction
	VBuiltinFn
	VPatternInstance
	VScope
	VModule
	VType
	VOptional
)

// rc is a shared, heap-allocated refcount. Every composite Value payload
// (string, tuple, function, pattern instance, scope, module, optional)
// carries a *rc so that copies of a Value (Go structs passed by value)
// still observe and mutate the same logical reference count.
type rc struct{ n int }

func newRC() *rc { return &rc{n: 1} }

// Tuple is the payload of a VTuple value: an ordered sequence plus an
// optional parallel name array (spec §3 invariant: either no names, or
// exactly len(Elems) names, individually possibly empty).
type Tuple struct {
	Elems []Value
	Names []string // nil, or len(Elems)
}

// Variant is the payload of a VVariant value: a tag plus one payload value.
type Variant struct {
	Tag string
	Val Value
}

// Function is the payload of a VFunction value: the declaring AST node,
// the closure environment it captured, and a display name.
type Function struct {
	Decl    *Node
	Closure *Env
	Name    string
}

// NativeFn is the shape every built-in callable must satisfy. Defined here
// (not in a builtins package) so the evaluator depends only on this
// interface, never on a concrete registry — the external-collaborator
// boundary from spec §1/§6.
type NativeFn func(args []Value) (Value, error)

// Builtin is the payload of a VBuiltinFn value.
type Builtin struct {
	Fn   NativeFn
	Name string
}

// PatDef is the shared descriptor of a pattern (spec §3): name, ordered
// field names, an optional method environment, and the bases it was
// declared with (SPEC_FULL §3/§4.3 base-field-merge resolution).
type PatDef struct {
	Name       string
	FieldNames []string
	Methods    *Env
	Bases      []*PatDef
	rc         *rc
}

func newPatDef(name string) *PatDef {
	return &PatDef{Name: name, rc: newRC()}
}

// FieldCount is the total field count including merged base fields.
func (p *PatDef) FieldCount() int { return len(p.FieldNames) }

// lookupMethod resolves a method name on this pattern, falling back to
// bases depth-first in declaration order (SPEC_FULL §4.3).
func (p *PatDef) lookupMethod(name string) (Value, bool) {
	if p.Methods != nil {
		if v, ok := p.Methods.GetLocal(name); ok {
			return v, true
		}
	}
	for _, base := range p.Bases {
		if v, ok := base.lookupMethod(name); ok {
			return v, true
		}
	}
	return Value{}, false
}

// PatternInstance is the payload of a VPatternInstance value.
type PatternInstance struct {
	Def    *PatDef
	Fields []Value
}

// Module is the payload of a VModule value: a name, the environment that
// resulted from evaluating it, and — when the module is really a pattern's
// constructor surface — the PatDef it constructs.
type Module struct {
	Name string
	Env  *Env
	Pat  *PatDef
}

// TypeVal is the payload of a VType value.
type TypeVal struct {
	Name string
	Pat  *PatDef
}

// Optional is the payload of a VOptional value.
type Optional struct {
	Val     Value
	Present bool
}

// Value is the tagged runtime value. Null and the inline scalars
// (Int/Float/Bool) carry no heap payload; everything else carries a *rc
// shared across copies.
type Value struct {
	Tag ValueTag
	rc  *rc

	I   int64
	F   float64
	B   bool
	Str string

	Tup     *Tuple
	Var     *Variant
	Fn      *Function
	Builtin *Builtin
	PatInst *PatternInstance
	ScopeEnv *Env
	Mod     *Module
	TypeV   *TypeVal
	Opt     *Optional
}

func Null() Value               { return Value{Tag: VNull} }
func Int(i int64) Value         { return Value{Tag: VInt, I: i} }
func Float(f float64) Value     { return Value{Tag: VFloat, F: f} }
func Bool(b bool) Value         { return Value{Tag: VBool, B: b} }
func String(s string) Value     { return Value{Tag: VString, Str: s, rc: newRC()} }

func TupleValue(elems []Value, names []string) Value {
	return Value{Tag: VTuple, rc: newRC(), Tup: &Tuple{Elems: elems, Names: names}}
}

func VariantValue(tag string, v Value) Value {
	return Value{Tag: VVariant, rc: newRC(), Var: &Variant{Tag: tag, Val: v}}
}

func FunctionValue(decl *Node, closure *Env, name string) Value {
	closure.acquire()
	return Value{Tag: VFunction, rc: newRC(), Fn: &Function{Decl: decl, Closure: closure, Name: name}}
}

func BuiltinValue(name string, fn NativeFn) Value {
	return Value{Tag: VBuiltinFn, rc: newRC(), Builtin: &Builtin{Fn: fn, Name: name}}
}

func PatternInstanceValue(def *PatDef, fields []Value) Value {
	def.rc.n++
	return Value{Tag: VPatternInstance, rc: newRC(), PatInst: &PatternInstance{Def: def, Fields: fields}}
}

func ScopeValue(env *Env) Value {
	env.acquire()
	return Value{Tag: VScope, rc: newRC(), ScopeEnv: env}
}

func ModuleValue(name string, env *Env, pat *PatDef) Value {
	env.acquire()
	if pat != nil {
		pat.rc.n++
	}
	return Value{Tag: VModule, rc: newRC(), Mod: &Module{Name: name, Env: env, Pat: pat}}
}

func TypeValue(name string, pat *PatDef) Value {
	return Value{Tag: VType, rc: newRC(), TypeV: &TypeVal{Name: name, Pat: pat}}
}

func OptionalValue(v Value, present bool) Value {
	return Value{Tag: VOptional, rc: newRC(), Opt: &Optional{Val: v, Present: present}}
}

// Acquire bumps the value's refcount (a no-op for inline scalars) and
// returns the same value, mirroring the C original's value_incref.
func Acquire(v Value) Value {
	if v.rc != nil {
		v.rc.n++
	}
	return v
}

// Release drops the value's refcount; at zero it recursively releases
// owned sub-values. Go's GC reclaims the actual memory — this only
// maintains the ownership-count invariant spec §8 requires.
func Release(v Value) {
	if v.rc == nil {
		return
	}
	v.rc.n--
	if v.rc.n > 0 {
		return
	}
	switch v.Tag {
	case VTuple:
		for _, e := range v.Tup.Elems {
			Release(e)
		}
	case VVariant:
		Release(v.Var.Val)
	case VFunction:
		v.Fn.Closure.release()
	case VPatternInstance:
		for _, f := range v.PatInst.Fields {
			Release(f)
		}
		v.PatInst.Def.rc.n--
	case VScope:
		v.ScopeEnv.release()
	case VModule:
		v.Mod.Env.release()
		if v.Mod.Pat != nil {
			v.Mod.Pat.rc.n--
		}
	case VOptional:
		if v.Opt.Present {
			Release(v.Opt.Val)
		}
	}
}

// Copy performs the `copy` unary operator's semantics (spec §4.3): deep
// copy for primitives (a no-op distinction since they're inline), shallow
// copy with a refcount bump for composite values.
func Copy(v Value) Value {
	switch v.Tag {
	case VString:
		return String(v.Str)
	case VTuple:
		elems := make([]Value, len(v.Tup.Elems))
		for i, e := range v.Tup.Elems {
			elems[i] = Acquire(e)
		}
		var names []string
		if v.Tup.Names != nil {
			names = append([]string(nil), v.Tup.Names...)
		}
		return TupleValue(elems, names)
	default:
		return Acquire(v)
	}
}

// IsTruthy implements spec §4.3 truthiness: null/0/0.0/false/empty string
// are false; Optional is truthy iff present; everything else is true.
func IsTruthy(v Value) bool {
	switch v.Tag {
	case VNull:
		return false
	case VInt:
		return v.I != 0
	case VFloat:
		return v.F != 0
	case VBool:
		return v.B
	case VString:
		return v.Str != ""
	case VOptional:
		return v.Opt.Present
	default:
		return true
	}
}

// ValuesEqual implements spec §4.3 `==`/`!=` semantics.
func ValuesEqual(a, b Value) bool {
	if a.Tag == VNull && b.Tag == VNull {
		return true
	}
	if (a.Tag == VInt || a.Tag == VFloat) && (b.Tag == VInt || b.Tag == VFloat) {
		return numericValue(a) == numericValue(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VBool:
		return a.B == b.B
	case VString:
		return a.Str == b.Str
	case VTuple:
		if len(a.Tup.Elems) != len(b.Tup.Elems) {
			return false
		}
		for i := range a.Tup.Elems {
			if !ValuesEqual(a.Tup.Elems[i], b.Tup.Elems[i]) {
				return false
			}
		}
		return true
	case VVariant:
		return a.Var.Tag == b.Var.Tag && ValuesEqual(a.Var.Val, b.Var.Val)
	case VPatternInstance:
		return a.PatInst == b.PatInst
	default:
		return false
	}
}

func numericValue(v Value) float64 {
	if v.Tag == VInt {
		return float64(v.I)
	}
	return v.F
}

// String forms (spec §6 `string()` conversion and print formatting).
func (v Value) String() string {
	switch v.Tag {
	case VNull:
		return "null"
	case VInt:
		return strconv.FormatInt(v.I, 10)
	case VFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case VBool:
		if v.B {
			return "true"
		}
		return "false"
	case VString:
		return v.Str
	case VTuple:
		parts := make([]string, len(v.Tup.Elems))
		for i, e := range v.Tup.Elems {
			if v.Tup.Names != nil && v.Tup.Names[i] != "" {
				parts[i] = v.Tup.Names[i] + ": " + e.String()
			} else {
				parts[i] = e.String()
			}
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case VVariant:
		return v.Var.Tag + "(" + v.Var.Val.String() + ")"
	case VFunction:
		return "<fn " + v.Fn.Name + ">"
	case VBuiltinFn:
		return "<builtin " + v.Builtin.Name + ">"
	case VPatternInstance:
		parts := make([]string, len(v.PatInst.Fields))
		for i, f := range v.PatInst.Fields {
			name := ""
			if i < len(v.PatInst.Def.FieldNames) {
				name = v.PatInst.Def.FieldNames[i]
			}
			parts[i] = fmt.Sprintf("%s: %s", name, f.String())
		}
		return v.PatInst.Def.Name + "{" + strings.Join(parts, ", ") + "}"
	case VScope:
		return "<scope>"
	case VModule:
		return "<module " + v.Mod.Name + ">"
	case VType:
		return "<type " + v.TypeV.Name + ">"
	case VOptional:
		if v.Opt.Present {
			return v.Opt.Val.String()
		}
		return "null"
	default:
		return "<unknown>"
	}
}

// TypeName returns the built-in type_of() name for a value (spec §6).
func (v Value) TypeName() string {
	switch v.Tag {
	case VNull:
		return "null"
	case VInt:
		return "int"
	case VFloat:
		return "float"
	case VBool:
		return "bool"
	case VString:
		return "string"
	case VTuple:
		return "tuple"
	case VVariant:
		return "variant"
	case VFunction:
		return "function"
	case VBuiltinFn:
		return "builtin"
	case VPatternInstance:
		return v.PatInst.Def.Name
	case VScope:
		return "scope"
	case VModule:
		return "module"
	case VType:
		return "type"
	case VOptional:
		return "optional"
	default:
		return "unknown"
	}
}
