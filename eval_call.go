// eval_call.go: call dispatch — builtins, user functions (with the named-
// return-tuple collection rule), pattern construction, and type conversion
// (spec §4.3 "Call").
package ember

import (
	"strconv"
	"strings"
)

// evalCall evaluates the callee, then each argument left-to-right (spec §5
// ordering), and dispatches on the callee's runtime kind.
func (ev *evaluator) evalCall(n *Node, env *Env) Result {
	callee := ev.eval(n.Children[0], env)
	if callee.Sig != SigNone {
		return callee
	}
	args := make([]Value, 0, len(n.Children)-1)
	for _, argNode := range n.Children[1:] {
		r := ev.eval(argNode, env)
		if r.Sig != SigNone {
			return r
		}
		args = append(args, r.Val)
	}
	return ev.dispatchCall(n, callee.Val, args, env)
}

func (ev *evaluator) dispatchCall(n *Node, callee Value, args []Value, env *Env) Result {
	switch callee.Tag {
	case VBuiltinFn:
		v, err := callee.Builtin.Fn(args)
		if err != nil {
			return rtErr(n.Line, n.Col, "%s", err.Error())
		}
		return none(v)
	case VFunction:
		return ev.callFunction(callee.Fn, args)
	case VModule:
		if callee.Mod.Pat != nil {
			return none(instantiatePattern(callee.Mod.Pat, args))
		}
		return rtErr(n.Line, n.Col, "module '%s' is not a callable pattern constructor", callee.Mod.Name)
	case VType:
		v, err := convertToType(callee.TypeV.Name, args)
		if err != nil {
			return rtErr(n.Line, n.Col, "%s", err.Error())
		}
		return none(v)
	default:
		return rtErr(n.Line, n.Col, "not a callable value")
	}
}

// instantiatePattern allocates a pattern instance, filling fields
// positionally from args; missing fields become null (spec §4.3 "Module
// with PatDef").
func instantiatePattern(def *PatDef, args []Value) Value {
	fields := make([]Value, def.FieldCount())
	for i := range fields {
		if i < len(args) {
			fields[i] = args[i]
		} else {
			fields[i] = Null()
		}
	}
	return PatternInstanceValue(def, fields)
}

// callFunction runs a user function body in a fresh child environment of
// its closure, binding parameters positionally (missing ones fall back to a
// declared default, else null). SPEC_FULL resolution of Open Question (b):
// a declared return-tuple type pre-binds every named slot to null before the
// body runs; on implicit fall-through the tuple is rebuilt from those slots'
// final values, while an explicit `return expr` always bypasses this and
// hands back expr directly.
func (ev *evaluator) callFunction(fn *Function, args []Value) Result {
	funcEnv := NewEnv(fn.Closure)

	for i, param := range fn.Decl.Children {
		var v Value
		switch {
		case i < len(args):
			v = args[i]
		case param.Init != nil:
			r := ev.eval(param.Init, funcEnv)
			if r.Sig != SigNone {
				return r
			}
			v = r.Val
		default:
			v = Null()
		}
		if param.Op == "copy" {
			v = Copy(v)
		}
		funcEnv.Def(param.Name, v)
	}

	namedReturn := fn.Decl.TypeAnn != nil && fn.Decl.TypeAnn.Kind == KTypeAnn && len(fn.Decl.TypeAnn.Children) > 0
	if namedReturn {
		for _, slot := range fn.Decl.TypeAnn.Children {
			funcEnv.Def(slot.Name, Null())
		}
	}

	if fn.Decl.Body == nil {
		return none(Null())
	}

	r := ev.evalScopeIn(fn.Decl.Body, funcEnv)
	switch r.Sig {
	case SigReturn:
		return none(r.Val)
	case SigError:
		return r
	case SigBreak, SigYield:
		return rtErr(fn.Decl.Line, fn.Decl.Col, "%s escaped its enclosing loop or switch", signalName(r.Sig))
	}

	if namedReturn {
		elems := make([]Value, len(fn.Decl.TypeAnn.Children))
		names := make([]string, len(fn.Decl.TypeAnn.Children))
		for i, slot := range fn.Decl.TypeAnn.Children {
			v, _ := funcEnv.GetLocal(slot.Name)
			elems[i] = v
			names[i] = slot.Name
		}
		return none(TupleValue(elems, names))
	}
	return none(r.Val)
}

// evalScopeIn runs a function body's top-level statements directly in env
// (no extra frame) so pre-bound named-return slots and parameters share a
// frame with the body's own declarations; a nested `{...}` inside still gets
// its own child frame via the normal evalScope path.
func (ev *evaluator) evalScopeIn(body *Node, env *Env) Result {
	last := none(Null())
	for _, stmt := range body.Children {
		r := ev.eval(stmt, env)
		if r.Sig != SigNone {
			return r
		}
		last = r
	}
	return last
}

func signalName(s Signal) string {
	switch s {
	case SigBreak:
		return "break"
	case SigYield:
		return "yield"
	default:
		return "signal"
	}
}

// evalTemplateInst instantiates a template function (spec §4.2 `TemplateInst`,
// §9 "templates are parsed and stored but not monomorphized"). Since the
// core performs no static type checking, instantiation only needs to make
// the template's type arguments visible inside the body — it binds each
// template parameter name to the resolved Type in a closure layer over the
// original function and returns a Function value sharing that closure.
func (ev *evaluator) evalTemplateInst(n *Node, env *Env) Result {
	base := ev.eval(n.Children[0], env)
	if base.Sig != SigNone {
		return base
	}
	if base.Val.Tag != VFunction || len(base.Val.Fn.Decl.Tmpl) == 0 {
		return none(base.Val)
	}
	decl := base.Val.Fn.Decl
	bound := NewEnv(base.Val.Fn.Closure)
	for i, param := range decl.Tmpl {
		if i >= len(n.Tmpl) {
			break
		}
		t, err := resolveTypeAnn(n.Tmpl[i], env)
		if err != nil {
			return rtErr(n.Line, n.Col, "%s", err.Error())
		}
		bound.Def(param.Name, t)
	}
	return none(FunctionValue(decl, bound, base.Val.Fn.Name))
}

// resolveTypeAnn evaluates a TypeAnn node to the Type value it names —
// either a core scalar type or a user pattern looked up by name.
func resolveTypeAnn(t *Node, env *Env) (Value, error) {
	if t.Kind == KTypeAnn && t.Name == "" {
		return TypeValue("", nil), nil
	}
	if v, ok := env.Get(t.Name); ok && v.Tag == VType {
		return v, nil
	}
	if v, ok := env.Get(t.Name); ok && v.Tag == VModule && v.Mod.Pat != nil {
		return TypeValue(v.Mod.Pat.Name, v.Mod.Pat), nil
	}
	return TypeValue(t.Name, nil), nil
}

// convertToType implements spec §4.3's Type-callee conversions: `i`/`u`
// prefixed names convert to Int, `f`-prefixed to Float, `"string"`/`"bool"`
// via the value's own conversion rules. Numeric conversions clamp/truncate
// as for C (spec §6).
func convertToType(name string, args []Value) (Value, error) {
	if len(args) == 0 {
		return Null(), &RuntimeError{Msg: "type conversion requires one argument"}
	}
	v := args[0]
	switch {
	case name == "string":
		return String(v.String()), nil
	case name == "bool":
		return Bool(IsTruthy(v)), nil
	case strings.HasPrefix(name, "i"), strings.HasPrefix(name, "u"):
		return Int(toInt(v)), nil
	case strings.HasPrefix(name, "f"):
		return Float(toFloat(v)), nil
	default:
		return Null(), &RuntimeError{Msg: "unknown type '" + name + "'"}
	}
}

func toInt(v Value) int64 {
	switch v.Tag {
	case VInt:
		return v.I
	case VFloat:
		return int64(v.F)
	case VBool:
		if v.B {
			return 1
		}
		return 0
	case VString:
		i, _ := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		return i
	default:
		return 0
	}
}

func toFloat(v Value) float64 {
	switch v.Tag {
	case VInt:
		return float64(v.I)
	case VFloat:
		return v.F
	case VString:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return f
	default:
		return 0
	}
}
