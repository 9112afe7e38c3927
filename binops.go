// binops.go: binary and unary operator semantics (spec §4.3 "Binary ops",
// "Unary"), plus SPEC_FULL's resolution of Open Question (c): custom
// operator-declaration dispatch.
package ember

import "math"

// evalBinOp evaluates both operands, tries custom-operator dispatch, and
// falls back to the built-in operator table.
func (ev *evaluator) evalBinOp(n *Node, env *Env) Result {
	l := ev.eval(n.Children[0], env)
	if l.Sig != SigNone {
		return l
	}
	r := ev.eval(n.Children[1], env)
	if r.Sig != SigNone {
		return r
	}

	if fn, ok := findCustomOp(n.Op, l.Val, r.Val, env); ok {
		return ev.callFunction(fn, []Value{l.Val, r.Val})
	}

	v, err := applyBinOp(n.Op, l.Val, r.Val)
	if err != nil {
		return rtErr(n.Line, n.Col, "%s", err.Error())
	}
	return none(v)
}

// findCustomOp implements SPEC_FULL's Open Question (c) resolution: before
// built-in semantics apply, look for a Function bound under the operator's
// own symbol — first as a method of a pattern-instance operand, then in the
// general environment chain — whose two declared parameter types match the
// operands' runtime types.
func findCustomOp(op string, l, r Value, env *Env) (*Function, bool) {
	if l.Tag == VPatternInstance {
		if v, ok := l.PatInst.Def.lookupMethod(op); ok && v.Tag == VFunction && paramTypesMatch(v.Fn.Decl, l, r) {
			return v.Fn, true
		}
	}
	if v, ok := env.Get(op); ok && v.Tag == VFunction && paramTypesMatch(v.Fn.Decl, l, r) {
		return v.Fn, true
	}
	return nil, false
}

// paramTypesMatch requires exactly two declared parameters; a parameter
// with no type annotation matches any operand, one with an annotation must
// match the operand's runtime type name, except that `i*`/`u*` annotations
// also match Int operands and `f*` annotations also match Float operands.
func paramTypesMatch(decl *Node, l, r Value) bool {
	if len(decl.Children) != 2 {
		return false
	}
	return typeMatches(decl.Children[0].TypeAnn, l) && typeMatches(decl.Children[1].TypeAnn, r)
}

func typeMatches(ann *Node, v Value) bool {
	if ann == nil {
		return true
	}
	if ann.Name == v.TypeName() {
		return true
	}
	if ann.Name == "" {
		return false
	}
	switch v.Tag {
	case VInt:
		return ann.Name[0] == 'i' || ann.Name[0] == 'u'
	case VFloat:
		return ann.Name[0] == 'f'
	}
	return false
}

// applyBinOp is the built-in operator table (spec §4.3 "Binary ops").
func applyBinOp(op string, l, r Value) (Value, error) {
	switch op {
	case "&&":
		return Bool(IsTruthy(l) && IsTruthy(r)), nil
	case "||":
		return Bool(IsTruthy(l) || IsTruthy(r)), nil
	case "==":
		return Bool(ValuesEqual(l, r)), nil
	case "!=":
		return Bool(!ValuesEqual(l, r)), nil
	case "+":
		if l.Tag == VString && r.Tag == VString {
			return String(l.Str + r.Str), nil
		}
		return arith(op, l, r)
	case "-", "*", "/", "%":
		return arith(op, l, r)
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	case "&", "|", "^", "<<", ">>":
		return bitwise(op, l, r)
	default:
		return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
	}
}

func isNumeric(v Value) bool { return v.Tag == VInt || v.Tag == VFloat }

// arith implements spec §4.3: "Arithmetic promotes to float if either
// operand is float; integer division truncates toward zero;
// division/modulo by zero yields an evaluation error."
func arith(op string, l, r Value) (Value, error) {
	if !isNumeric(l) || !isNumeric(r) {
		return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
	}
	if l.Tag == VInt && r.Tag == VInt {
		a, b := l.I, r.I
		switch op {
		case "+":
			return Int(a + b), nil
		case "-":
			return Int(a - b), nil
		case "*":
			return Int(a * b), nil
		case "/":
			if b == 0 {
				return Value{}, &RuntimeError{Msg: "division by zero"}
			}
			return Int(a / b), nil
		case "%":
			if b == 0 {
				return Value{}, &RuntimeError{Msg: "modulo by zero"}
			}
			return Int(a % b), nil
		}
	}
	a, b := numericValue(l), numericValue(r)
	switch op {
	case "+":
		return Float(a + b), nil
	case "-":
		return Float(a - b), nil
	case "*":
		return Float(a * b), nil
	case "/":
		return Float(a / b), nil // IEEE inf/nan on zero divisor, per spec §8
	case "%":
		return Float(math.Mod(a, b)), nil
	}
	return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
}

func compare(op string, l, r Value) (Value, error) {
	if !isNumeric(l) || !isNumeric(r) {
		return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
	}
	a, b := numericValue(l), numericValue(r)
	switch op {
	case "<":
		return Bool(a < b), nil
	case "<=":
		return Bool(a <= b), nil
	case ">":
		return Bool(a > b), nil
	case ">=":
		return Bool(a >= b), nil
	}
	return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
}

// bitwise implements "Bitwise operators require two integers."
func bitwise(op string, l, r Value) (Value, error) {
	if l.Tag != VInt || r.Tag != VInt {
		return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
	}
	a, b := l.I, r.I
	switch op {
	case "&":
		return Int(a & b), nil
	case "|":
		return Int(a | b), nil
	case "^":
		return Int(a ^ b), nil
	case "<<":
		return Int(a << uint64(b)), nil
	case ">>":
		return Int(a >> uint64(b)), nil
	}
	return Value{}, &RuntimeError{Msg: "unsupported binary operation '" + op + "'"}
}

// evalUnary implements `-`, `!`, `~`, `copy`, `move` (spec §4.3 "Unary").
// `move` is SPEC_FULL's "faithful upgrade" from §9: on an identifier it
// takes ownership, rebinding the name to null and returning the prior value;
// on any other expression it behaves like a plain evaluation.
func (ev *evaluator) evalUnary(n *Node, env *Env) Result {
	switch n.Kind {
	case KCopy:
		r := ev.eval(n.Children[0], env)
		if r.Sig != SigNone {
			return r
		}
		return none(Copy(r.Val))
	case KMove:
		operand := n.Children[0]
		if operand.Kind == KIdent {
			v, ok := env.Get(operand.Name)
			if !ok {
				return rtErr(operand.Line, operand.Col, "undefined variable '%s'", operand.Name)
			}
			env.Set(operand.Name, Null())
			return none(v)
		}
		return ev.eval(operand, env)
	}

	r := ev.eval(n.Children[0], env)
	if r.Sig != SigNone {
		return r
	}
	v := r.Val
	switch n.Op {
	case "-":
		switch v.Tag {
		case VInt:
			return none(Int(-v.I))
		case VFloat:
			return none(Float(-v.F))
		default:
			return rtErr(n.Line, n.Col, "unsupported unary operation '-' on %s", v.TypeName())
		}
	case "!":
		return none(Bool(!IsTruthy(v)))
	case "~":
		if v.Tag != VInt {
			return rtErr(n.Line, n.Col, "unsupported unary operation '~' on %s", v.TypeName())
		}
		return none(Int(^v.I))
	default:
		return rtErr(n.Line, n.Col, "unsupported unary operation '%s'", n.Op)
	}
}
