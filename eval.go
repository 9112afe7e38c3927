// eval.go: the tree-walking evaluator (spec §4.3). eval(node, env) recurses
// over the tagged AST and returns a Result — a Value plus a control-flow
// Signal (signal.go). Every branch below follows the same rule: on a
// non-None signal from a sub-evaluation, stop and propagate it upward
// unchanged, except where a construct (for/while/switch/call) is documented
// to consume a particular signal itself.
package ember

// evaluator threads the owning Interpreter through recursive eval calls so
// import resolution (modules.go) can reach the module cache and the global
// environment without a package-level global.
type evaluator struct {
	ip *Interpreter
}

func newEvaluator(ip *Interpreter) *evaluator { return &evaluator{ip: ip} }

// evalProgram evaluates a Program's statements in the given environment in
// order, stopping at the first error. A bare top-level Return/Break/Yield is
// not meaningful, but is tolerated and simply unwraps to its value — only
// Error is distinguished by Run's caller.
func (ev *evaluator) evalProgram(prog *Node, env *Env) Result {
	last := none(Null())
	for _, stmt := range prog.Children {
		r := ev.eval(stmt, env)
		if r.Sig == SigError {
			return r
		}
		last = r
	}
	return none(last.Val)
}

func (ev *evaluator) eval(n *Node, env *Env) Result {
	switch n.Kind {
	case KIntLit:
		return none(Int(n.IntVal))
	case KFloatLit:
		return none(Float(n.FltVal))
	case KStrLit:
		return none(String(n.StrVal))
	case KNullLit:
		return none(Null())
	case KIdent:
		if v, ok := env.Get(n.Name); ok {
			return none(v)
		}
		return rtErr(n.Line, n.Col, "undefined variable '%s'", n.Name)

	case KBinOp:
		return ev.evalBinOp(n, env)
	case KUnOp, KCopy, KMove:
		return ev.evalUnary(n, env)
	case KOptional:
		return ev.evalOptional(n, env)

	case KAssign:
		return ev.evalAssign(n, env)
	case KMultiAssign:
		return ev.evalMultiAssign(n, env)

	case KTuple:
		return ev.evalTuple(n, env)

	case KScope, KBlock:
		return ev.evalScope(n, env)

	case KFor:
		return ev.evalFor(n, env)
	case KWhile:
		return ev.evalWhile(n, env)
	case KSwitch:
		return ev.evalSwitch(n, env)

	case KBreak:
		return sigBreak(Null())
	case KYield:
		if n.Init != nil {
			r := ev.eval(n.Init, env)
			if r.Sig == SigError {
				return r
			}
			return sigYield(r.Val)
		}
		return sigYield(Null())
	case KReturn:
		if n.Init != nil {
			r := ev.eval(n.Init, env)
			if r.Sig == SigError {
				return r
			}
			return sigReturn(r.Val)
		}
		return sigReturn(Null())

	case KFnDecl:
		return ev.evalFnDecl(n, env)
	case KVarDecl:
		return ev.evalVarDecl(n, env)
	case KPatDecl:
		return ev.evalPatDecl(n, env)

	case KImportDecl:
		return ev.evalImport(n, env)

	case KCall:
		return ev.evalCall(n, env)
	case KMember:
		return ev.evalMember(n, env)
	case KIndex:
		return ev.evalIndex(n, env)

	case KTemplateInst:
		return ev.evalTemplateInst(n, env)

	default:
		return rtErr(n.Line, n.Col, "unhandled AST node kind %v", n.Kind)
	}
}

// evalScope runs a block's statements in a fresh child environment and
// returns the last statement's value, aborting on the first non-None
// signal (spec §4.3 "Scope").
func (ev *evaluator) evalScope(n *Node, env *Env) Result {
	child := NewEnv(env)
	last := none(Null())
	for _, stmt := range n.Children {
		r := ev.eval(stmt, child)
		if r.Sig != SigNone {
			return r
		}
		last = r
	}
	return last
}

// evalTuple builds a Tuple value. A KParam child (produced by the parser for
// named elements in tuple literals and return-tuple annotations) contributes
// its name; any other child is a positional element (spec §4.3 "Tuple
// literal").
func (ev *evaluator) evalTuple(n *Node, env *Env) Result {
	elems := make([]Value, len(n.Children))
	var names []string
	anyNamed := false
	for i, c := range n.Children {
		var name string
		var exprNode *Node
		if c.Kind == KParam {
			name = c.Name
			exprNode = c.Init
			anyNamed = true
		} else {
			exprNode = c
		}
		r := ev.eval(exprNode, env)
		if r.Sig != SigNone {
			return r
		}
		elems[i] = r.Val
		if names == nil {
			names = make([]string, len(n.Children))
		}
		names[i] = name
	}
	if !anyNamed {
		names = nil
	}
	return none(TupleValue(elems, names))
}

// evalOptional implements the `?:` optional expression (spec §4.3, §GLOSSARY
// "Optional expression"). With no `:`-right branch, an untaken condition
// yields an absent Optional rather than null outright.
func (ev *evaluator) evalOptional(n *Node, env *Env) Result {
	cond := ev.eval(n.Cond, env)
	if cond.Sig != SigNone {
		return cond
	}
	if IsTruthy(cond.Val) {
		r := ev.eval(n.Body, env)
		if r.Sig != SigNone || n.Alt != nil {
			return r
		}
		return none(OptionalValue(r.Val, true))
	}
	if n.Alt != nil {
		return ev.eval(n.Alt, env)
	}
	return none(OptionalValue(Null(), false))
}

// loopAcc tracks a for/while loop's accumulated result across iterations.
// Only Yield overwrites it; a plain fall-through iteration leaves it as-is
// (spec §4.3 "For loop" / "While loop").
type loopAcc struct {
	val Value
}

// stepLoopBody evaluates one loop body result against the accumulator,
// reporting whether the loop should stop and, if so, with what Result.
func stepLoopBody(r Result, acc *loopAcc) (stop bool, out Result) {
	switch r.Sig {
	case SigYield:
		acc.val = r.Val
		return false, Result{}
	case SigBreak:
		return true, none(acc.val)
	case SigReturn, SigError:
		return true, r
	default:
		return false, Result{}
	}
}

func (ev *evaluator) evalFor(n *Node, env *Env) Result {
	rangeRes := ev.eval(n.Init, env)
	if rangeRes.Sig != SigNone {
		return rangeRes
	}
	acc := &loopAcc{val: Null()}
	rv := rangeRes.Val
	switch rv.Tag {
	case VTuple:
		for _, elem := range rv.Tup.Elems {
			child := NewEnv(env)
			child.Def(n.Name, elem)
			r := ev.eval(n.Body, child)
			if stop, out := stepLoopBody(r, acc); stop {
				return out
			}
		}
	case VInt:
		for i := int64(0); i < rv.I; i++ {
			child := NewEnv(env)
			child.Def(n.Name, Int(i))
			r := ev.eval(n.Body, child)
			if stop, out := stepLoopBody(r, acc); stop {
				return out
			}
		}
	default:
		return rtErr(n.Line, n.Col, "for-loop range must be a tuple or integer")
	}
	return none(acc.val)
}

func (ev *evaluator) evalWhile(n *Node, env *Env) Result {
	acc := &loopAcc{val: Null()}
	for {
		if n.Cond != nil {
			c := ev.eval(n.Cond, env)
			if c.Sig != SigNone {
				return c
			}
			if !IsTruthy(c.Val) {
				return none(acc.val)
			}
		}
		r := ev.eval(n.Body, env)
		if stop, out := stepLoopBody(r, acc); stop {
			return out
		}
		if n.Alt != nil {
			c := ev.eval(n.Alt, env)
			if c.Sig != SigNone {
				return c
			}
			if !IsTruthy(c.Val) {
				return none(acc.val)
			}
		}
	}
}

// evalSwitch walks cases in declaration order; the first match (a literal
// case equal to the tag, or a default) executes. A case body that yields
// supplies the switch's resulting value; a break simply ends the case (spec
// §4.3 "Switch").
func (ev *evaluator) evalSwitch(n *Node, env *Env) Result {
	tag := ev.eval(n.Init, env)
	if tag.Sig != SigNone {
		return tag
	}
	for _, c := range n.Children {
		matched := false
		if c.Cond == nil {
			matched = true
		} else {
			cv := ev.eval(c.Cond, env)
			if cv.Sig != SigNone {
				return cv
			}
			matched = ValuesEqual(cv.Val, tag.Val)
		}
		if !matched {
			continue
		}
		child := NewEnv(env)
		r := ev.eval(c.Body, child)
		switch r.Sig {
		case SigYield, SigBreak:
			return none(r.Val)
		case SigReturn, SigError:
			return r
		default:
			return none(r.Val)
		}
	}
	return none(Null())
}

func (ev *evaluator) evalFnDecl(n *Node, env *Env) Result {
	name := n.Name
	if name == "" {
		name = n.Op
	}
	fn := FunctionValue(n, env, name)
	env.Def(name, fn)
	return none(fn)
}

// evalVarDecl binds a declared variable. With no initializer it binds null
// (SPEC_FULL resolution of Open Question (a): spec §9 notes the source
// picks null and calls it "uninitialized" — we bind null outright).
func (ev *evaluator) evalVarDecl(n *Node, env *Env) Result {
	var val Value
	if n.Init != nil {
		r := ev.eval(n.Init, env)
		if r.Sig != SigNone {
			return r
		}
		val = r.Val
	} else {
		val = Null()
	}
	env.Def(n.Name, val)
	return none(val)
}

func (ev *evaluator) evalImport(n *Node, env *Env) Result {
	return ev.resolveImport(n, env)
}
