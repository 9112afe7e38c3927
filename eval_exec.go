// eval_exec.go: assignment targets, member/index access, and pattern
// declarations (spec §4.3 "Assignment", "Pattern declaration").
package ember

// evalAssign evaluates the right-hand side once, then writes it to the
// single assignment target. Assignment evaluates to the assigned value.
func (ev *evaluator) evalAssign(n *Node, env *Env) Result {
	target := n.Children[0]
	rhs := ev.eval(n.Init, env)
	if rhs.Sig != SigNone {
		return rhs
	}
	if err := ev.assignTo(target, rhs.Val, env); err != nil {
		return rtErr(target.Line, target.Col, "%s", err.Error())
	}
	return none(rhs.Val)
}

// evalMultiAssign destructures a tuple-valued right-hand side across several
// assignable targets in order (SPEC_FULL supplemented feature, grounded in
// original_source/src/ast.h's KMultiAssign).
func (ev *evaluator) evalMultiAssign(n *Node, env *Env) Result {
	rhs := ev.eval(n.Init, env)
	if rhs.Sig != SigNone {
		return rhs
	}
	var elems []Value
	if rhs.Val.Tag == VTuple {
		elems = rhs.Val.Tup.Elems
	} else {
		elems = []Value{rhs.Val}
	}
	for i, target := range n.Children {
		var v Value
		if i < len(elems) {
			v = elems[i]
		} else {
			v = Null()
		}
		if err := ev.assignTo(target, v, env); err != nil {
			return rtErr(target.Line, target.Col, "%s", err.Error())
		}
	}
	return none(rhs.Val)
}

// assignTo writes v to an identifier, member, or index target (spec §4.3:
// "Target must be identifier, member access, or (future) index").
func (ev *evaluator) assignTo(target *Node, v Value, env *Env) error {
	switch target.Kind {
	case KIdent:
		env.Set(target.Name, v)
		return nil
	case KMember:
		baseRes := ev.eval(target.Children[0], env)
		if baseRes.Sig == SigError {
			return baseRes.Err
		}
		return assignMember(baseRes.Val, target.Name, v)
	case KIndex:
		baseRes := ev.eval(target.Children[0], env)
		if baseRes.Sig == SigError {
			return baseRes.Err
		}
		idxRes := ev.eval(target.Children[1], env)
		if idxRes.Sig == SigError {
			return idxRes.Err
		}
		return assignIndex(baseRes.Val, idxRes.Val, v)
	default:
		return &RuntimeError{Line: target.Line, Col: target.Col, Msg: "invalid assignment target"}
	}
}

// assignMember implements "member assignment on a pattern instance finds the
// named field by linear scan ...; on a scope/module value, sets the named
// binding in the referenced environment" (spec §4.3).
func assignMember(base Value, name string, v Value) error {
	switch base.Tag {
	case VPatternInstance:
		for i, fn := range base.PatInst.Def.FieldNames {
			if fn == name {
				base.PatInst.Fields[i] = v
				return nil
			}
		}
		return &RuntimeError{Msg: "no member '" + name + "'"}
	case VScope:
		base.ScopeEnv.Set(name, v)
		return nil
	case VModule:
		base.Mod.Env.Set(name, v)
		return nil
	default:
		return &RuntimeError{Msg: "cannot assign member on a " + base.TypeName()}
	}
}

func assignIndex(base, idx, v Value) error {
	if base.Tag != VTuple {
		return &RuntimeError{Msg: "cannot index a " + base.TypeName()}
	}
	if idx.Tag != VInt {
		return &RuntimeError{Msg: "tuple index must be an integer"}
	}
	i := resolveTupleIndex(idx.I, len(base.Tup.Elems))
	if i < 0 {
		return &RuntimeError{Msg: "tuple index out of range"}
	}
	base.Tup.Elems[i] = v
	return nil
}

// resolveTupleIndex implements spec §8's wraparound rule: t[-1] == t[len-1];
// out-of-range after wrap is -1 (caller reports the error).
func resolveTupleIndex(i int64, n int) int {
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return -1
	}
	return int(i)
}

// evalMember reads a `.name` access: pattern-instance field, named tuple
// element, module/scope binding, or a type's descriptor fields.
func (ev *evaluator) evalMember(n *Node, env *Env) Result {
	base := ev.eval(n.Children[0], env)
	if base.Sig != SigNone {
		return base
	}
	v, err := readMember(base.Val, n.Name)
	if err != nil {
		return rtErr(n.Line, n.Col, "%s", err.Error())
	}
	return none(v)
}

func readMember(base Value, name string) (Value, error) {
	switch base.Tag {
	case VPatternInstance:
		for i, fn := range base.PatInst.Def.FieldNames {
			if fn == name {
				return base.PatInst.Fields[i], nil
			}
		}
		if m, ok := base.PatInst.Def.lookupMethod(name); ok {
			return m, nil
		}
		return Value{}, &RuntimeError{Msg: "no member '" + name + "'"}
	case VTuple:
		if base.Tup.Names != nil {
			for i, tn := range base.Tup.Names {
				if tn == name {
					return base.Tup.Elems[i], nil
				}
			}
		}
		return Value{}, &RuntimeError{Msg: "no member '" + name + "'"}
	case VModule:
		if v, ok := base.Mod.Env.GetLocal(name); ok {
			return v, nil
		}
		return Value{}, &RuntimeError{Msg: "module has no member '" + name + "'"}
	case VScope:
		if v, ok := base.ScopeEnv.GetLocal(name); ok {
			return v, nil
		}
		return Value{}, &RuntimeError{Msg: "scope has no member '" + name + "'"}
	case VType:
		return readTypeMember(base.TypeV, name)
	default:
		return Value{}, &RuntimeError{Msg: "cannot access member on a " + base.TypeName()}
	}
}

// readTypeMember implements the `type(v)` builtin's result surface (spec
// §6): `name`, `is_pat`, and `fields`, a tuple of field-name strings whose
// element names are the field names themselves.
func readTypeMember(t *TypeVal, name string) (Value, error) {
	switch name {
	case "name":
		return String(t.Name), nil
	case "is_pat":
		return Bool(t.Pat != nil), nil
	case "fields":
		if t.Pat == nil {
			return TupleValue(nil, nil), nil
		}
		elems := make([]Value, len(t.Pat.FieldNames))
		for i, fn := range t.Pat.FieldNames {
			elems[i] = String(fn)
		}
		return TupleValue(elems, append([]string(nil), t.Pat.FieldNames...)), nil
	default:
		return Value{}, &RuntimeError{Msg: "type has no member '" + name + "'"}
	}
}

func (ev *evaluator) evalIndex(n *Node, env *Env) Result {
	base := ev.eval(n.Children[0], env)
	if base.Sig != SigNone {
		return base
	}
	idx := ev.eval(n.Children[1], env)
	if idx.Sig != SigNone {
		return idx
	}
	if base.Val.Tag != VTuple {
		return rtErr(n.Line, n.Col, "cannot index a %s", base.Val.TypeName())
	}
	if idx.Val.Tag != VInt {
		return rtErr(n.Line, n.Col, "tuple index must be an integer")
	}
	i := resolveTupleIndex(idx.Val.I, len(base.Val.Tup.Elems))
	if i < 0 {
		return rtErr(n.Line, n.Col, "tuple index out of range")
	}
	return none(base.Val.Tup.Elems[i])
}

// evalPatDecl builds a PatDef from the body's var/fn declarations, merging
// in any base patterns' fields first (SPEC_FULL supplemented feature,
// grounded in original_source/src/ast.h's pattern inheritance), then wraps
// it as a Module value bound under the pattern's name (spec §4.3 "Pattern
// declaration").
func (ev *evaluator) evalPatDecl(n *Node, env *Env) Result {
	def := newPatDef(n.Name)

	seen := make(map[string]bool)
	for _, baseNode := range n.Children {
		baseVal, ok := env.Get(baseNode.Name)
		if !ok {
			return rtErr(baseNode.Line, baseNode.Col, "undefined base pattern '%s'", baseNode.Name)
		}
		basePat := patDefOf(baseVal)
		if basePat == nil {
			return rtErr(baseNode.Line, baseNode.Col, "'%s' is not a pattern", baseNode.Name)
		}
		for _, fn := range basePat.FieldNames {
			if seen[fn] {
				return rtErr(baseNode.Line, baseNode.Col, "duplicate field '%s' from base pattern", fn)
			}
			seen[fn] = true
		}
		def.Bases = append(def.Bases, basePat)
		def.FieldNames = append(def.FieldNames, basePat.FieldNames...)
	}

	patScope := NewEnv(env)
	def.Methods = patScope

	for _, stmt := range n.Body.Children {
		switch stmt.Kind {
		case KVarDecl:
			if seen[stmt.Name] {
				return rtErr(stmt.Line, stmt.Col, "duplicate field '%s'", stmt.Name)
			}
			seen[stmt.Name] = true
			def.FieldNames = append(def.FieldNames, stmt.Name)
		case KFnDecl:
			name := stmt.Name
			if name == "" {
				name = stmt.Op
			}
			patScope.Def(name, FunctionValue(stmt, patScope, name))
		case KPatDecl:
			r := ev.evalPatDecl(stmt, patScope)
			if r.Sig == SigError {
				return r
			}
		}
	}

	mod := ModuleValue(n.Name, patScope, def)
	env.Def(n.Name, mod)
	return none(mod)
}

// patDefOf extracts the PatDef a value names, whether it's a bare Type or a
// pattern-constructor Module.
func patDefOf(v Value) *PatDef {
	switch v.Tag {
	case VType:
		return v.TypeV.Pat
	case VModule:
		return v.Mod.Pat
	default:
		return nil
	}
}
