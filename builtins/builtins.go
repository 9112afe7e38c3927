// Package builtins is the external built-in-function collaborator (spec §1,
// §6): a flat registry of native callables installed into an interpreter's
// global environment at startup. The core (package ember) never imports
// this package — it only depends on the ember.NativeFn shape (value.go)
// and the ember.Registry interface (interpreter.go), matching the
// boundary the spec draws around the built-in registry.
package builtins

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/emberlang/ember"
)

// Set is the concrete ember.Registry: the fixed list of callables from spec
// §6 ("print, println, input, int, float, string, bool, is_null, is_int,
// is_float, is_string, type_of, type, abs, sqrt, pow, floor, ceil, min, max,
// len, substr, concat, assert").
type Set struct{}

// Install binds every built-in under its name in global.
func (Set) Install(global *ember.Env) {
	for name, fn := range table {
		global.Def(name, ember.BuiltinValue(name, fn))
	}
}

var stdin = bufio.NewReader(os.Stdin)

var table = map[string]ember.NativeFn{
	"print":    biPrint,
	"println":  biPrintln,
	"input":    biInput,
	"int":      biInt,
	"float":    biFloat,
	"string":   biString,
	"bool":     biBool,
	"is_null":  biIsNull,
	"is_int":   biIsInt,
	"is_float": biIsFloat,
	"is_string": biIsString,
	"type_of":  biTypeOf,
	"type":     biType,
	"abs":      biAbs,
	"sqrt":     biSqrt,
	"pow":      biPow,
	"floor":    biFloor,
	"ceil":     biCeil,
	"min":      biMin,
	"max":      biMax,
	"len":      biLen,
	"substr":   biSubstr,
	"concat":   biConcat,
	"assert":   biAssert,
}

func errf(format string, a ...interface{}) error { return fmt.Errorf(format, a...) }

// biPrint concatenates its arguments' string forms directly and appends a
// trailing newline (every end-to-end scenario in spec §8 calls print() and
// expects one); biPrintln space-separates them instead.
func biPrint(args []ember.Value) (ember.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.String())
	}
	b.WriteString("\n")
	fmt.Print(b.String())
	return ember.Null(), nil
}

func biPrintln(args []ember.Value) (ember.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Println(strings.Join(parts, " "))
	return ember.Null(), nil
}

func biInput(args []ember.Value) (ember.Value, error) {
	line, err := stdin.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return ember.Null(), nil
	}
	return ember.String(line), nil
}

func arg(args []ember.Value, i int) ember.Value {
	if i < len(args) {
		return args[i]
	}
	return ember.Null()
}

// asFloat/asInt implement spec §6's "numeric conversions clamp/truncate as
// for C" for the conversion builtins and the math builtins alike.
func asFloat(v ember.Value) float64 {
	switch v.Tag {
	case ember.VInt:
		return float64(v.I)
	case ember.VFloat:
		return v.F
	case ember.VBool:
		if v.B {
			return 1
		}
		return 0
	case ember.VString:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return f
	default:
		return 0
	}
}

func asInt(v ember.Value) int64 {
	switch v.Tag {
	case ember.VInt:
		return v.I
	case ember.VFloat:
		return int64(v.F)
	case ember.VBool:
		if v.B {
			return 1
		}
		return 0
	case ember.VString:
		i, _ := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		return i
	default:
		return 0
	}
}

func biInt(args []ember.Value) (ember.Value, error)    { return ember.Int(asInt(arg(args, 0))), nil }
func biFloat(args []ember.Value) (ember.Value, error)  { return ember.Float(asFloat(arg(args, 0))), nil }
func biString(args []ember.Value) (ember.Value, error) { return ember.String(arg(args, 0).String()), nil }
func biBool(args []ember.Value) (ember.Value, error) {
	return ember.Bool(ember.IsTruthy(arg(args, 0))), nil
}

func biIsNull(args []ember.Value) (ember.Value, error) {
	return ember.Bool(arg(args, 0).Tag == ember.VNull), nil
}
func biIsInt(args []ember.Value) (ember.Value, error) {
	return ember.Bool(arg(args, 0).Tag == ember.VInt), nil
}
func biIsFloat(args []ember.Value) (ember.Value, error) {
	return ember.Bool(arg(args, 0).Tag == ember.VFloat), nil
}
func biIsString(args []ember.Value) (ember.Value, error) {
	return ember.Bool(arg(args, 0).Tag == ember.VString), nil
}

func biTypeOf(args []ember.Value) (ember.Value, error) {
	return ember.String(arg(args, 0).TypeName()), nil
}

// biType returns a Type value describing v, per spec §6: fields `name`,
// `is_pat`, and `fields`, a tuple of field-name strings each named by its
// own field name (readable via member access —
// see eval_exec.go's readTypeMember).
func biType(args []ember.Value) (ember.Value, error) {
	v := arg(args, 0)
	if v.Tag == ember.VPatternInstance {
		return ember.TypeValue(v.PatInst.Def.Name, v.PatInst.Def), nil
	}
	return ember.TypeValue(v.TypeName(), nil), nil
}

func biAbs(args []ember.Value) (ember.Value, error) {
	v := arg(args, 0)
	if v.Tag == ember.VInt {
		if v.I < 0 {
			return ember.Int(-v.I), nil
		}
		return v, nil
	}
	return ember.Float(math.Abs(asFloat(v))), nil
}

func biSqrt(args []ember.Value) (ember.Value, error) {
	return ember.Float(math.Sqrt(asFloat(arg(args, 0)))), nil
}

func biPow(args []ember.Value) (ember.Value, error) {
	return ember.Float(math.Pow(asFloat(arg(args, 0)), asFloat(arg(args, 1)))), nil
}

func biFloor(args []ember.Value) (ember.Value, error) {
	return ember.Float(math.Floor(asFloat(arg(args, 0)))), nil
}

func biCeil(args []ember.Value) (ember.Value, error) {
	return ember.Float(math.Ceil(asFloat(arg(args, 0)))), nil
}

func biMin(args []ember.Value) (ember.Value, error) {
	if len(args) == 0 {
		return ember.Null(), errf("min requires at least one argument")
	}
	best := args[0]
	for _, a := range args[1:] {
		if asFloat(a) < asFloat(best) {
			best = a
		}
	}
	return best, nil
}

func biMax(args []ember.Value) (ember.Value, error) {
	if len(args) == 0 {
		return ember.Null(), errf("max requires at least one argument")
	}
	best := args[0]
	for _, a := range args[1:] {
		if asFloat(a) > asFloat(best) {
			best = a
		}
	}
	return best, nil
}

func biLen(args []ember.Value) (ember.Value, error) {
	v := arg(args, 0)
	switch v.Tag {
	case ember.VString:
		return ember.Int(int64(len(v.Str))), nil
	case ember.VTuple:
		return ember.Int(int64(len(v.Tup.Elems))), nil
	default:
		return ember.Null(), errf("len: unsupported type %s", v.TypeName())
	}
}

// biSubstr implements spec §8's boundary rules exactly: negative start
// clamps to 0; start past end yields empty; start+len past end truncates;
// negative len clamps to 0.
func biSubstr(args []ember.Value) (ember.Value, error) {
	v := arg(args, 0)
	if v.Tag != ember.VString {
		return ember.Null(), errf("substr: first argument must be a string")
	}
	s := v.Str
	start := asInt(arg(args, 1))
	length := asInt(arg(args, 2))

	if start < 0 {
		start = 0
	}
	if length < 0 {
		length = 0
	}
	if start >= int64(len(s)) {
		return ember.String(""), nil
	}
	end := start + length
	if end > int64(len(s)) {
		end = int64(len(s))
	}
	return ember.String(s[start:end]), nil
}

func biConcat(args []ember.Value) (ember.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.String())
	}
	return ember.String(b.String()), nil
}

// biAssert terminates the process on a false condition (spec §6:
// "assert(false[, msg]) terminates the process").
func biAssert(args []ember.Value) (ember.Value, error) {
	cond := arg(args, 0)
	if ember.IsTruthy(cond) {
		return ember.Null(), nil
	}
	msg := "assertion failed"
	if len(args) > 1 {
		msg = args[1].String()
	}
	fmt.Fprintln(os.Stderr, "ASSERTION FAILED:", msg)
	os.Exit(1)
	return ember.Null(), nil
}
