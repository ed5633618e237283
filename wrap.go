package argmask

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/invopop/jsonschema"

	"github.com/skosovsky/argmask/internal/cast"
)

// Target is an explicit descriptor of a function to wrap, carrying the metadata a Go func
// value cannot hold itself. Fn is a func accepted by Introspect or a *Func.
type Target struct {
	Name     string
	Doc      string
	Fn       any
	Hints    map[string]*jsonschema.Schema // explicit annotations; override inferred hints
	ToolInfo []string                      // propagated unchanged when non-nil
}

// Func is a wrapped function. Callers pass external values; Func translates them through its
// Definition and calls the original with internal values, by name.
// A Func is immutable and safe for concurrent use if the original function is.
type Func struct {
	name   string
	def    *Definition
	params []Parameter
	meta   Metadata
	invoke func(ctx context.Context, args Args) (any, error)
}

// Adapt wraps target so that its parameters adapted by def accept external values.
// target is a func (see Introspect), a Target or *Target, or a *Func to wrap again.
// Metadata is computed once here. Returns ErrSignatureUnavailable if target cannot be introspected.
func Adapt(def *Definition, target any, opts ...Option) (*Func, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	var t Target
	switch v := target.(type) {
	case Target:
		t = v
	case *Target:
		if v == nil {
			return nil, &SignatureError{Reason: "nil target"}
		}
		t = *v
	default:
		t = Target{Fn: target}
	}

	f := &Func{def: def, name: cfg.name}
	var hints map[string]*jsonschema.Schema
	if inner, ok := t.Fn.(*Func); ok {
		if inner == nil {
			return nil, &SignatureError{Reason: "nil target"}
		}
		f.params = slices.Clone(inner.params)
		f.invoke = inner.call
		hints = maps.Clone(inner.meta.Hints)
		if t.Doc == "" {
			t.Doc = inner.meta.Doc
		}
		if t.ToolInfo == nil {
			t.ToolInfo = inner.meta.ToolInfo
		}
		if t.Name == "" {
			t.Name = inner.name
		}
	} else {
		shape, err := inspect(t.Fn)
		if err != nil {
			return nil, err
		}
		fn := reflect.ValueOf(t.Fn)
		f.params = make([]Parameter, len(shape.params))
		for i, p := range shape.params {
			f.params[i] = p.Parameter
		}
		f.invoke = func(ctx context.Context, args Args) (any, error) {
			return shape.call(ctx, fn, args)
		}
		hints = maps.Clone(shape.hints)
		if t.Name == "" {
			t.Name = funcName(fn)
		}
	}
	if hints == nil {
		hints = make(map[string]*jsonschema.Schema, len(t.Hints))
	}
	maps.Copy(hints, t.Hints)
	if f.name == "" {
		f.name = t.Name
	}
	f.meta = propagate(def, f.params, cfg.doc, Metadata{Doc: t.Doc, Hints: hints, ToolInfo: t.ToolInfo})
	return f, nil
}

// AdaptAll wraps every exported method of v, bound to v, and returns them by method name.
// Use a pointer to include pointer-receiver methods. Fails if any method cannot be introspected.
func AdaptAll(def *Definition, v any, opts ...Option) (map[string]*Func, error) {
	if v == nil {
		return nil, &SignatureError{Reason: "nil value"}
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	out := make(map[string]*Func, rt.NumMethod())
	for i := 0; i < rt.NumMethod(); i++ {
		name := rt.Method(i).Name
		f, err := Adapt(def, Target{Name: name, Fn: rv.Method(i).Interface()}, append(slices.Clone(opts), WithName(name))...)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", name, err)
		}
		out[name] = f
	}
	return out, nil
}

// Call binds args to parameters, translates them and calls the original function by name.
// A trailing Named value supplies named arguments. If any argument is invalid, Call returns an
// *AdaptationError listing every failure and the original function is not called.
func (f *Func) Call(ctx context.Context, args ...any) (any, error) {
	var named Named
	if n := len(args); n > 0 {
		if kw, ok := args[n-1].(Named); ok {
			named = kw
			args = args[:n-1]
		}
	}
	return f.call(ctx, Bind(f.params, args, named))
}

func (f *Func) call(ctx context.Context, bound Args) (any, error) {
	translated, err := f.def.Translate(bound)
	if err != nil {
		var aerr *AdaptationError
		if errors.As(err, &aerr) {
			aerr.Func = f.name
			clog.FromContext(ctx).With("func", f.name).
				Debugf("rejected call: %d invalid argument(s)", len(aerr.Failures))
		}
		return nil, err
	}
	return f.invoke(ctx, translated)
}

// Name returns the wrapper's name.
func (f *Func) Name() string { return f.name }

// Doc returns the propagated documentation.
func (f *Func) Doc() string { return f.meta.Doc }

// Params returns the declared parameters of the original function.
func (f *Func) Params() []Parameter { return slices.Clone(f.params) }

// Definition returns the definition the wrapper translates with.
func (f *Func) Definition() *Definition { return f.def }

// Hints returns per-parameter type hints: inferred choices overlaid with explicit annotations.
func (f *Func) Hints() map[string]*jsonschema.Schema { return maps.Clone(f.meta.Hints) }

// ToolInfo returns the tool descriptor read by registration consumers.
func (f *Func) ToolInfo() []string { return slices.Clone(f.meta.ToolInfo) }

// Metadata returns a copy of all propagated metadata.
func (f *Func) Metadata() Metadata { return f.meta.clone() }

func funcName(fn reflect.Value) string {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return ""
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// call invokes fn with args set on a fresh args struct, by parameter name.
func (s *funcShape) call(ctx context.Context, fn reflect.Value, args Args) (any, error) {
	in := make([]reflect.Value, 0, 2)
	if s.hasContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	if s.argType != nil {
		pv := reflect.New(s.argType)
		if err := s.fill(pv.Elem(), args); err != nil {
			return nil, err
		}
		if s.argPtr {
			in = append(in, pv)
		} else {
			in = append(in, pv.Elem())
		}
	} else if len(args) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedArgument, args[0].Name)
	}

	out := fn.Call(in)
	var result any
	var err error
	switch {
	case s.hasResult && s.hasError:
		result = out[0].Interface()
		err, _ = out[1].Interface().(error)
	case s.hasResult:
		result = out[0].Interface()
	case s.hasError:
		err, _ = out[0].Interface().(error)
	}
	return result, err
}

func (s *funcShape) fill(dst reflect.Value, args Args) error {
	for _, a := range args {
		p, ok := s.param(strings.ToLower(a.Name))
		if !ok || p.Kind == VariadicNamed {
			if s.kwargs < 0 {
				return fmt.Errorf("%w: %q", ErrUnexpectedArgument, a.Name)
			}
			kw := dst.Field(s.params[s.kwargs].field)
			if kw.IsNil() {
				kw.Set(reflect.MakeMap(anyMapType))
			}
			value := a.Value
			kw.SetMapIndex(reflect.ValueOf(a.Name), reflect.ValueOf(&value).Elem())
			continue
		}
		value := a.Value
		if p.Kind == VariadicPositional && value != nil {
			if _, ok := cast.ToSequence(value); !ok {
				value = []any{value}
			}
		}
		if !assign(dst.Field(p.field), value) {
			return fmt.Errorf("%w: parameter %q: cannot use %v (%T) as %s",
				ErrInvalidArgument, p.Name, a.Value, a.Value, p.typ)
		}
	}
	return nil
}

// assign stores v in dst, converting numbers, named types and sequences as needed.
func assign(dst reflect.Value, v any) bool {
	if v == nil {
		dst.SetZero()
		return true
	}
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return true
	}
	if src.Kind() == dst.Kind() && src.CanConvert(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return true
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := cast.ToInt64(v); ok && !dst.OverflowInt(n) {
			dst.SetInt(n)
			return true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok := cast.ToUint64(v); ok && !dst.OverflowUint(n) {
			dst.SetUint(n)
			return true
		}
	case reflect.Float32, reflect.Float64:
		if x, ok := cast.ToFloat64(v); ok && !dst.OverflowFloat(x) {
			dst.SetFloat(x)
			return true
		}
	case reflect.Slice:
		seq, ok := cast.ToSequence(v)
		if !ok {
			return false
		}
		out := reflect.MakeSlice(dst.Type(), len(seq), len(seq))
		for i, e := range seq {
			if !assign(out.Index(i), e) {
				return false
			}
		}
		dst.Set(out)
		return true
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if assign(elem.Elem(), v) {
			dst.Set(elem)
			return true
		}
	}
	return false
}
