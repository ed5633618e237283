package argmask

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

// Kind is the calling convention of a parameter.
type Kind int

// Parameter kinds, in the order they must be declared.
const (
	PositionalOnly Kind = iota
	PositionalOrNamed
	VariadicPositional
	NamedOnly
	VariadicNamed
)

func (k Kind) String() string {
	switch k {
	case PositionalOnly:
		return "positional-only"
	case PositionalOrNamed:
		return "positional-or-named"
	case VariadicPositional:
		return "variadic-positional"
	case NamedOnly:
		return "named-only"
	case VariadicNamed:
		return "variadic-named"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// positional reports whether positional arguments may bind to k.
func (k Kind) positional() bool {
	return k == PositionalOnly || k == PositionalOrNamed || k == VariadicPositional
}

// Parameter describes one declared parameter of a target function.
type Parameter struct {
	Name  string
	Index int
	Kind  Kind
}

// argTag is the struct tag naming a parameter and its kind: `arg:"name,kwonly"`.
const argTag = "arg"

var kindOptions = map[string]Kind{
	"posonly": PositionalOnly,
	"varargs": VariadicPositional,
	"kwonly":  NamedOnly,
	"kwargs":  VariadicNamed,
}

type shapeParam struct {
	Parameter
	field int
	typ   reflect.Type
}

// funcShape is the cached call shape of a func type:
// func([ctx context.Context][, args P]) ([R][, error]).
type funcShape struct {
	params     []shapeParam
	hasContext bool
	argType    reflect.Type // struct type of P, nil when the func takes no args struct
	argPtr     bool
	hasResult  bool
	hasError   bool
	kwargs     int // index into params of the VariadicNamed parameter, -1 if none
	hints      map[string]*jsonschema.Schema
}

var shapeCache sync.Map // reflect.Type -> *funcShape

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	anyMapType  = reflect.TypeFor[map[string]any]()
)

// hintReflector names properties like parameters so explicit hints line up with them.
var hintReflector = jsonschema.Reflector{
	FieldNameTag:               argTag,
	KeyNamer:                   strings.ToLower,
	DoNotReference:             true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	RequiredFromJSONSchemaTags: true,
	Anonymous:                  true,
}

// Introspect returns the declared parameters of fn in order.
// fn must be a func of shape func([ctx context.Context][, args P]) ([R][, error]) where P is a
// struct or pointer to struct; each exported field of P is a parameter (see the arg struct tag).
// Bound method values introspect like free functions. Other values fail with ErrSignatureUnavailable.
func Introspect(fn any) ([]Parameter, error) {
	shape, err := inspect(fn)
	if err != nil {
		return nil, err
	}
	out := make([]Parameter, len(shape.params))
	for i, p := range shape.params {
		out[i] = p.Parameter
	}
	return out, nil
}

func inspect(fn any) (*funcShape, error) {
	if fn == nil {
		return nil, &SignatureError{Reason: "nil target"}
	}
	typ := reflect.TypeOf(fn)
	if typ.Kind() != reflect.Func {
		return nil, &SignatureError{Func: typ.String(), Reason: "not a func"}
	}
	rv := reflect.ValueOf(fn)
	if rv.IsNil() {
		return nil, &SignatureError{Func: typ.String(), Reason: "nil func"}
	}
	if isMethodExpr(rv) {
		return nil, &SignatureError{Func: typ.String(), Reason: "method expression takes its receiver as an argument; use a method value"}
	}
	if cached, ok := shapeCache.Load(typ); ok {
		return cached.(*funcShape), nil
	}
	shape, reason := buildShape(typ)
	if reason != "" {
		return nil, &SignatureError{Func: typ.String(), Reason: reason}
	}
	actual, _ := shapeCache.LoadOrStore(typ, shape)
	return actual.(*funcShape), nil
}

func buildShape(typ reflect.Type) (*funcShape, string) {
	if typ.IsVariadic() {
		return nil, "variadic funcs have no named parameters"
	}
	shape := &funcShape{kwargs: -1}
	in := 0
	if typ.NumIn() > in && typ.In(in) == contextType {
		shape.hasContext = true
		in++
	}
	if typ.NumIn() > in {
		at := typ.In(in)
		if at.Kind() == reflect.Pointer {
			at = at.Elem()
			shape.argPtr = true
		}
		if at.Kind() != reflect.Struct {
			return nil, fmt.Sprintf("argument %d must be a struct, got %s", in, typ.In(in))
		}
		shape.argType = at
		in++
	}
	if typ.NumIn() > in {
		return nil, fmt.Sprintf("unexpected argument %d (%s)", in, typ.In(in))
	}
	switch typ.NumOut() {
	case 0:
	case 1:
		if typ.Out(0) == errorType {
			shape.hasError = true
		} else {
			shape.hasResult = true
		}
	case 2:
		if typ.Out(1) != errorType {
			return nil, "second result must be error"
		}
		shape.hasResult, shape.hasError = true, true
	default:
		return nil, "too many results"
	}
	if shape.argType == nil {
		return shape, ""
	}
	if reason := shape.collectParams(); reason != "" {
		return nil, reason
	}
	shape.hints = explicitHints(shape.argType)
	return shape, ""
}

func (s *funcShape) collectParams() string {
	seen := make(map[string]bool)
	last := PositionalOnly
	for i := 0; i < s.argType.NumField(); i++ {
		f := s.argType.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := f.Tag.Get(argTag)
		if tag == "-" {
			continue
		}
		name, opt, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		name = strings.ToLower(name)
		kind := PositionalOrNamed
		if opt != "" {
			k, ok := kindOptions[opt]
			if !ok {
				return fmt.Sprintf("field %s: unknown kind %q", f.Name, opt)
			}
			kind = k
		}
		switch {
		case seen[name]:
			return fmt.Sprintf("duplicate parameter %q", name)
		case kind < last:
			return fmt.Sprintf("parameter %q (%s) declared after a %s parameter", name, kind, last)
		case kind == last && (kind == VariadicPositional || kind == VariadicNamed):
			return fmt.Sprintf("more than one %s parameter", kind)
		case kind == VariadicPositional && f.Type.Kind() != reflect.Slice:
			return fmt.Sprintf("parameter %q: varargs field must be a slice", name)
		case kind == VariadicNamed && f.Type != anyMapType:
			return fmt.Sprintf("parameter %q: kwargs field must be map[string]any", name)
		}
		seen[name] = true
		last = kind
		if kind == VariadicNamed {
			s.kwargs = len(s.params)
		}
		s.params = append(s.params, shapeParam{
			Parameter: Parameter{Name: name, Index: len(s.params), Kind: kind},
			field:     i,
			typ:       f.Type,
		})
	}
	return ""
}

// explicitHints reflects the schema of every field carrying a jsonschema tag.
func explicitHints(argType reflect.Type) map[string]*jsonschema.Schema {
	var tagged []string
	for i := 0; i < argType.NumField(); i++ {
		f := argType.Field(i)
		if _, ok := f.Tag.Lookup("jsonschema"); !ok || !f.IsExported() || f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get(argTag), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		tagged = append(tagged, strings.ToLower(name))
	}
	if len(tagged) == 0 {
		return nil
	}
	root := hintReflector.ReflectFromType(argType)
	if root == nil || root.Properties == nil {
		return nil
	}
	hints := make(map[string]*jsonschema.Schema, len(tagged))
	for _, name := range tagged {
		if s, ok := root.Properties.Get(name); ok {
			hints[name] = s
		}
	}
	return hints
}

// isMethodExpr reports whether fn is a method expression such as T.Run or (*T).Run, whose
// first argument is the receiver. Method values (x.Run) are already bound and are not.
func isMethodExpr(fn reflect.Value) bool {
	typ := fn.Type()
	if typ.NumIn() == 0 {
		return false
	}
	recv := typ.In(0)
	ptr := recv.Kind() == reflect.Pointer
	if ptr {
		recv = recv.Elem()
	}
	recvName := recv.Name()
	if recvName == "" {
		return false
	}
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return false
	}
	name := rf.Name()
	if strings.HasSuffix(name, "-fm") {
		return false
	}
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	// Generic receivers are printed as T[...].
	if j := strings.IndexByte(recvName, '['); j >= 0 {
		recvName = recvName[:j] + "[...]"
	}
	if ptr {
		recvName = "(*" + recvName + ")"
	}
	return strings.HasSuffix(name[:i], "."+recvName)
}

// param returns the parameter named name, if declared.
func (s *funcShape) param(name string) (shapeParam, bool) {
	for _, p := range s.params {
		if p.Name == name {
			return p, true
		}
	}
	return shapeParam{}, false
}
