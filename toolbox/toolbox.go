package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/skosovsky/argmask"
)

var (
	// ErrToolNotFound is returned when no tool is registered under the requested name.
	ErrToolNotFound = errors.New("toolbox: tool not found")
	// ErrDuplicateTool is returned when a name is registered twice.
	ErrDuplicateTool = errors.New("toolbox: duplicate tool")
)

// Tool describes a registered function for a function-calling consumer.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	ToolInfo    []string
}

// Toolbox is a set of wrapped functions keyed by name. Safe for concurrent use.
type Toolbox struct {
	mu    sync.RWMutex
	funcs map[string]*argmask.Func
}

// New returns a Toolbox holding fns. It fails on the first duplicate name.
func New(fns ...*argmask.Func) (*Toolbox, error) {
	tb := &Toolbox{funcs: make(map[string]*argmask.Func, len(fns))}
	for _, f := range fns {
		if err := tb.Register(f); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

// Register adds f under f.Name().
func (tb *Toolbox) Register(f *argmask.Func) error {
	if f == nil || f.Name() == "" {
		return fmt.Errorf("%w: unnamed function", argmask.ErrInvalidName)
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.funcs == nil {
		tb.funcs = make(map[string]*argmask.Func)
	}
	if _, ok := tb.funcs[f.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, f.Name())
	}
	tb.funcs[f.Name()] = f
	return nil
}

// RegisterAll wraps every exported method of v with def and registers each under its method name.
// Nothing is registered if any method fails.
func (tb *Toolbox) RegisterAll(def *argmask.Definition, v any, opts ...argmask.Option) error {
	fns, err := argmask.AdaptAll(def, v, opts...)
	if err != nil {
		return err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.funcs == nil {
		tb.funcs = make(map[string]*argmask.Func)
	}
	for name := range fns {
		if _, ok := tb.funcs[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
		}
	}
	maps.Copy(tb.funcs, fns)
	return nil
}

// Get returns the function registered under name.
func (tb *Toolbox) Get(name string) (*argmask.Func, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	f, ok := tb.funcs[name]
	return f, ok
}

const tracerName = "github.com/skosovsky/argmask/toolbox"

// Call invokes the tool registered under name. args are passed to argmask.Func.Call.
// Each call runs in a "toolbox.call" span; rejected arguments are recorded on it.
func (tb *Toolbox) Call(ctx context.Context, name string, args ...any) (any, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "toolbox.call",
		oteltrace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	f, ok := tb.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrToolNotFound, name)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	clog.FromContext(ctx).With("tool", name).Debugf("calling tool")
	result, err := f.Call(ctx, args...)
	if err != nil {
		var aerr *argmask.AdaptationError
		if errors.As(err, &aerr) {
			span.SetAttributes(attribute.Int("tool.invalid_arguments", len(aerr.Failures)))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// CallJSON invokes the tool registered under name with named arguments decoded from a JSON object.
// Empty input means no arguments.
func (tb *Toolbox) CallJSON(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	var named argmask.Named
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &named); err != nil {
			return nil, fmt.Errorf("%w: tool %q: %w", argmask.ErrInvalidArgument, name, err)
		}
	}
	return tb.Call(ctx, name, named)
}

// Tools returns every registered tool sorted by name.
func (tb *Toolbox) Tools() ([]Tool, error) {
	tb.mu.RLock()
	names := slices.Sorted(maps.Keys(tb.funcs))
	fns := make([]*argmask.Func, len(names))
	for i, name := range names {
		fns[i] = tb.funcs[name]
	}
	tb.mu.RUnlock()

	out := make([]Tool, 0, len(fns))
	for _, f := range fns {
		tool, err := Describe(f)
		if err != nil {
			return nil, err
		}
		out = append(out, tool)
	}
	return out, nil
}

// Describe returns the tool description of f.
func Describe(f *argmask.Func) (Tool, error) {
	params, err := schemaToMap(Parameters(f))
	if err != nil {
		return Tool{}, fmt.Errorf("toolbox: tool %q parameters: %w", f.Name(), err)
	}
	return Tool{
		Name:        f.Name(),
		Description: f.Doc(),
		Parameters:  params,
		ToolInfo:    f.ToolInfo(),
	}, nil
}

// Parameters builds the JSON-schema object of f's parameters in declaration order.
// A parameter without a hint accepts any value. Variadic-named parameters open the object
// to additional properties; variadic-positional ones are described as arrays.
func Parameters(f *argmask.Func) *jsonschema.Schema {
	hints := f.Hints()
	props := jsonschema.NewProperties()
	s := &jsonschema.Schema{Type: "object", Properties: props}
	for _, p := range f.Params() {
		switch p.Kind {
		case argmask.VariadicNamed:
			s.AdditionalProperties = jsonschema.TrueSchema
			continue
		case argmask.VariadicPositional:
			item := hints[p.Name]
			if item == nil {
				item = &jsonschema.Schema{}
			}
			props.Set(p.Name, &jsonschema.Schema{Type: "array", Items: item})
			continue
		}
		if h, ok := hints[p.Name]; ok && h != nil {
			props.Set(p.Name, h)
		} else {
			props.Set(p.Name, &jsonschema.Schema{})
		}
	}
	if s.AdditionalProperties == nil {
		s.AdditionalProperties = jsonschema.FalseSchema
	}
	return s
}

func schemaToMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
