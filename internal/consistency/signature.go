package consistency

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/pixelwerk/augment/internal/transforms/common"
)

// ParamKind classifies a parameter of a constructor or dispatcher.
type ParamKind int

const (
	Required ParamKind = iota
	Optional
	Variadic
)

func (k ParamKind) String() string {
	switch k {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Variadic:
		return "variadic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Param is one parameter in normalized form. Type is the Go type rendered as
// a string; it is empty when the comparison is name-only.
type Param struct {
	Name    string
	Kind    ParamKind
	Type    string
	Default string
}

// StructParams extracts the parameter list of a transform class from its
// struct tags. Fields without an arg tag are skipped.
func StructParams(t reflect.Type) []Param {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var params []Param
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("arg")
		if !ok {
			continue
		}
		name, attrs, _ := strings.Cut(tag, ",")
		kind := Optional
		if attrs == "required" {
			kind = Required
		}
		params = append(params, Param{
			Name:    name,
			Kind:    kind,
			Type:    f.Type.String(),
			Default: f.Tag.Get("default"),
		})
	}
	return params
}

// FuncParams reflects the parameter list of a dispatcher function. The names
// slice labels each parameter in order; its length must match the function's
// arity. A trailing variadic parameter is reported as such.
func FuncParams(fn any, names []string) ([]Param, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a function: %T", fn)
	}
	if t.NumIn() != len(names) {
		return nil, fmt.Errorf("%d parameter names for a function of arity %d", len(names), t.NumIn())
	}
	params := make([]Param, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		kind := Required
		typ := t.In(i).String()
		if t.IsVariadic() && i == t.NumIn()-1 {
			kind = Variadic
			typ = t.In(i).Elem().String()
		}
		params = append(params, Param{Name: names[i], Kind: kind, Type: typ})
	}
	return params, nil
}

// UntypedDispatchers names the dispatchers whose parameters are compared by
// name and kind only. The legacy adjust_gamma gain parameter is untyped and
// the v2 one is a plain float64, so a type comparison would flag a change
// that was made on purpose.
func UntypedDispatchers() map[string]bool {
	return map[string]bool{"adjust_gamma": true}
}

// CheckConstructorParity verifies that the v2 class accepts every legacy
// constructor parameter except the ones listed as removed, under the same
// name and requiredness, and that parameters new in v2 are optional.
func CheckConstructorParity(r Reporter, c Case) {
	r.Helper()
	removed := map[string]bool{}
	for _, name := range c.RemovedParams {
		removed[name] = true
	}
	oldParams := StructParams(c.Old)
	newByName := map[string]Param{}
	for _, p := range StructParams(c.New) {
		newByName[p.Name] = p
	}
	oldNames := map[string]bool{}
	for _, op := range oldParams {
		oldNames[op.Name] = true
		if removed[op.Name] {
			if _, still := newByName[op.Name]; still {
				r.Errorf("%s: parameter %q is listed as removed but the v2 class still has it", c.Name(), op.Name)
			}
			continue
		}
		np, ok := newByName[op.Name]
		if !ok {
			r.Errorf("%s: v2 class dropped parameter %q without listing it as removed", c.Name(), op.Name)
			continue
		}
		// Field types may legitimately differ across the two packages
		// (container fields reference their own Transform interface), so
		// only the name-level contract is compared.
		got := Param{Name: np.Name, Kind: np.Kind, Default: np.Default}
		want := Param{Name: op.Name, Kind: op.Kind, Default: op.Default}
		if diff := cmp.Diff(want, got); diff != "" {
			r.Errorf("%s: parameter %q changed (-legacy +v2):\n%s", c.Name(), op.Name, diff)
		}
	}
	for _, np := range StructParams(c.New) {
		if oldNames[np.Name] || np.Kind != Required {
			continue
		}
		r.Errorf("%s: new parameter %q must be optional so existing call sites keep working", c.Name(), np.Name)
	}
}

// CheckDispatcherParity verifies the functional surface: every legacy
// dispatcher exists in v2 under the same name, with the same parameters in
// the same order after the leading input. v2 may append trailing parameters
// only when they are variadic.
func CheckDispatcherParity(r Reporter, oldList, newList []common.Dispatcher, nameOnly map[string]bool) {
	r.Helper()
	newByName := map[string]common.Dispatcher{}
	for _, d := range newList {
		newByName[d.Name] = d
	}
	for _, od := range oldList {
		nd, ok := newByName[od.Name]
		if !ok {
			r.Errorf("dispatcher %q has no v2 counterpart", od.Name)
			continue
		}
		oldParams, err := FuncParams(od.Fn, od.ParamNames)
		if err != nil {
			r.Fatalf("dispatcher %q (legacy): %v", od.Name, err)
		}
		newParams, err := FuncParams(nd.Fn, nd.ParamNames)
		if err != nil {
			r.Fatalf("dispatcher %q (v2): %v", od.Name, err)
		}
		if len(oldParams) == 0 || len(newParams) == 0 {
			r.Errorf("dispatcher %q: both sides need at least the input parameter", od.Name)
			continue
		}
		// The input parameter name differs per representation; skip it.
		oldParams, newParams = oldParams[1:], newParams[1:]
		if len(newParams) < len(oldParams) {
			r.Errorf("dispatcher %q: v2 has %d parameters, legacy has %d", od.Name, len(newParams), len(oldParams))
			continue
		}
		compared := make([]Param, len(oldParams))
		expected := make([]Param, len(oldParams))
		for i := range oldParams {
			compared[i], expected[i] = newParams[i], oldParams[i]
			if nameOnly[od.Name] {
				compared[i].Type, expected[i].Type = "", ""
			}
		}
		if diff := cmp.Diff(expected, compared); diff != "" {
			r.Errorf("dispatcher %q parameters changed (-legacy +v2):\n%s", od.Name, diff)
		}
		for _, extra := range newParams[len(oldParams):] {
			if extra.Kind != Variadic {
				r.Errorf("dispatcher %q: new trailing parameter %q must be variadic", od.Name, extra.Name)
			}
		}
	}
}
