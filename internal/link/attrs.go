package link

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// KindKey is the attribute carrying the kind tag in the exported form.
const KindKey = "_link"

// hiddenMarker prefixes every attribute excluded from the constructor view.
const hiddenMarker = "_"

// Attrs is the flat persisted form of a descriptor: attribute name to value.
//
// Visible values are int, float64, bool, string, []int or nil (an unset optional
// hyperparameter). Hidden slots hold *tensor.Tensor or nn.Initializer values.
type Attrs map[string]any

// attr binds a visible attribute name to a typed field of a descriptor.
// ptr is one of *int, **int, *float64, *bool, *string or *[]int.
type attr struct {
	name string
	ptr  any
}

// slot binds a hidden attribute name to a typed weight field.
// Exactly one of tensor or init is set.
type slot struct {
	name   string
	tensor **tensor.Tensor
	init   *nn.Initializer
}

func tensorSlot(name string, t **tensor.Tensor) slot { return slot{name: name, tensor: t} }

func initSlot(name string, i *nn.Initializer) slot { return slot{name: name, init: i} }

func (s slot) value() any {
	switch {
	case s.tensor != nil && *s.tensor != nil:
		return *s.tensor
	case s.init != nil && *s.init != nil:
		return *s.init
	}
	return nil
}

// table lists the attributes of one descriptor value, in declaration order.
type table struct {
	attrs []attr
	slots []slot

	// resolve finds hidden slots that are not statically listed (Merge heads).
	resolve func(name string) (slot, error)

	// validate checks cross-field constraints after an import.
	validate func() error
}

func (t table) find(name string) (attr, bool) {
	for _, a := range t.attrs {
		if a.name == name {
			return a, true
		}
	}
	return attr{}, false
}

// findSlot looks up a hidden slot. A resolver takes precedence over the static
// list, whose pointers it may invalidate by growing the backing storage.
func (t table) findSlot(name string) (slot, bool, error) {
	if t.resolve != nil {
		s, err := t.resolve(name)
		if err != nil {
			return slot{}, false, err
		}
		return s, s.name != "", nil
	}
	for _, s := range t.slots {
		if s.name == name {
			return s, true, nil
		}
	}
	return slot{}, false, nil
}

// Export returns every set attribute of d, visible and hidden, plus the kind tag
// under KindKey. Unset hidden slots are omitted.
func Export(d Descriptor) Attrs {
	if d == nil {
		return nil
	}
	t := d.table()
	out := make(Attrs, len(t.attrs)+len(t.slots)+1)
	out[KindKey] = d.Kind().String()
	for _, a := range t.attrs {
		out[a.name] = load(a.ptr)
	}
	for _, s := range t.slots {
		if v := s.value(); v != nil {
			out[s.name] = v
		}
	}
	return out
}

// Args returns the constructor view of d: Export without the kind tag and
// without hidden slots.
func Args(d Descriptor) Attrs {
	out := Export(d)
	for name := range out {
		if strings.HasPrefix(name, hiddenMarker) {
			delete(out, name)
		}
	}
	return out
}

// Import sets every attribute of attrs on d. Keys are applied in sorted order, so
// importing twice is last-write-wins per key.
//
// A KindKey entry must match d's kind. Unknown names fail with ErrUnknownAttribute
// and values of the wrong type with ErrInvalidAttribute. On error d may be
// partially updated.
func Import(d Descriptor, attrs Attrs) error {
	if d == nil {
		return errors.Wrap(ErrNotImplemented, "import into nil descriptor")
	}
	t := d.table()
	kind := d.Kind()

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := attrs[name]
		if name == KindKey {
			tag, ok := value.(string)
			if !ok || tag != kind.String() {
				return errors.Wrapf(ErrUnknownKind, "%s: cannot import %s=%v", kind, KindKey, value)
			}
			continue
		}
		if a, ok := t.find(name); ok {
			if err := store(a.ptr, value); err != nil {
				return errors.Wrapf(err, "%s.%s", kind, name)
			}
			continue
		}
		s, ok, err := t.findSlot(name)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", kind, name)
		}
		if !ok {
			return errors.Wrapf(ErrUnknownAttribute, "%s has no attribute %q", kind, name)
		}
		if err := storeSlot(s, value); err != nil {
			return errors.Wrapf(err, "%s.%s", kind, name)
		}
	}
	if t.validate != nil {
		if err := t.validate(); err != nil {
			return errors.Wrapf(err, "%s", kind)
		}
	}
	return nil
}

// WeightSlots returns the hidden slot names d accepts, set or not.
func WeightSlots(d Descriptor) []string {
	if d == nil {
		return nil
	}
	if m, ok := d.(*Merge); ok {
		names := make([]string, m.NumInputs)
		for i := range names {
			names[i] = mergeSlotName(i)
		}
		return names
	}
	t := d.table()
	names := make([]string, len(t.slots))
	for i, s := range t.slots {
		names[i] = s.name
	}
	return names
}

// Describe returns a human-readable dump of d's kind tag and attributes.
func Describe(d Descriptor) string {
	if d == nil {
		return "Link: <nil>\n"
	}
	attrs := Export(d)
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if name != KindKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Link: %s\n", d.Kind())
	for _, name := range names {
		fmt.Fprintf(&b, "\t%s: %s\n", name, describeValue(attrs[name]))
	}
	return b.String()
}

func describeValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case *tensor.Tensor:
		return fmt.Sprintf("tensor %s %v (%s elements)", v.DType(), v.Shape(), humanize.Comma(int64(v.Len())))
	case nn.Initializer:
		kind, _ := v.JSONTags()
		body, err := json.Marshal(v)
		if err != nil {
			return kind
		}
		return kind + string(body)
	}
	return fmt.Sprint(v)
}

// load reads a typed attribute field into its exported form.
func load(ptr any) any {
	switch p := ptr.(type) {
	case *int:
		return *p
	case **int:
		if *p == nil {
			return nil
		}
		return **p
	case *float64:
		return *p
	case *bool:
		return *p
	case *string:
		return *p
	case *[]int:
		if *p == nil {
			return nil
		}
		return append([]int(nil), (*p)...)
	}
	panic(fmt.Sprintf("link: unsupported attribute field %T", ptr))
}

// store writes value into a typed attribute field, coercing the numeric and list
// types produced by JSON and YAML decoders.
func store(ptr any, value any) error {
	switch p := ptr.(type) {
	case *int:
		if value == nil {
			*p = 0
			return nil
		}
		v, err := toInt(value)
		if err != nil {
			return err
		}
		*p = v
	case **int:
		if value == nil {
			*p = nil
			return nil
		}
		if ip, ok := value.(*int); ok {
			if ip == nil {
				*p = nil
				return nil
			}
			value = *ip
		}
		v, err := toInt(value)
		if err != nil {
			return err
		}
		*p = &v
	case *float64:
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		*p = v
	case *bool:
		v, ok := value.(bool)
		if !ok {
			return errors.Wrapf(ErrInvalidAttribute, "want bool, got %T", value)
		}
		*p = v
	case *string:
		v, ok := value.(string)
		if !ok {
			return errors.Wrapf(ErrInvalidAttribute, "want string, got %T", value)
		}
		*p = v
	case *[]int:
		v, err := toInts(value)
		if err != nil {
			return err
		}
		*p = v
	default:
		panic(fmt.Sprintf("link: unsupported attribute field %T", ptr))
	}
	return nil
}

func storeSlot(s slot, value any) error {
	if s.tensor != nil {
		t, err := toTensor(value)
		if err != nil {
			return err
		}
		*s.tensor = t
		return nil
	}
	init, err := toInitializer(value)
	if err != nil {
		return err
	}
	*s.init = init
	return nil
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return intFrom64(v)
	case uint64:
		if v > math.MaxInt {
			return 0, errors.Wrapf(ErrInvalidAttribute, "integer %d out of range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, errors.Wrapf(ErrInvalidAttribute, "want integer, got %v", v)
		}
		// -float64(math.MinInt) is 2^(bits-1), exactly representable.
		if v < float64(math.MinInt) || v >= -float64(math.MinInt) {
			return 0, errors.Wrapf(ErrInvalidAttribute, "integer %v out of range", v)
		}
		return int(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidAttribute, "want integer, got %s", v)
		}
		return intFrom64(i)
	}
	return 0, errors.Wrapf(ErrInvalidAttribute, "want integer, got %T", value)
}

func intFrom64(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, errors.Wrapf(ErrInvalidAttribute, "integer %d out of range", v)
	}
	return int(v), nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidAttribute, "want number, got %s", v)
		}
		return f, nil
	}
	i, err := toInt(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAttribute, "want number, got %T", value)
	}
	return float64(i), nil
}

func toInts(value any) ([]int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []int:
		return append([]int(nil), v...), nil
	case []any:
		out := make([]int, len(v))
		for i, x := range v {
			n, err := toInt(x)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrInvalidAttribute, "want list of integers, got %T", value)
}

// toTensor accepts a tensor, its wire form, or a decoded JSON/YAML object of it.
func toTensor(value any) (*tensor.Tensor, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *tensor.Tensor:
		return v, nil
	case tensor.Wire:
		return tensor.FromWire(v)
	case Attrs:
		return toTensor(map[string]any(v))
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidAttribute, "tensor: %v", err)
		}
		t := new(tensor.Tensor)
		if err := json.Unmarshal(b, t); err != nil {
			return nil, errors.Wrapf(ErrInvalidAttribute, "tensor: %v", err)
		}
		return t, nil
	}
	return nil, errors.Wrapf(ErrInvalidAttribute, "want tensor, got %T", value)
}

// toInitializer accepts an initializer or a decoded JSON/YAML object carrying the
// "kind" and "interface" discriminators.
func toInitializer(value any) (nn.Initializer, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case nn.Initializer:
		return v, nil
	case Attrs:
		return toInitializer(map[string]any(v))
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidAttribute, "initializer: %v", err)
		}
		init, err := nn.UnmarshalInitializer(b)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidAttribute, "initializer: %v", err)
		}
		return init, nil
	}
	return nil, errors.Wrapf(ErrInvalidAttribute, "want initializer, got %T", value)
}
