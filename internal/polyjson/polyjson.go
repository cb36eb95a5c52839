// Package polyjson serializes values of a registered interface family to JSON and
// back, using a "kind" discriminator injected next to the value's own fields.
//
// Concrete types implement Identifiable and register a constructor once:
//
//	func (c *Constant) JSONTags() (string, string) { return "Constant", "Initializer" }
//
//	func init() {
//		polyjson.Register(func() Initializer { return &Constant{} })
//	}
//
// Decoding is two-pass: the discriminators are read first, then the full document is
// unmarshaled into a fresh instance of the registered concrete type.
package polyjson

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Discriminator keys injected into every encoded object.
const (
	KindKey      = "kind"
	InterfaceKey = "interface"
)

// Identifiable is implemented by every concrete type of a polymorphic family.
type Identifiable interface {
	// JSONTags returns the unique name of the concrete type and of its interface family.
	JSONTags() (typeName string, interfaceName string)
}

var (
	// Maps interface name -> concrete type name -> constructor.
	registry   = make(map[string]map[string]func() Identifiable)
	registryMu sync.RWMutex
)

// Register records the constructor of a concrete type under the tags it reports.
func Register[T Identifiable](constructor func() T) {
	registryMu.Lock()
	defer registryMu.Unlock()

	typeName, interfaceName := constructor().JSONTags()
	if _, exists := registry[interfaceName]; !exists {
		registry[interfaceName] = make(map[string]func() Identifiable)
	}
	registry[interfaceName][typeName] = func() Identifiable { return constructor() }
}

// Kinds returns the registered concrete type names of an interface family.
func Kinds(interfaceName string) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var names []string
	for name := range registry[interfaceName] {
		names = append(names, name)
	}
	return names
}

// Marshal encodes value as a flat JSON object carrying its discriminators.
func Marshal(value Identifiable) ([]byte, error) {
	if value == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrapf(err, "polyjson: marshaling %T", value)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Wrapf(err, "polyjson: %T does not encode as a JSON object", value)
	}
	typeName, interfaceName := value.JSONTags()
	fields[KindKey], _ = json.Marshal(typeName)
	fields[InterfaceKey], _ = json.Marshal(interfaceName)
	return json.Marshal(fields)
}

// Unmarshal decodes b into target, instantiating the registered concrete type.
func Unmarshal[I Identifiable](b []byte, target *I) error {
	if len(b) == 0 || string(b) == "null" {
		var zero I
		*target = zero
		return nil
	}

	// Pass 1: discriminators.
	var tags struct {
		Kind      string `json:"kind"`
		Interface string `json:"interface"`
	}
	if err := json.Unmarshal(b, &tags); err != nil {
		return errors.Wrap(err, "polyjson: reading discriminators")
	}

	registryMu.RLock()
	constructor, ok := registry[tags.Interface][tags.Kind]
	registryMu.RUnlock()
	if !ok {
		return errors.Errorf("polyjson: unknown kind %q for interface %q", tags.Kind, tags.Interface)
	}

	// Pass 2: the concrete value. Unknown discriminator fields are ignored by encoding/json.
	instance := constructor()
	if err := json.Unmarshal(b, instance); err != nil {
		return errors.Wrapf(err, "polyjson: loading %T", instance)
	}
	typed, ok := instance.(I)
	if !ok {
		return errors.Errorf("polyjson: %T does not implement the requested interface", instance)
	}
	*target = typed
	return nil
}
