// Package config loads declarative equipment configurations: a mapping of
// device name to a descriptor naming the driver type, the driver namespace,
// the resource locator, optional constructor options and an optional ordered
// initialization sequence.
//
// Documents may be JSON or YAML:
//
//	{
//	    "source_v_in": {
//	        "object": "Instrument",
//	        "definition": "scpi",
//	        "address": "TCPIP0::192.168.0.10::5025::SOCKET",
//	        "kwargs": {"timeout": 2000},
//	        "init": [
//	            ["write", {"command": "VOLT 0"}],
//	            ["clear", {}]
//	        ]
//	    }
//	}
//
// The loader performs structural parsing and validation only; resolving
// (definition, object) pairs to live drivers happens at bench resolution
// time, not load time. Document key order is preserved because environment
// resolution connects devices in encounter order.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrParse indicates a malformed equipment configuration document.
var ErrParse = errors.New("config: malformed equipment configuration")

// InitStep is one step of a device initialization sequence, declared in the
// document as a [methodName, argumentMap] pair.
type InitStep struct {
	Method string
	Args   map[string]any
}

func (s *InitStep) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: init step must be a [method, args] pair: %v", ErrParse, err)
	}
	if len(pair) == 0 || len(pair) > 2 {
		return fmt.Errorf("%w: init step must be a [method, args] pair, got %d elements", ErrParse, len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.Method); err != nil {
		return fmt.Errorf("%w: init step method must be a string: %v", ErrParse, err)
	}
	if len(pair) == 2 {
		if err := json.Unmarshal(pair[1], &s.Args); err != nil {
			return fmt.Errorf("%w: init step arguments must be a mapping: %v", ErrParse, err)
		}
	}

	return nil
}

func (s *InitStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 || len(node.Content) > 2 {
		return fmt.Errorf("%w: init step must be a [method, args] pair", ErrParse)
	}
	if err := node.Content[0].Decode(&s.Method); err != nil {
		return fmt.Errorf("%w: init step method must be a string: %v", ErrParse, err)
	}
	if len(node.Content) == 2 {
		if err := node.Content[1].Decode(&s.Args); err != nil {
			return fmt.Errorf("%w: init step arguments must be a mapping: %v", ErrParse, err)
		}
	}

	return nil
}

// DeviceDescriptor describes one device of the equipment configuration.
// Descriptors are immutable after load.
type DeviceDescriptor struct {
	// Name is the device name, the key of the configuration mapping.
	Name string `json:"-" yaml:"-"`

	// Object names the driver type within its namespace.
	Object string `json:"object" yaml:"object"`

	// Definition names the driver namespace the object resolves in.
	Definition string `json:"definition" yaml:"definition"`

	// Address is the resource locator string of the device.
	Address string `json:"address" yaml:"address"`

	// Kwargs holds constructor options passed to the driver factory.
	Kwargs map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`

	// Init is the ordered initialization sequence run after a successful
	// connection when initialization is requested.
	Init []InitStep `json:"init,omitempty" yaml:"init,omitempty"`
}

func (d *DeviceDescriptor) validate() error {
	if d.Object == "" {
		return fmt.Errorf("%w: device %q has no object", ErrParse, d.Name)
	}
	if d.Definition == "" {
		return fmt.Errorf("%w: device %q has no definition", ErrParse, d.Name)
	}
	if d.Address == "" {
		return fmt.Errorf("%w: device %q has no address", ErrParse, d.Name)
	}

	return nil
}

// Configuration is an equipment configuration: device name to descriptor,
// unique names, document encounter order preserved.
type Configuration struct {
	names   []string
	devices map[string]*DeviceDescriptor
}

func newConfiguration() *Configuration {
	return &Configuration{devices: make(map[string]*DeviceDescriptor)}
}

func (c *Configuration) add(desc *DeviceDescriptor) error {
	if err := desc.validate(); err != nil {
		return err
	}
	if _, exists := c.devices[desc.Name]; exists {
		return fmt.Errorf("%w: duplicate device name %q", ErrParse, desc.Name)
	}
	c.names = append(c.names, desc.Name)
	c.devices[desc.Name] = desc

	return nil
}

// Names returns the device names in document encounter order.
func (c *Configuration) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)

	return names
}

// Device returns the descriptor for a device name.
func (c *Configuration) Device(name string) (*DeviceDescriptor, bool) {
	desc, ok := c.devices[name]
	return desc, ok
}

// Has reports whether the configuration contains the device name.
func (c *Configuration) Has(name string) bool {
	_, ok := c.devices[name]
	return ok
}

// Len returns the number of configured devices.
func (c *Configuration) Len() int { return len(c.names) }

// Load reads an equipment configuration document from a file. Files with a
// .yaml or .yml extension are parsed as YAML, everything else as JSON.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON parses a JSON equipment configuration document, preserving the
// document's key order.
func ParseJSON(data []byte) (*Configuration, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: document root must be an object", ErrParse)
	}

	cfg := newConfiguration()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: device name must be a string", ErrParse)
		}

		desc := &DeviceDescriptor{Name: name}
		if err := dec.Decode(desc); err != nil {
			if errors.Is(err, ErrParse) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: device %q: %v", ErrParse, name, err)
		}
		if err := cfg.add(desc); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return cfg, nil
}

// ParseYAML parses a YAML equipment configuration document, preserving the
// document's key order.
func ParseYAML(data []byte) (*Configuration, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	cfg := newConfiguration()
	if len(root.Content) == 0 {
		return cfg, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document root must be a mapping", ErrParse)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		desc := &DeviceDescriptor{Name: name}
		if err := doc.Content[i+1].Decode(desc); err != nil {
			if errors.Is(err, ErrParse) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: device %q: %v", ErrParse, name, err)
		}
		if err := cfg.add(desc); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// FromMap builds a configuration from an already-parsed mapping. In-memory
// mappings carry no document order, so devices resolve in sorted name order.
func FromMap(devices map[string]DeviceDescriptor) (*Configuration, error) {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)

	cfg := newConfiguration()
	for _, name := range names {
		desc := devices[name]
		desc.Name = name
		if err := cfg.add(&desc); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
