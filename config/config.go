// Package config loads pipeline specifications from YAML with environment
// variable overrides.
//
// A pipeline file lists stages by name:
//
//	stages:
//	  - name: intake
//	    capacity: 4
//	    workers: 2
//	    process: categorize
//	  - name: serve
//	    capacity: unbounded
//	    upstream: [intake]
//	    process: serve
//
// Capacity accepts a non-negative integer or the string "unbounded".
//
// Environment variables override file values using the pattern
// {Prefix}_{STAGE}_{FIELD}, with stage names converted to UPPER_SNAKE_CASE:
//
//	FLOWLINE_INTAKE_CAPACITY=8
//	FLOWLINE_INTAKE_WORKERS=4
//	FLOWLINE_SERVE_CAPACITY=unbounded
//
// Process functions cannot be expressed in a file; they are bound by name
// through a Registry when converting to a pipeline.Spec with ToSpec.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fxsml/flowline"
	"github.com/fxsml/flowline/pipeline"
	"github.com/fxsml/flowline/queue"
)

// Capacity is a queue capacity: a non-negative integer, or queue.Unbounded
// expressed as the YAML string "unbounded".
type Capacity int

// UnmarshalYAML accepts an integer or the "unbounded" sentinel.
func (c *Capacity) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: invalid capacity: %w", err)
	}
	switch v := raw.(type) {
	case string:
		return c.parse(v)
	case int:
		return c.set(v)
	default:
		return fmt.Errorf("config: invalid capacity %q", value.Value)
	}
}

func (c *Capacity) parse(s string) error {
	if strings.EqualFold(s, "unbounded") {
		*c = Capacity(queue.Unbounded)
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("config: invalid capacity %q", s)
	}
	return c.set(n)
}

func (c *Capacity) set(n int) error {
	if n < 0 {
		return fmt.Errorf("config: negative capacity %d", n)
	}
	*c = Capacity(n)
	return nil
}

// Stage describes one pipeline stage as declared in a file.
type Stage struct {
	Name     string   `yaml:"name"`
	Capacity Capacity `yaml:"capacity"`
	Workers  int      `yaml:"workers"`
	Upstream []string `yaml:"upstream"`
	Process  string   `yaml:"process"`
}

// File is a parsed pipeline configuration.
type File struct {
	Stages []Stage `yaml:"stages"`
}

// Loader reads pipeline configuration with environment overrides.
type Loader struct {
	// Prefix for environment variable names.
	// Default: "FLOWLINE".
	Prefix string

	// lookup overrides os.LookupEnv for testing.
	lookup func(string) (string, bool)
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return "FLOWLINE"
	}
	return l.Prefix
}

func (l Loader) lookupEnv(key string) (string, bool) {
	if l.lookup != nil {
		return l.lookup(key)
	}
	return os.LookupEnv(key)
}

// Load reads and parses the file at path, then applies env overrides.
func (l Loader) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return l.Parse(data)
}

// Parse parses YAML data and applies env overrides.
func (l Loader) Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Stages))
	for i := range f.Stages {
		stage := &f.Stages[i]
		if stage.Name == "" {
			return nil, fmt.Errorf("config: stage %d: missing name", i)
		}
		if _, dup := seen[stage.Name]; dup {
			return nil, fmt.Errorf("config: duplicate stage %q", stage.Name)
		}
		seen[stage.Name] = struct{}{}
		if err := l.applyEnv(stage); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func (l Loader) applyEnv(stage *Stage) error {
	key := l.prefix() + "_" + envSegment(stage.Name)

	if v, ok := l.lookupEnv(key + "_CAPACITY"); ok {
		if err := stage.Capacity.parse(v); err != nil {
			return err
		}
	}
	if v, ok := l.lookupEnv(key + "_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid workers %q for stage %q", v, stage.Name)
		}
		stage.Workers = n
	}
	return nil
}

// envSegment converts a stage name to UPPER_SNAKE_CASE.
func envSegment(name string) string {
	s := strings.ToUpper(name)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// Load reads the file at path using a default Loader.
func Load(path string) (*File, error) {
	return Loader{}.Load(path)
}

// Parse parses YAML data using a default Loader.
func Parse(data []byte) (*File, error) {
	return Loader{}.Parse(data)
}

// Registry binds process names used in configuration files to functions.
type Registry[T any] map[string]flowline.ProcessFunc[T, T]

// ToSpec converts a parsed File into a pipeline.Spec, resolving each stage's
// process name through reg.
func ToSpec[T any](f *File, reg Registry[T]) (pipeline.Spec[T], error) {
	spec := make(pipeline.Spec[T], len(f.Stages))
	for _, stage := range f.Stages {
		fn, ok := reg[stage.Process]
		if !ok {
			return nil, fmt.Errorf("config: unknown process %q for stage %q", stage.Process, stage.Name)
		}
		spec[stage.Name] = pipeline.Stage[T]{
			Capacity: int(stage.Capacity),
			Workers:  stage.Workers,
			Upstream: stage.Upstream,
			Process:  fn,
		}
	}
	return spec, nil
}
