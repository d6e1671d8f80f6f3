package pipeline

import (
	"fmt"
	"slices"
	"sort"
)

type color uint8

const (
	unvisited color = iota
	inProgress
	done
)

// validate checks the spec before anything is constructed: every stage has a
// process function, every upstream reference resolves, and the dependency
// graph is acyclic. Runs in O(stages + edges).
func validate[T any](spec Spec[T]) error {
	if len(spec) == 0 {
		return &ConfigError{Err: ErrEmptySpec}
	}

	names := sortedNames(spec)
	for _, name := range names {
		stage := spec[name]
		if stage.Process == nil {
			return &ConfigError{Stages: []string{name}, Err: ErrNilProcess}
		}
		for _, up := range stage.Upstream {
			if _, ok := spec[up]; !ok {
				return &ConfigError{
					Stages: []string{name},
					Err:    fmt.Errorf("%w %q in upstream", ErrUnknownStage, up),
				}
			}
		}
	}

	// Depth-first traversal over upstream edges. A stage revisited while
	// still in progress closes a cycle; the in-progress stack at that
	// point holds the cycle path.
	colors := make(map[string]color, len(spec))
	var stack []string

	var visit func(name string) *ConfigError
	visit = func(name string) *ConfigError {
		colors[name] = inProgress
		stack = append(stack, name)

		for _, up := range spec[name].Upstream {
			switch colors[up] {
			case inProgress:
				start := slices.Index(stack, up)
				cycle := append(slices.Clone(stack[start:]), up)
				return &ConfigError{Stages: cycle, Err: ErrCycle}
			case unvisited:
				if err := visit(up); err != nil {
					return err
				}
			}
		}

		colors[name] = done
		stack = stack[:len(stack)-1]
		return nil
	}

	for _, name := range names {
		if colors[name] != unvisited {
			continue
		}
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames[T any](spec Spec[T]) []string {
	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
