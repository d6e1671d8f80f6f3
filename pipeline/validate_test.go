package pipeline

import (
	"errors"
	"testing"
)

func passthrough(v int) (int, bool) { return v, true }

func TestValidate_CycleRejected(t *testing.T) {
	spec := Spec[int]{
		"a": {Upstream: []string{"b"}, Process: passthrough},
		"b": {Upstream: []string{"a"}, Process: passthrough},
	}

	_, err := Build(spec)
	if err == nil {
		t.Fatal("expected error for cyclic spec")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if len(cfgErr.Stages) < 3 {
		t.Fatalf("expected cycle path naming the stages, got %v", cfgErr.Stages)
	}
}

func TestValidate_SelfCycle(t *testing.T) {
	spec := Spec[int]{
		"loop": {Upstream: []string{"loop"}, Process: passthrough},
	}
	_, err := Build(spec)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestValidate_LongCycle(t *testing.T) {
	spec := Spec[int]{
		"a": {Upstream: []string{"c"}, Process: passthrough},
		"b": {Upstream: []string{"a"}, Process: passthrough},
		"c": {Upstream: []string{"b"}, Process: passthrough},
		"d": {Upstream: []string{"a"}, Process: passthrough}, // not on the cycle
	}
	_, err := Build(spec)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestValidate_DiamondIsAcyclic(t *testing.T) {
	// a -> b, a -> c, b -> d, c -> d: shared downstream, no cycle.
	spec := Spec[int]{
		"a": {Process: passthrough},
		"b": {Upstream: []string{"a"}, Process: passthrough},
		"c": {Upstream: []string{"a"}, Process: passthrough},
		"d": {Upstream: []string{"b", "c"}, Process: passthrough},
	}
	p, err := Build(spec)
	if err != nil {
		t.Fatalf("diamond rejected: %v", err)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestValidate_UnknownUpstream(t *testing.T) {
	spec := Spec[int]{
		"a": {Upstream: []string{"ghost"}, Process: passthrough},
	}
	_, err := Build(spec)
	if !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}

func TestValidate_NilProcess(t *testing.T) {
	spec := Spec[int]{
		"a": {},
	}
	_, err := Build(spec)
	if !errors.Is(err, ErrNilProcess) {
		t.Fatalf("expected ErrNilProcess, got %v", err)
	}
}

func TestValidate_EmptySpec(t *testing.T) {
	_, err := Build(Spec[int]{})
	if !errors.Is(err, ErrEmptySpec) {
		t.Fatalf("expected ErrEmptySpec, got %v", err)
	}
}
