package cognitive

import (
	"context"
	"errors"
	"testing"

	"github.com/aetheroos/aethero/internal/asl"
)

type stubHandler struct {
	minister asl.Minister
	out      map[string]any
	err      error
	calls    int
}

func (s *stubHandler) Minister() asl.Minister { return s.minister }

func (s *stubHandler) Process(_ context.Context, pc *Context) (map[string]any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func TestDispatchNoHandlers(t *testing.T) {
	d := NewDispatcher()
	res := d.Dispatch(context.Background(), "s1", "hello", nil)

	if !res.Success {
		t.Fatal("pipeline with no handlers should still complete")
	}
	if res.FinalState != StateCompleted {
		t.Fatalf("final state = %s, want %s", res.FinalState, StateCompleted)
	}
	if len(res.Responses) != len(Stages) {
		t.Fatalf("got %d responses, want %d", len(res.Responses), len(Stages))
	}
	for _, r := range res.Responses {
		if r.Output["error"] != "handler not registered" {
			t.Fatalf("stage %s output = %v", r.Minister, r.Output)
		}
	}
	if len(res.Output) != 0 {
		t.Fatalf("skipped stages must not contribute to synthesis: %v", res.Output)
	}
}

func TestDispatchSynthesisSkipsMissingHandlers(t *testing.T) {
	primus := &stubHandler{minister: asl.MinisterPrimus, out: map[string]any{"intent": "greet"}}

	d := NewDispatcher(primus)
	res := d.Dispatch(context.Background(), "s1", "hello", nil)

	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.ErrorMessage)
	}
	if len(res.Responses) != len(Stages) {
		t.Fatalf("got %d responses, want %d", len(res.Responses), len(Stages))
	}
	if _, ok := res.Output["strategic_analysis"]; !ok {
		t.Fatal("registered stage output missing from synthesis")
	}
	for _, key := range []string{"execution_plan", "memory_context", "interface_specification"} {
		if _, ok := res.Output[key]; ok {
			t.Fatalf("%s synthesized without a registered handler: %v", key, res.Output[key])
		}
	}
}

func TestDispatchStopsOnStageError(t *testing.T) {
	primus := &stubHandler{minister: asl.MinisterPrimus, out: map[string]any{"intent": "deploy"}}
	lucius := &stubHandler{minister: asl.MinisterLucius, err: errors.New("no capacity")}
	archivus := &stubHandler{minister: asl.MinisterArchivus, out: map[string]any{"memories": 0}}
	frontinus := &stubHandler{minister: asl.MinisterFrontinus, out: map[string]any{}}

	d := NewDispatcher(primus, lucius, archivus, frontinus)
	res := d.Dispatch(context.Background(), "s1", "deploy it", nil)

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.FinalState != StateError {
		t.Fatalf("final state = %s, want %s", res.FinalState, StateError)
	}
	if len(res.Responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(res.Responses))
	}
	if res.Responses[0].Err != "" || res.Responses[1].Err == "" {
		t.Fatalf("unexpected error placement: %+v", res.Responses)
	}
	if archivus.calls != 0 || frontinus.calls != 0 {
		t.Fatal("stages after a failure must not run")
	}
	if _, ok := res.Output["strategic_analysis"]; !ok {
		t.Fatal("successful stage output missing from synthesis")
	}
	if _, ok := res.Output["execution_plan"]; ok {
		t.Fatal("failed stage must not contribute to synthesis")
	}
}

func TestDispatchMergesStageData(t *testing.T) {
	primus := &stubHandler{minister: asl.MinisterPrimus, out: map[string]any{"intent": "build"}}
	var seen any
	lucius := &recordingHandler{minister: asl.MinisterLucius, record: func(pc *Context) {
		seen = pc.Data["intent"]
	}}

	d := NewDispatcher(primus, lucius)
	res := d.Dispatch(context.Background(), "s1", "build it", nil)

	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.ErrorMessage)
	}
	if seen != "build" {
		t.Fatalf("later stage saw data %v, want build", seen)
	}
}

type recordingHandler struct {
	minister asl.Minister
	record   func(pc *Context)
}

func (p *recordingHandler) Minister() asl.Minister { return p.minister }

func (p *recordingHandler) Process(_ context.Context, pc *Context) (map[string]any, error) {
	p.record(pc)
	return map[string]any{}, nil
}

func TestDispatchClearsActiveContext(t *testing.T) {
	d := NewDispatcher()
	d.Dispatch(context.Background(), "s1", "x", nil)

	if d.ActiveCount() != 0 {
		t.Fatal("context should be removed after dispatch")
	}
	if d.StatusFor("s1") != nil {
		t.Fatal("StatusFor should return nil for finished session")
	}
}

func TestDispatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primus := &stubHandler{minister: asl.MinisterPrimus, out: map[string]any{}}
	d := NewDispatcher(primus)
	res := d.Dispatch(ctx, "s1", "x", nil)

	if res.Success {
		t.Fatal("cancelled dispatch should fail")
	}
	if primus.calls != 0 {
		t.Fatal("no stage should run after cancellation")
	}
}

func TestStateFor(t *testing.T) {
	cases := map[asl.Minister]State{
		asl.MinisterPrimus:    StateAnalyzing,
		asl.MinisterLucius:    StatePlanning,
		asl.MinisterArchivus:  StateRemembering,
		asl.MinisterFrontinus: StateInterfacing,
		asl.Minister("nope"):  StateIdle,
	}
	for m, want := range cases {
		if got := StateFor(m); got != want {
			t.Errorf("StateFor(%s) = %s, want %s", m, got, want)
		}
	}
}
