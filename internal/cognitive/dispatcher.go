package cognitive

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aetheroos/aethero/internal/asl"
)

// Output keys under which each stage's contribution is surfaced in the
// synthesized result.
var outputKeys = map[asl.Minister]string{
	asl.MinisterPrimus:    "strategic_analysis",
	asl.MinisterLucius:    "execution_plan",
	asl.MinisterArchivus:  "memory_context",
	asl.MinisterFrontinus: "interface_specification",
}

// Dispatcher runs parsed requests through the registered stage
// handlers in fixed order.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[asl.Minister]Handler
	active   map[string]*Context
}

func NewDispatcher(handlers ...Handler) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[asl.Minister]Handler),
		active:   make(map[string]*Context),
	}
	for _, h := range handlers {
		d.handlers[h.Minister()] = h
	}
	return d
}

// Register installs or replaces the handler for its minister.
func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[h.Minister()] = h
}

// Handler returns the registered handler for a minister, if any.
func (d *Dispatcher) Handler(m asl.Minister) (Handler, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.handlers[m]
	return h, ok
}

// StatusFor returns a snapshot of the active pipeline context for a
// session, or nil when the session has no request in flight.
func (d *Dispatcher) StatusFor(sessionID string) *Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	pc, ok := d.active[sessionID]
	if !ok {
		return nil
	}
	snap := *pc
	return &snap
}

// ActiveCount reports how many requests are currently in flight.
func (d *Dispatcher) ActiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.active)
}

// Dispatch runs one request through all four stages. A stage without a
// registered handler is recorded and skipped; a stage returning an
// error stops the pipeline. A second Dispatch for the same session id
// replaces the visible context of the first.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, input string, parsed *asl.ParseResult) *Result {
	start := time.Now()
	pc := &Context{
		SessionID:    sessionID,
		UserInput:    input,
		Parsed:       parsed,
		CurrentState: StateIdle,
		Data:         make(map[string]any),
		StartedAt:    start,
	}

	d.mu.Lock()
	d.active[sessionID] = pc
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.active, sessionID)
		d.mu.Unlock()
	}()

	res := &Result{
		Success:   true,
		SessionID: sessionID,
		Output:    make(map[string]any),
	}

	for _, minister := range Stages {
		if err := ctx.Err(); err != nil {
			pc.CurrentState = StateError
			res.Success = false
			res.ErrorMessage = err.Error()
			break
		}

		d.mu.Lock()
		h, ok := d.handlers[minister]
		pc.ActiveMinister = minister
		pc.CurrentState = StateFor(minister)
		pc.Chain = append(pc.Chain, string(minister))
		d.mu.Unlock()

		if !ok {
			res.Responses = append(res.Responses, MinisterResponse{
				Minister: minister,
				State:    pc.CurrentState,
				Output:   map[string]any{"error": "handler not registered"},
			})
			continue
		}

		out, err := h.Process(ctx, pc)
		if err != nil {
			log.Printf("cognitive: %s stage failed for session %s: %v", minister, sessionID, err)
			d.mu.Lock()
			pc.CurrentState = StateError
			d.mu.Unlock()
			res.Responses = append(res.Responses, MinisterResponse{
				Minister: minister,
				State:    StateError,
				Err:      err.Error(),
			})
			res.Success = false
			res.ErrorMessage = fmt.Sprintf("%s: %v", minister, err)
			break
		}

		d.mu.Lock()
		for k, v := range out {
			pc.Data[k] = v
		}
		d.mu.Unlock()
		res.Responses = append(res.Responses, MinisterResponse{
			Minister: minister,
			State:    pc.CurrentState,
			Output:   out,
		})
	}

	for _, r := range res.Responses {
		if r.Err != "" {
			continue
		}
		// Missing-handler markers carry an error key and contribute no
		// stage data.
		if _, failed := r.Output["error"]; failed {
			continue
		}
		if key, ok := outputKeys[r.Minister]; ok {
			res.Output[key] = r.Output
		}
	}

	if res.Success {
		pc.CurrentState = StateCompleted
	}
	res.FinalState = pc.CurrentState
	res.ProcessingTime = time.Since(start)
	return res
}
