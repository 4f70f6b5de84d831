// Package coordinator owns the bridges that connect the cognitive
// pipeline to parsing, storage, transport, and presentation, and
// exposes the single process-request entry point.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/cognitive"
	"github.com/aetheroos/aethero/internal/memory"
)

// ErrNotInitialized is returned by ProcessRequest before InitializeAll
// has succeeded or after Shutdown.
var ErrNotInitialized = errors.New("coordinator not initialized")

// ErrNoHandler is returned by MinisterDirect when no handler is
// registered for the named minister.
var ErrNoHandler = errors.New("no handler registered for minister")

// Bridge is one adapter the coordinator owns. Init failures are
// recorded per bridge and do not stop the other bridges from
// initializing.
type Bridge interface {
	Name() string
	Init(ctx context.Context) error
	Health(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Broadcaster fans out processed-request events to subscribed
// connections. Delivery is best-effort.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Response aggregates the outcome of one processed request.
type Response struct {
	SessionID string            `json:"session_id"`
	Parse     *asl.ParseResult  `json:"parse_result"`
	Cognitive *cognitive.Result `json:"cognitive_result"`
	MemoryID  string            `json:"memory_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Coordinator wires the bridges together. Bridges initialize in fixed
// order: memory, parser, cognitive, server, interface.
type Coordinator struct {
	mu          sync.Mutex
	bridges     []Bridge
	health      map[string]*BridgeHealth
	initialized bool

	dispatcher  *cognitive.Dispatcher
	memory      *memory.Store
	audit       *audit.Store
	broadcaster Broadcaster
}

// Options carries the bridge dependencies. Audit and Broadcaster may
// be nil; processing then skips those steps.
type Options struct {
	Dispatcher  *cognitive.Dispatcher
	Memory      *memory.Store
	Audit       *audit.Store
	Broadcaster Broadcaster
	Bridges     []Bridge
}

func New(opts Options) *Coordinator {
	c := &Coordinator{
		bridges:     opts.Bridges,
		health:      make(map[string]*BridgeHealth),
		dispatcher:  opts.Dispatcher,
		memory:      opts.Memory,
		audit:       opts.Audit,
		broadcaster: opts.Broadcaster,
	}
	for _, b := range c.bridges {
		c.health[b.Name()] = &BridgeHealth{Name: b.Name(), Status: StatusUninitialized}
	}
	return c
}

// SetBroadcaster installs the event fan-out target. Useful when the
// transport layer is constructed after the coordinator.
func (c *Coordinator) SetBroadcaster(b Broadcaster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcaster = b
}

// InitializeAll initializes every bridge in order. One bridge's
// failure does not stop the rest; the coordinator counts as
// initialized only when all bridges came up.
func (c *Coordinator) InitializeAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var failed []string
	for _, b := range c.bridges {
		h := c.health[b.Name()]
		h.Status = StatusInitializing
		h.LastCheck = time.Now()

		if err := b.Init(ctx); err != nil {
			log.Printf("coordinator: initializing %s bridge: %v", b.Name(), err)
			h.Status = StatusError
			h.ErrorCount++
			h.Message = err.Error()
			failed = append(failed, b.Name())
			continue
		}
		h.Status = StatusActive
		h.Message = ""
	}

	if len(failed) > 0 {
		return fmt.Errorf("bridges failed to initialize: %v", failed)
	}
	c.initialized = true
	return nil
}

// ProcessRequest runs one request through parse, dispatch, memory
// ingest, and broadcast. Stage failures are reported inside the
// response; only an uninitialized coordinator returns an error.
func (c *Coordinator) ProcessRequest(ctx context.Context, sessionID, input string) (*Response, error) {
	c.mu.Lock()
	ready := c.initialized
	broadcaster := c.broadcaster
	c.mu.Unlock()
	if !ready {
		return nil, ErrNotInitialized
	}

	parsed := asl.Parse(input)

	// Stages only see tags from a valid parse; the parse result itself
	// is always reported in the response.
	var stageParse *asl.ParseResult
	if parsed.IsValid {
		stageParse = &parsed
	}
	result := c.dispatcher.Dispatch(ctx, sessionID, input, stageParse)

	resp := &Response{
		SessionID: sessionID,
		Parse:     &parsed,
		Cognitive: result,
		Timestamp: time.Now(),
	}

	if result.Success && c.memory != nil {
		id, err := c.memory.Ingest(ctx, input, memory.TypeUserInteraction, "coordinator",
			map[string]string{"session_id": sessionID}, 0.5)
		if err != nil {
			log.Printf("coordinator: ingesting request memory: %v", err)
		} else {
			resp.MemoryID = id
		}
	}

	if broadcaster != nil {
		broadcaster.Broadcast("request_processed", resp)
	}

	if c.audit != nil {
		compliance := audit.ComplianceCompliant
		if !result.Success {
			compliance = audit.ComplianceWarning
		}
		if _, err := c.audit.Log(ctx, audit.Entry{
			EventType:  audit.EventUserInteraction,
			Minister:   string(parsed.Routing),
			Action:     "process_request",
			Target:     sessionID,
			Compliance: compliance,
			SessionID:  sessionID,
		}); err != nil {
			log.Printf("coordinator: writing audit entry: %v", err)
		}
	}

	return resp, nil
}

// MinisterDirect runs a single minister's stage against the input,
// outside the full pipeline.
func (c *Coordinator) MinisterDirect(ctx context.Context, minister asl.Minister, sessionID, input string) (map[string]any, error) {
	c.mu.Lock()
	ready := c.initialized
	c.mu.Unlock()
	if !ready {
		return nil, ErrNotInitialized
	}

	h, ok := c.dispatcher.Handler(minister)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, minister)
	}

	parsed := asl.Parse(input)
	pc := &cognitive.Context{
		SessionID:    sessionID,
		UserInput:    input,
		Parsed:       &parsed,
		CurrentState: cognitive.StateFor(minister),
		Data:         make(map[string]any),
		StartedAt:    time.Now(),
	}
	out, err := h.Process(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", minister, err)
	}
	return out, nil
}

// HealthCheck probes every bridge. A bridge whose probe fails has its
// error count incremented and status set to error; the others are
// untouched. Returns true only when every bridge is healthy.
func (c *Coordinator) HealthCheck(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	healthy := true
	for _, b := range c.bridges {
		h := c.health[b.Name()]
		h.LastCheck = time.Now()
		if err := b.Health(ctx); err != nil {
			h.Status = StatusError
			h.ErrorCount++
			h.Message = err.Error()
			healthy = false
			continue
		}
		// A bridge that has never been initialized stays uninitialized;
		// a passing probe only restores bridges that were brought up.
		if h.Status != StatusUninitialized {
			h.Status = StatusActive
			h.Message = ""
		}
	}
	return healthy
}

// Health returns a snapshot of every bridge's health record.
func (c *Coordinator) Health() []BridgeHealth {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]BridgeHealth, 0, len(c.bridges))
	for _, b := range c.bridges {
		out = append(out, *c.health[b.Name()])
	}
	return out
}

// Initialized reports whether InitializeAll succeeded and Shutdown has
// not been called since.
func (c *Coordinator) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// ActiveSessions reports the number of in-flight pipeline requests.
func (c *Coordinator) ActiveSessions() int {
	return c.dispatcher.ActiveCount()
}

// Shutdown stops every bridge and resets health records to
// uninitialized. Safe to call more than once.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized && allUninitialized(c.health) {
		return
	}
	for _, b := range c.bridges {
		if err := b.Shutdown(ctx); err != nil {
			log.Printf("coordinator: shutting down %s bridge: %v", b.Name(), err)
		}
		h := c.health[b.Name()]
		h.Status = StatusUninitialized
		h.LastCheck = time.Now()
		h.Message = ""
	}
	c.initialized = false
}

func allUninitialized(health map[string]*BridgeHealth) bool {
	for _, h := range health {
		if h.Status != StatusUninitialized {
			return false
		}
	}
	return true
}
