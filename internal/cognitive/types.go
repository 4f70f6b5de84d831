// Package cognitive runs requests through the four-stage ministerial
// pipeline: primus analyzes, lucius plans execution, archivus recalls
// memory, and frontinus specifies the interface.
package cognitive

import (
	"context"
	"time"

	"github.com/aetheroos/aethero/internal/asl"
)

// State is the position of a request inside the pipeline.
type State string

const (
	StateIdle        State = "idle"
	StateAnalyzing   State = "analyzing"
	StatePlanning    State = "planning"
	StateRemembering State = "remembering"
	StateInterfacing State = "interfacing"
	StateCompleted   State = "completed"
	StateError       State = "error"
)

// Stages lists the ministers in pipeline order.
var Stages = []asl.Minister{
	asl.MinisterPrimus,
	asl.MinisterLucius,
	asl.MinisterArchivus,
	asl.MinisterFrontinus,
}

var stageStates = map[asl.Minister]State{
	asl.MinisterPrimus:    StateAnalyzing,
	asl.MinisterLucius:    StatePlanning,
	asl.MinisterArchivus:  StateRemembering,
	asl.MinisterFrontinus: StateInterfacing,
}

// StateFor returns the state a request enters while a given minister
// processes it.
func StateFor(m asl.Minister) State {
	if s, ok := stageStates[m]; ok {
		return s
	}
	return StateIdle
}

// Context carries a single request through the pipeline. Each stage
// reads the accumulated Data and merges its own contribution back in.
type Context struct {
	SessionID      string           `json:"session_id"`
	UserInput      string           `json:"user_input"`
	Parsed         *asl.ParseResult `json:"parsed,omitempty"`
	CurrentState   State            `json:"current_state"`
	ActiveMinister asl.Minister     `json:"active_minister,omitempty"`
	Chain          []string         `json:"processing_chain"`
	Data           map[string]any   `json:"data"`
	StartedAt      time.Time        `json:"started_at"`
}

// MinisterResponse records one stage's outcome in the chain.
type MinisterResponse struct {
	Minister asl.Minister   `json:"minister"`
	State    State          `json:"state"`
	Output   map[string]any `json:"output"`
	Err      string         `json:"error,omitempty"`
}

// Result is the synthesized outcome of a full pipeline run.
type Result struct {
	Success        bool               `json:"success"`
	SessionID      string             `json:"session_id"`
	Output         map[string]any     `json:"output"`
	Responses      []MinisterResponse `json:"minister_responses"`
	ProcessingTime time.Duration      `json:"processing_time"`
	FinalState     State              `json:"final_state"`
	ErrorMessage   string             `json:"error_message,omitempty"`
}

// Handler is one minister's stage of the pipeline. Process returns the
// data to merge into the shared pipeline context.
type Handler interface {
	Minister() asl.Minister
	Process(ctx context.Context, pc *Context) (map[string]any, error)
}
