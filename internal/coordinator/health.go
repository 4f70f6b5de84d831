package coordinator

import "time"

// BridgeStatus is the lifecycle state of one bridge.
type BridgeStatus string

const (
	StatusUninitialized BridgeStatus = "uninitialized"
	StatusInitializing  BridgeStatus = "initializing"
	StatusActive        BridgeStatus = "active"
	StatusError         BridgeStatus = "error"
	StatusMaintenance   BridgeStatus = "maintenance"
)

// BridgeHealth tracks liveness for one bridge. A record lives for the
// process lifetime and is reset to uninitialized only on shutdown.
type BridgeHealth struct {
	Name       string       `json:"name"`
	Status     BridgeStatus `json:"status"`
	LastCheck  time.Time    `json:"last_check"`
	ErrorCount int          `json:"error_count"`
	Message    string       `json:"message,omitempty"`
}
