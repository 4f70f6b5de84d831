package coordinator

import "context"

// funcBridge adapts plain functions into a Bridge. Nil functions are
// treated as trivially succeeding, so stateless bridges only supply
// what they need.
type funcBridge struct {
	name     string
	init     func(ctx context.Context) error
	health   func(ctx context.Context) error
	shutdown func(ctx context.Context) error
}

// NewBridge builds a Bridge from optional lifecycle functions.
func NewBridge(name string, init, health, shutdown func(ctx context.Context) error) Bridge {
	return &funcBridge{name: name, init: init, health: health, shutdown: shutdown}
}

func (b *funcBridge) Name() string { return b.name }

func (b *funcBridge) Init(ctx context.Context) error {
	if b.init == nil {
		return nil
	}
	return b.init(ctx)
}

func (b *funcBridge) Health(ctx context.Context) error {
	if b.health == nil {
		return nil
	}
	return b.health(ctx)
}

func (b *funcBridge) Shutdown(ctx context.Context) error {
	if b.shutdown == nil {
		return nil
	}
	return b.shutdown(ctx)
}

// BridgeNames lists the coordinator's bridges in initialization order.
var BridgeNames = []string{"memory", "parser", "cognitive", "server", "interface"}
