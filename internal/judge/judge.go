// Package judge defines the crisis negotiation oracle contract and a local,
// deterministic implementation.
package judge

import (
	"context"

	"statecraft/internal/deck"
)

// Role labels a transcript entry.
const (
	RolePlayer = "player"
	RoleNPC    = "npc"
)

// Turn is one exchange in a negotiation transcript.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// GaugeContext carries everything an oracle needs about the exhausted gauge.
type GaugeContext struct {
	Gauge   deck.Gauge
	Profile deck.GaugeProfile
	State   deck.GaugeState
}

// Verdict is the oracle's ruling on one player submission.
type Verdict struct {
	Success     bool
	NPCResponse string
}

// Judge rules on crisis negotiation pleas. Implementations must be callable
// repeatedly with a growing transcript, and must surface failures as errors
// rather than folding them into a false verdict.
type Judge interface {
	Negotiate(ctx context.Context, transcript []Turn, gc GaugeContext) (Verdict, error)
}
