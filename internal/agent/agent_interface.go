package agent

import (
	"context"

	"github.com/ashureev/skinmatch/internal/domain"
)

// Processor defines the interface for turn processing.
// This interface is implemented by the rule engine.
type Processor interface {
	// ProcessTurn handles one message against a session the caller holds
	// exclusively, mutating it in place.
	ProcessTurn(ctx context.Context, s *domain.Session, raw string) (Turn, error)
}

// Ensure Engine implements Processor.
var _ Processor = (*Engine)(nil)
