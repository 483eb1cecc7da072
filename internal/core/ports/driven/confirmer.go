package driven

import "context"

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	// Confirm returns true only on an explicit yes.
	Confirm(ctx context.Context, prompt string) (bool, error)
}
