package mapper

import "context"

// Classifier turns free interest text into raw category candidates.
// Implementations may return anything; the service validates the
// candidates against the vocabulary.
type Classifier interface {
	Classify(ctx context.Context, interest string) ([]string, error)
}
