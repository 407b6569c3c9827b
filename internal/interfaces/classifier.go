package interfaces

import (
	"context"

	"chartlens/internal/types"
)

// ImageClassifier decides whether a captured image shows a financial chart.
// The shipped implementation is a heuristic stand-in; a real model plugs in here.
type ImageClassifier interface {
	Classify(ctx context.Context, img *types.CapturedImage) (types.Verdict, error)
}
