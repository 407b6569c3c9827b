package classifierobs

import (
	"context"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/trace"
	"chartlens/internal/types"
)

// observableClassifier wraps an ImageClassifier with logging and tracing
type observableClassifier struct {
	classifier interfaces.ImageClassifier
}

var _ interfaces.ImageClassifier = (*observableClassifier)(nil)

func Wrap(c interfaces.ImageClassifier) interfaces.ImageClassifier {
	return &observableClassifier{classifier: c}
}

func (oc *observableClassifier) Classify(ctx context.Context, img *types.CapturedImage) (types.Verdict, error) {
	ctx, span := trace.StartSpan(ctx, "classifier.Classify")
	defer span.End()

	start := time.Now()
	var id string
	var w, h int
	if img != nil {
		id, w, h = img.ID, img.Width, img.Height
	}

	logger.DebugSkip(ctx, 1, "Classifying image", "image_id", id, "width", w, "height", h)

	v, err := oc.classifier.Classify(ctx, img)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Classification failed", err,
			"image_id", id,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.Verdict{}, err
	}

	logger.InfoSkip(ctx, 1, "Classification completed",
		"image_id", id,
		"is_chart", v.IsChart,
		"wide", v.Wide,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return v, nil
}
