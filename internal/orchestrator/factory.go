package orchestrator

import (
	"chartlens/internal/capture"
	"chartlens/internal/display"
	"chartlens/internal/interfaces"
)

func New(src *capture.Source, c interfaces.ImageClassifier, a interfaces.ChartAnalyzer, b *display.Board, sinks ...interfaces.OutcomeSink) interfaces.Orchestrator {
	return newOrchestrator(src, c, a, b, sinks...)
}
