package audit

import "go.uber.org/zap"

// LogWriter is a fallback EventWriter for local development.
// It logs events as structured JSON to stdout via zap.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter that outputs events to the given logger.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *DispatchEvent) {
	w.logger.Info("dispatch_event",
		zap.String("request_id", event.RequestID),
		zap.String("operation", event.Operation),
		zap.String("outcome", event.Outcome),
		zap.Any("masked_arguments", event.MaskedArguments),
		zap.Float64("safety_score", event.SafetyScore),
		zap.Bool("safety_safe", event.SafetySafe),
		zap.Strings("flagged_patterns", event.FlaggedPatterns),
		zap.String("error_message", event.ErrorMessage),
		zap.Float64("latency_ms", event.LatencyMs),
		zap.String("user_text_preview", event.UserTextPreview),
	)
}

func (w *LogWriter) Close() {}
