package observability

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the run's structured logger (§4.4 phase 3 "replace the
// bootstrap logger with the configured one"). jsonFormat selects JSON vs
// logrus's human-readable text formatter; level parses a logrus level name,
// defaulting to info on an unrecognized value.
func NewLogger(levelName string, jsonFormat bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// BufferingHook captures every log entry in memory instead of writing it,
// the mechanism behind phase 1's "buffering logger that captures records
// in memory" (§4.4). Replay re-emits the captured entries through a real
// logger once phase 3 constructs one.
type BufferingHook struct {
	entries []*logrus.Entry
}

// NewBootstrapLogger returns a logrus.Logger wired to a BufferingHook and
// the hook itself, so Replay can later drain it into the configured logger.
func NewBootstrapLogger() (*logrus.Logger, *BufferingHook) {
	hook := &BufferingHook{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func (h *BufferingHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *BufferingHook) Fire(entry *logrus.Entry) error {
	// Entry.Logger and Entry.Buffer point back at state that changes after
	// Fire returns; clone the parts Replay needs.
	clone := logrus.NewEntry(entry.Logger)
	clone.Data = make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		clone.Data[k] = v
	}
	clone.Time = entry.Time
	clone.Level = entry.Level
	clone.Message = entry.Message
	h.entries = append(h.entries, clone)
	return nil
}

// Replay re-emits every buffered entry through target, preserving level,
// fields, and message.
func (h *BufferingHook) Replay(target *logrus.Logger) {
	for _, entry := range h.entries {
		target.WithFields(entry.Data).Log(entry.Level, entry.Message)
	}
}
