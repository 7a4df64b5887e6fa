package observability_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/observability"
)

func TestNewLogger_DefaultsToInfoOnBadLevel(t *testing.T) {
	logger := observability.NewLogger("not-a-level", true)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewLogger_JSONVsText(t *testing.T) {
	jsonLogger := observability.NewLogger("debug", true)
	_, ok := jsonLogger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	textLogger := observability.NewLogger("debug", false)
	_, ok = textLogger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestBufferingHook_ReplayPreservesFieldsAndLevel(t *testing.T) {
	bootstrap, hook := observability.NewBootstrapLogger()
	bootstrap.WithField("phase", "bootstrap").Warn("discovering plugins")

	target := observability.NewLogger("debug", true)
	var captured []*logrus.Entry
	target.AddHook(&captureHook{out: &captured})

	hook.Replay(target)

	require.Len(t, captured, 1)
	assert.Equal(t, logrus.WarnLevel, captured[0].Level)
	assert.Equal(t, "discovering plugins", captured[0].Message)
	assert.Equal(t, "bootstrap", captured[0].Data["phase"])
}

type captureHook struct {
	out *[]*logrus.Entry
}

func (c *captureHook) Levels() []logrus.Level { return logrus.AllLevels }
func (c *captureHook) Fire(e *logrus.Entry) error {
	*c.out = append(*c.out, e)
	return nil
}
