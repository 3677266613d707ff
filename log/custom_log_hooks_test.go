package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCustomLogHook(t *testing.T) {
	sl, err := NewSubLogger("hooktest")
	require.NoError(t, err, "NewSubLogger must not error")
	var buf bytes.Buffer
	sl.SetOutput(&buf)
	sl.SetLevels(splitLevel("INFO|WARN"))

	var captured []Entry
	previous := SetCustomLogHook(func(e Entry) bool {
		if e.SubLogger != "HOOKTEST" {
			return false
		}
		captured = append(captured, e)
		return e.Level == "INFO"
	})
	t.Cleanup(func() { SetCustomLogHook(previous) })

	Infof(sl, "ranked %d assets", 3)
	assert.Zero(t, buf.Len(), "bypassed log must not reach the writer")
	Warnln(sl, "optimiser", "stalled")
	assert.Contains(t, buf.String(), "optimiser stalled", "hook returning false should keep the line")
	Debugf(sl, "disabled")

	require.Len(t, captured, 2, "disabled levels should not reach the hook")
	assert.Equal(t, Entry{Level: "INFO", SubLogger: "HOOKTEST", Header: captured[0].Header, Message: "ranked 3 assets"}, captured[0])
	assert.Equal(t, "WARN", captured[1].Level)

	restored := SetCustomLogHook(previous)
	require.NotNil(t, restored, "SetCustomLogHook must return the installed hook")
}

func TestLevelString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "INFO", infoLevel.String())
	assert.Equal(t, "DEBUG", debugLevel.String())
	assert.Equal(t, "WARN", warnLevel.String())
	assert.Equal(t, "ERROR", errorLevel.String())
	assert.Equal(t, "UNKNOWN", level(99).String())
}
