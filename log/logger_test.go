package log

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWriteFailed }

func TestNewSubLogger(t *testing.T) {
	t.Parallel()
	_, err := NewSubLogger("")
	assert.ErrorIs(t, err, errEmptyLoggerName)

	sl, err := NewSubLogger("newsublogger")
	require.NoError(t, err, "NewSubLogger must not error")
	assert.Equal(t, "NEWSUBLOGGER", sl.Name())

	_, err = NewSubLogger("NewSubLogger")
	assert.ErrorIs(t, err, errSubLoggerAlreadyRegistered)
}

func TestLevels(t *testing.T) {
	t.Parallel()
	sl, err := NewSubLogger("levels")
	require.NoError(t, err, "NewSubLogger must not error")
	var buf bytes.Buffer
	sl.SetOutput(&buf)
	sl.SetLevels(Levels{Warn: true})
	assert.Equal(t, Levels{Warn: true}, sl.GetLevels())

	Info(sl, "hidden")
	Debugf(sl, "hidden %d", 1)
	Errorln(sl, "hidden")
	assert.Zero(t, buf.Len(), "disabled levels must not write")

	Warnln(sl, "drift", 0.5)
	out := buf.String()
	assert.Contains(t, out, "drift 0.5")
	assert.True(t, strings.HasSuffix(out, "\n"), "log line must be newline terminated")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNilSubLoggerDoesNotPanic(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { Info(nil, "nothing") })
	assert.Empty(t, (*SubLogger)(nil).Name())
}

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Levels{Info: true, Error: true}, splitLevel("INFO|error"))
	assert.Equal(t, Levels{}, splitLevel(""))
	assert.Equal(t, Levels{Info: true, Debug: true, Warn: true, Error: true}, splitLevel("DEBUG|INFO|WARN|ERROR"))
}

func TestGetWriters(t *testing.T) {
	t.Parallel()
	_, err := getWriters(nil)
	assert.ErrorIs(t, err, errSubloggerConfigIsNil)

	_, err = getWriters(&SubLoggerConfig{Output: "printer"})
	assert.ErrorIs(t, err, errUnhandledOutputWriter)

	w, err := getWriters(&SubLoggerConfig{Output: "stdout|stderr"})
	require.NoError(t, err, "getWriters must not error")
	assert.IsType(t, &multiWriter{}, w)

	w, err = getWriters(&SubLoggerConfig{Output: "discard"})
	require.NoError(t, err, "getWriters must not error")
	assert.Equal(t, io.Discard, w)
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()
	var a, b bytes.Buffer
	w, err := MultiWriter(&a, &b)
	require.NoError(t, err, "MultiWriter must not error")
	mw, ok := w.(*multiWriter)
	require.True(t, ok, "MultiWriter must return a *multiWriter")

	assert.ErrorIs(t, mw.Add(&a), errWriterAlreadyLoaded)
	assert.ErrorIs(t, mw.Add(nil), errNilWriter)

	n, err := mw.Write([]byte("abc"))
	require.NoError(t, err, "Write must not error")
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", a.String())
	assert.Equal(t, "abc", b.String())

	require.NoError(t, mw.Remove(&a), "Remove must not error")
	assert.ErrorIs(t, mw.Remove(&a), errWriterNotFound)

	require.NoError(t, mw.Add(failingWriter{}), "Add must not error")
	_, err = mw.Write([]byte("x"))
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	c := GenDefaultSettings()
	l := newLogger(&c)
	assert.True(t, l.ShowLogSystemName)
	assert.Equal(t, "[INFO]", l.InfoHeader)
	assert.Equal(t, spacer, l.Spacer)
}

func TestLogFieldsWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := &logFields{
		info:   true,
		name:   "ALLOCATION",
		output: &buf,
		logger: Logger{ShowLogSystemName: true, Spacer: " | ", InfoHeader: "[INFO]"},
	}
	h, ok := f.header(infoLevel)
	require.True(t, ok, "info level must be enabled")
	require.NoError(t, f.write(h, "weights set"), "write must not error")
	assert.Equal(t, "[INFO] | ALLOCATION | weights set\n", buf.String())

	_, ok = f.header(warnLevel)
	assert.False(t, ok, "warn level must be disabled")
}
