package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

type level uint8

const (
	infoLevel level = iota
	debugLevel
	warnLevel
	errorLevel
)

// Info writes data to the sub logger at info level
func Info(sl *SubLogger, data string) {
	emit(sl, infoLevel, data)
}

// Infoln writes the space separated values to the sub logger at info level
func Infoln(sl *SubLogger, v ...any) {
	emit(sl, infoLevel, sprintln(v...))
}

// Infof formats and writes to the sub logger at info level
func Infof(sl *SubLogger, format string, v ...any) {
	emit(sl, infoLevel, fmt.Sprintf(format, v...))
}

// Debug writes data to the sub logger at debug level
func Debug(sl *SubLogger, data string) {
	emit(sl, debugLevel, data)
}

// Debugln writes the space separated values to the sub logger at debug level
func Debugln(sl *SubLogger, v ...any) {
	emit(sl, debugLevel, sprintln(v...))
}

// Debugf formats and writes to the sub logger at debug level
func Debugf(sl *SubLogger, format string, v ...any) {
	emit(sl, debugLevel, fmt.Sprintf(format, v...))
}

// Warn writes data to the sub logger at warn level
func Warn(sl *SubLogger, data string) {
	emit(sl, warnLevel, data)
}

// Warnln writes the space separated values to the sub logger at warn level
func Warnln(sl *SubLogger, v ...any) {
	emit(sl, warnLevel, sprintln(v...))
}

// Warnf formats and writes to the sub logger at warn level
func Warnf(sl *SubLogger, format string, v ...any) {
	emit(sl, warnLevel, fmt.Sprintf(format, v...))
}

// Error writes data to the sub logger at error level
func Error(sl *SubLogger, data string) {
	emit(sl, errorLevel, data)
}

// Errorln writes the space separated values to the sub logger at error level
func Errorln(sl *SubLogger, v ...any) {
	emit(sl, errorLevel, sprintln(v...))
}

// Errorf formats and writes to the sub logger at error level
func Errorf(sl *SubLogger, format string, v ...any) {
	emit(sl, errorLevel, fmt.Sprintf(format, v...))
}

func sprintln(v ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}

func emit(sl *SubLogger, lvl level, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	if fields == nil {
		return
	}
	header, ok := fields.header(lvl)
	if !ok {
		return
	}
	if customLogHook != nil && customLogHook(Entry{
		Level:     lvl.String(),
		SubLogger: fields.name,
		Header:    header,
		Message:   data,
	}) {
		return
	}
	displayError(fields.write(header, data))
}

// header returns the configured header for a level and whether that level
// is enabled for the sub logger
func (l *logFields) header(lvl level) (string, bool) {
	switch lvl {
	case infoLevel:
		return l.logger.InfoHeader, l.info
	case debugLevel:
		return l.logger.DebugHeader, l.debug
	case warnLevel:
		return l.logger.WarnHeader, l.warn
	case errorLevel:
		return l.logger.ErrorHeader, l.error
	}
	return "", false
}

func (l *logFields) write(header, data string) error {
	var b strings.Builder
	b.Grow(len(header) + len(data) + 48)
	b.WriteString(header)
	if l.logger.TimestampFormat != "" {
		b.WriteString(time.Now().Format(l.logger.TimestampFormat))
	}
	if l.logger.ShowLogSystemName {
		b.WriteString(l.logger.Spacer)
		b.WriteString(l.name)
	}
	b.WriteString(l.logger.Spacer)
	b.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		b.WriteByte('\n')
	}
	_, err := l.output.Write([]byte(b.String()))
	return err
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

func newLogger(c *Config) Logger {
	var showName bool
	if c.AdvancedSettings.ShowLogSystemName != nil {
		showName = *c.AdvancedSettings.ShowLogSystemName
	}
	return Logger{
		ShowLogSystemName: showName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
	}
}
