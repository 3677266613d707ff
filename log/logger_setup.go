package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errConfigNil             = errors.New("logger config is nil")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errFileLoggingNotSetup   = errors.New("file output requested but file logging is not configured")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	var writers []io.Writer
	for _, o := range strings.Split(s.Output, "|") {
		switch strings.ToLower(strings.TrimSpace(o)) {
		case "stdout", "console":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		case "file":
			if !fileLoggingConfiguredCorrectly || globalLogFile == nil {
				return nil, errFileLoggingNotSetup
			}
			writers = append(writers, globalLogFile)
		case "discard", "none":
			writers = append(writers, io.Discard)
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, o)
		}
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return MultiWriter(writers...)
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	enabled, rotate, showName := true, true, true
	return Config{
		Enabled: &enabled,
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		LoggerFileConfig: &loggerFileConfig{
			FileName: "backtester.log",
			Rotate:   &rotate,
			MaxSize:  DefaultMaxFileSize,
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: &showName,
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

// SetLogPath sets the directory the log file is written to
func SetLogPath(dir string) {
	mu.Lock()
	logPath = dir
	mu.Unlock()
}

// SetupGlobalLogger applies the config to every registered sub logger and
// opens the log file when a file output is requested
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errConfigNil
	}
	mu.Lock()
	defer mu.Unlock()
	globalLogConfig = c
	if err := openLogFile(c); err != nil {
		return err
	}
	enabled := c.Enabled == nil || *c.Enabled
	for _, sl := range subLoggers {
		if !enabled {
			sl.output = io.Discard
			sl.levels = Levels{}
			continue
		}
		w, err := getWriters(&c.SubLoggerConfig)
		if err != nil {
			return err
		}
		sl.output = w
		sl.levels = splitLevel(c.Level)
	}
	logger = newLogger(c)
	if !enabled {
		return nil
	}
	return setupSubLoggers(c.SubLoggers)
}

// openLogFile must be called with the write lock held
func openLogFile(c *Config) error {
	if globalLogFile != nil {
		if err := globalLogFile.Close(); err != nil {
			return err
		}
		globalLogFile = nil
	}
	fileLoggingConfiguredCorrectly = false
	if c.LoggerFileConfig == nil || c.LoggerFileConfig.FileName == "" || !requestsFile(c) {
		return nil
	}
	name := c.LoggerFileConfig.FileName
	if logPath != "" && !filepath.IsAbs(name) {
		name = filepath.Join(logPath, name)
	}
	if c.LoggerFileConfig.Rotate != nil && *c.LoggerFileConfig.Rotate {
		size := c.LoggerFileConfig.MaxSize
		if size <= 0 {
			size = DefaultMaxFileSize
		}
		globalLogFile = &lumberjack.Logger{
			Filename:   name,
			MaxSize:    int(size),
			MaxBackups: defaultMaxBackups,
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(name), 0o770); err != nil {
			return err
		}
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return err
		}
		globalLogFile = f
	}
	fileLoggingConfiguredCorrectly = true
	return nil
}

func requestsFile(c *Config) bool {
	if strings.Contains(strings.ToLower(c.Output), "file") {
		return true
	}
	for i := range c.SubLoggers {
		if strings.Contains(strings.ToLower(c.SubLoggers[i].Output), "file") {
			return true
		}
	}
	return false
}

// setupSubLoggers must be called with the write lock held
func setupSubLoggers(s []SubLoggerConfig) error {
	for x := range s {
		name := strings.ToUpper(s[x].Name)
		sl, ok := subLoggers[name]
		if !ok {
			return fmt.Errorf("%w: %s", errSubLoggerNotFound, s[x].Name)
		}
		output, err := getWriters(&s[x])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		sl.output = output
		sl.levels = splitLevel(s[x].Level)
	}
	return nil
}

// CloseLogger closes the log file if one is open
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	fileLoggingConfiguredCorrectly = false
	return err
}

func splitLevel(level string) (l Levels) {
	for _, lvl := range strings.Split(level, "|") {
		switch strings.ToUpper(strings.TrimSpace(lvl)) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

// registerNewSubLogger must be called with the write lock held
func registerNewSubLogger(name string) *SubLogger {
	sl := &SubLogger{
		name:   strings.ToUpper(name),
		output: os.Stdout,
		levels: splitLevel(globalLogConfig.Level),
	}
	subLoggers[sl.name] = sl
	return sl
}

func init() {
	defaults := GenDefaultSettings()
	globalLogConfig = &defaults
	logger = newLogger(globalLogConfig)

	Global = registerNewSubLogger("LOG")
	Backtester = registerNewSubLogger("BACKTESTER")
	Indicators = registerNewSubLogger("INDICATORS")
	Allocation = registerNewSubLogger("ALLOCATION")
	Benchmark = registerNewSubLogger("BENCHMARK")
	Statistics = registerNewSubLogger("STATISTICS")
	ConfigMgr = registerNewSubLogger("CONFIG")
	DataHandler = registerNewSubLogger("DATA")
	APIServer = registerNewSubLogger("API")
}
