package godatabend

import (
	"errors"
	"io"
	"os"
	"path"
	"strings"

	"github.com/datafuselabs/databend-go/dblog"
	loggerinternal "github.com/datafuselabs/databend-go/internal/logger"
)

const logFileName = "databend.log"

// ConfigureLogging sets the driver log level and sends the log to
// <logPath>/go/databend.log as well as stdout. logPath "STDOUT" logs to stdout
// only and an empty logPath uses the temporary directory.
func ConfigureLogging(logLevel string, logPath string) error {
	level, err := getLogLevel(logLevel)
	if err != nil {
		return clientConfigError(err)
	}
	if strings.EqualFold(logPath, "STDOUT") {
		return reconfigureLogging(level, logPath)
	}
	dir, err := getLogPath(logPath)
	if err != nil {
		return clientConfigError(err)
	}
	return reconfigureLogging(level, dir)
}

// ConfigureLoggingFromConfig applies the log section of a client config.
// Nothing happens when the config names neither a level nor a path.
func ConfigureLoggingFromConfig(cfg *Config) error {
	if cfg == nil || (cfg.LogLevel == "" && cfg.LogPath == "") {
		return nil
	}
	return ConfigureLogging(cfg.LogLevel, cfg.LogPath)
}

func reconfigureLogging(logLevel string, logPath string) error {
	if err := logger.SetLogLevel(logLevel); err != nil {
		return err
	}
	output, file, err := createLogWriter(logPath)
	if err != nil {
		return err
	}
	if err = loggerinternal.SetOutputWithFile(output, file); err != nil {
		logger.Errorf("%s", err)
	}
	return nil
}

func createLogWriter(logPath string) (io.Writer, *os.File, error) {
	if strings.EqualFold(logPath, "STDOUT") {
		return os.Stdout, nil, nil
	}
	file, err := os.OpenFile(path.Join(logPath, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(file, os.Stdout), file, nil
}

func toLogLevel(logLevel string) (string, error) {
	level, err := dblog.ParseLevel(logLevel)
	if err != nil {
		return "", err
	}
	return level.String(), nil
}

func getLogLevel(logLevel string) (string, error) {
	if logLevel == "" {
		logger.Warn("log level not set. Using default value: OFF")
		return dblog.LevelOff.String(), nil
	}
	return toLogLevel(logLevel)
}

func getLogPath(logPath string) (string, error) {
	logPathOrDefault := logPath
	if logPath == "" {
		logPathOrDefault = os.TempDir()
		logger.Warnf("log path not set. Using temporary directory as a default value: %s", logPathOrDefault)
	}
	pathWithGoSubdir := path.Join(logPathOrDefault, "go")
	exists, err := dirExists(pathWithGoSubdir)
	if err != nil {
		return "", err
	}
	if !exists {
		if err = os.MkdirAll(pathWithGoSubdir, 0700); err != nil {
			return "", err
		}
	}
	return pathWithGoSubdir, nil
}

func dirExists(dirPath string) (bool, error) {
	stat, err := os.Stat(dirPath)
	if err == nil {
		return stat.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
