package godatabend

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	path "path/filepath"
	"runtime"
	"strings"
	"time"

	toml "github.com/BurntSushi/toml"
)

const (
	defaultMaxTransferAttempts    = 5
	defaultTransferBackoffUnit    = 100 * time.Millisecond
	defaultMaxConcurrentTransfers = 4

	clientConfigEnv      = "DATABEND_CLIENT_CONFIG_FILE"
	defaultConfigDirName = ".databend"
	defaultConfigFile    = "config.toml"
)

// Config is the configuration of the decoding and transfer core.
type Config struct {
	// MaxTransferAttempts caps the attempts of one upload or download.
	MaxTransferAttempts int
	// TransferBackoffUnit is multiplied by the number of attempts made so far
	// to get the wait before the next attempt.
	TransferBackoffUnit time.Duration
	// AttemptTimeout bounds a single attempt. Zero means no bound.
	AttemptTimeout time.Duration
	// MaxConcurrentTransfers bounds the files moved in parallel by UploadFiles and DownloadFiles.
	MaxConcurrentTransfers int

	DialTimeout     time.Duration
	KeepAlive       time.Duration
	IdleConnTimeout time.Duration
	MaxIdleConns    int

	LogLevel string
	LogPath  string

	// Transporter replaces the HTTP transport built from the settings above.
	Transporter http.RoundTripper
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.fillMissingDefaults()
	return cfg
}

func (cfg *Config) fillMissingDefaults() {
	if cfg.MaxTransferAttempts <= 0 {
		cfg.MaxTransferAttempts = defaultMaxTransferAttempts
	}
	if cfg.TransferBackoffUnit <= 0 {
		cfg.TransferBackoffUnit = defaultTransferBackoffUnit
	}
	if cfg.MaxConcurrentTransfers <= 0 {
		cfg.MaxConcurrentTransfers = defaultMaxConcurrentTransfers
	}
	transport := defaultTransportConfig()
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = transport.DialTimeout
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = transport.KeepAlive
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = transport.IdleConnTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = transport.MaxIdleConns
	}
}

// duration decodes TOML strings such as "250ms" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration: %v", string(text))
	}
	d.Duration = parsed
	return nil
}

type tomlClientConfig struct {
	Transfer struct {
		MaxAttempts    int      `toml:"max_attempts"`
		BackoffUnit    duration `toml:"backoff_unit"`
		AttemptTimeout duration `toml:"attempt_timeout"`
		MaxConcurrency int      `toml:"max_concurrency"`
	} `toml:"transfer"`
	Transport struct {
		DialTimeout     duration `toml:"dial_timeout"`
		KeepAlive       duration `toml:"keep_alive"`
		IdleConnTimeout duration `toml:"idle_conn_timeout"`
		MaxIdleConns    int      `toml:"max_idle_conns"`
	} `toml:"transport"`
	Log struct {
		Level string `toml:"level"`
		Path  string `toml:"path"`
	} `toml:"log"`
}

// LoadConfig loads the client config file named by DATABEND_CLIENT_CONFIG_FILE,
// or ~/.databend/config.toml. A missing default file yields DefaultConfig.
func LoadConfig() (*Config, error) {
	if filePath := os.Getenv(clientConfigEnv); filePath != "" {
		return LoadConfigFile(filePath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, clientConfigError(err)
	}
	filePath := path.Join(homeDir, defaultConfigDirName, defaultConfigFile)
	if _, err = os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		logger.Debugf("no client config at %v, using defaults", filePath)
		return DefaultConfig(), nil
	}
	return LoadConfigFile(filePath)
}

// LoadConfigFile loads a TOML client config file.
func LoadConfigFile(filePath string) (*Config, error) {
	if err := validateFilePermission(filePath); err != nil {
		return nil, clientConfigError(err)
	}
	var tc tomlClientConfig
	md, err := toml.DecodeFile(filePath, &tc)
	if err != nil {
		return nil, clientConfigError(err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("ignoring unknown client config keys in %v: %v", filePath, undecoded)
	}
	if tc.Transfer.MaxAttempts < 0 || tc.Transfer.MaxConcurrency < 0 || tc.Transport.MaxIdleConns < 0 {
		return nil, clientConfigError(errors.New("negative counts are not allowed"))
	}
	if tc.Log.Level != "" {
		if _, err = toLogLevel(tc.Log.Level); err != nil {
			return nil, clientConfigError(err)
		}
	}
	cfg := &Config{
		MaxTransferAttempts:    tc.Transfer.MaxAttempts,
		TransferBackoffUnit:    tc.Transfer.BackoffUnit.Duration,
		AttemptTimeout:         tc.Transfer.AttemptTimeout.Duration,
		MaxConcurrentTransfers: tc.Transfer.MaxConcurrency,
		DialTimeout:            tc.Transport.DialTimeout.Duration,
		KeepAlive:              tc.Transport.KeepAlive.Duration,
		IdleConnTimeout:        tc.Transport.IdleConnTimeout.Duration,
		MaxIdleConns:           tc.Transport.MaxIdleConns,
		LogLevel:               strings.ToUpper(tc.Log.Level),
		LogPath:                tc.Log.Path,
	}
	cfg.fillMissingDefaults()
	return cfg, nil
}

func clientConfigError(err error) error {
	return &DatabendError{
		Number:      ErrCodeClientConfigFailed,
		Message:     errMsgClientConfigFailed,
		MessageArgs: []interface{}{err.Error()},
		Cause:       err,
	}
}

// validateFilePermission rejects config files writable by group or others.
func validateFilePermission(filePath string) error {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	if permission := fileInfo.Mode().Perm(); permission&0o022 != 0 {
		return fmt.Errorf("file %v is writable by group or others (%v)", filePath, permission)
	}
	return nil
}
