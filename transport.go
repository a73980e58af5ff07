package godatabend

import (
	"net"
	"net/http"
	"time"
)

// transportConfig holds the configuration for creating HTTP transports
type transportConfig struct {
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	DialTimeout     time.Duration
	KeepAlive       time.Duration
}

// defaultTransportConfig returns the standard transport configuration
func defaultTransportConfig() *transportConfig {
	return &transportConfig{
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Minute,
		DialTimeout:     30 * time.Second,
		KeepAlive:       30 * time.Second,
	}
}

// transportFactory creates the HTTP transport used for stage transfers.
type transportFactory struct {
	config *Config
}

func newTransportFactory(config *Config) *transportFactory {
	return &transportFactory{config: config}
}

func (tf *transportFactory) transportConfig() *transportConfig {
	tc := defaultTransportConfig()
	tc.MaxIdleConns = getConfigInt(tf.config.MaxIdleConns, tc.MaxIdleConns)
	tc.IdleConnTimeout = getConfigDuration(tf.config.IdleConnTimeout, tc.IdleConnTimeout)
	tc.DialTimeout = getConfigDuration(tf.config.DialTimeout, tc.DialTimeout)
	tc.KeepAlive = getConfigDuration(tf.config.KeepAlive, tc.KeepAlive)
	return tc
}

// createBaseTransport creates a base HTTP transport with the given configuration
func (tf *transportFactory) createBaseTransport(transportConfig *transportConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   transportConfig.DialTimeout,
		KeepAlive: transportConfig.KeepAlive,
	}

	return &http.Transport{
		MaxIdleConns:        transportConfig.MaxIdleConns,
		MaxIdleConnsPerHost: transportConfig.MaxIdleConns,
		IdleConnTimeout:     transportConfig.IdleConnTimeout,
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
	}
}

// createTransport is the main entry point for creating transports
func (tf *transportFactory) createTransport() http.RoundTripper {
	if tf.config.Transporter != nil {
		return tf.config.Transporter
	}
	return tf.createBaseTransport(tf.transportConfig())
}

// getConfigDuration returns the config duration if non-zero, otherwise returns the default
func getConfigDuration(configValue, defaultValue time.Duration) time.Duration {
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getConfigInt(configValue, defaultValue int) int {
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}
