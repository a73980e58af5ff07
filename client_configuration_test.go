package godatabend

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func createTestConfigFile(t *testing.T, dir string, content string) string {
	t.Helper()
	filePath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return filePath
}

func TestLoadConfigFile(t *testing.T) {
	filePath := createTestConfigFile(t, t.TempDir(), `
[transfer]
max_attempts = 7
backoff_unit = "250ms"
attempt_timeout = "30s"
max_concurrency = 8

[transport]
dial_timeout = "5s"

[log]
level = "debug"
path = "/tmp/databend-logs"
`)
	cfg, err := LoadConfigFile(filePath)
	assertNilF(t, err)
	assertEqualE(t, cfg.MaxTransferAttempts, 7)
	assertEqualE(t, cfg.TransferBackoffUnit, 250*time.Millisecond)
	assertEqualE(t, cfg.AttemptTimeout, 30*time.Second)
	assertEqualE(t, cfg.MaxConcurrentTransfers, 8)
	assertEqualE(t, cfg.DialTimeout, 5*time.Second)
	assertEqualE(t, cfg.KeepAlive, defaultTransportConfig().KeepAlive)
	assertEqualE(t, cfg.LogLevel, "DEBUG")
	assertEqualE(t, cfg.LogPath, "/tmp/databend-logs")
}

func TestLoadConfigFileFillsDefaults(t *testing.T) {
	filePath := createTestConfigFile(t, t.TempDir(), "[log]\nlevel = \"warn\"\n")
	cfg, err := LoadConfigFile(filePath)
	assertNilF(t, err)
	assertEqualE(t, cfg.MaxTransferAttempts, defaultMaxTransferAttempts)
	assertEqualE(t, cfg.TransferBackoffUnit, defaultTransferBackoffUnit)
	assertEqualE(t, cfg.AttemptTimeout, time.Duration(0))
	assertEqualE(t, cfg.MaxConcurrentTransfers, defaultMaxConcurrentTransfers)
}

func TestLoadConfigFileErrors(t *testing.T) {
	testcases := map[string]string{
		"bad duration":     "[transfer]\nbackoff_unit = \"soon\"\n",
		"negative backoff": "[transfer]\nbackoff_unit = \"-1s\"\n",
		"negative count":   "[transfer]\nmax_attempts = -2\n",
		"unknown level":    "[log]\nlevel = \"verbose\"\n",
		"invalid toml":     "[transfer\n",
	}
	for name, content := range testcases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFile(createTestConfigFile(t, t.TempDir(), content))
			assertErrIsE(t, err, ErrClientConfigFailed)
		})
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assertErrIsE(t, err, ErrClientConfigFailed)
	assertErrIsE(t, err, os.ErrNotExist)
}

func TestLoadConfigFileRejectsWritableByOthers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions are not validated on windows")
	}
	filePath := createTestConfigFile(t, t.TempDir(), "[transfer]\nmax_attempts = 3\n")
	assertNilF(t, os.Chmod(filePath, 0666))
	_, err := LoadConfigFile(filePath)
	assertErrIsE(t, err, ErrClientConfigFailed)
	assertStringContainsE(t, err.Error(), "writable by group or others")
}

func TestLoadConfigFromEnv(t *testing.T) {
	filePath := createTestConfigFile(t, t.TempDir(), "[transfer]\nmax_attempts = 3\n")
	t.Setenv(clientConfigEnv, filePath)
	cfg, err := LoadConfig()
	assertNilF(t, err)
	assertEqualE(t, cfg.MaxTransferAttempts, 3)
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv(clientConfigEnv, "")
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := LoadConfig()
	assertNilF(t, err)
	assertDeepEqualE(t, cfg, DefaultConfig())

	assertNilF(t, os.MkdirAll(filepath.Join(home, defaultConfigDirName), 0700))
	createTestConfigFile(t, filepath.Join(home, defaultConfigDirName), "[transfer]\nmax_concurrency = 2\n")
	cfg, err = LoadConfig()
	assertNilF(t, err)
	assertEqualE(t, cfg.MaxConcurrentTransfers, 2)
}
