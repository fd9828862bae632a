package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(WithDefaults())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.BindAddress != "0.0.0.0:8080" {
		t.Errorf("BindAddress = %q, want 0.0.0.0:8080", config.BindAddress)
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", config.LogLevel)
	}
	if config.SessionMaxAge != 30*time.Minute {
		t.Errorf("SessionMaxAge = %v, want 30m", config.SessionMaxAge)
	}
	if config.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", config.BaudRate)
	}
	if config.SerialPort != "" {
		t.Errorf("SerialPort = %q, want empty", config.SerialPort)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "bind_address: 127.0.0.1:9090\nlog_level: debug\nsession_max_age: 1h\nserial_port: /dev/ttyUSB2\nbaud_rate: 921600\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(WithDefaults(), WithFile(path))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.BindAddress != "127.0.0.1:9090" {
		t.Errorf("BindAddress = %q, want 127.0.0.1:9090", config.BindAddress)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.SessionMaxAge != time.Hour {
		t.Errorf("SessionMaxAge = %v, want 1h", config.SessionMaxAge)
	}
	if config.SerialPort != "/dev/ttyUSB2" {
		t.Errorf("SerialPort = %q, want /dev/ttyUSB2", config.SerialPort)
	}
	if config.BaudRate != 921600 {
		t.Errorf("BaudRate = %d, want 921600", config.BaudRate)
	}
}

func TestLoadConfigFilePartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(WithDefaults(), WithFile(path))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", config.LogLevel)
	}
	// Untouched keys keep their defaults.
	if config.BindAddress != "0.0.0.0:8080" {
		t.Errorf("BindAddress = %q, want default preserved", config.BindAddress)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfig(WithDefaults(), WithFile("/nonexistent/config.yaml"))
	if err == nil {
		t.Error("LoadConfig() with missing file: expected error")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BIND_ADDRESS", "127.0.0.1:8888")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SESSION_MAX_AGE", "45m")

	config, err := LoadConfig(WithDefaults(), WithEnv())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.BindAddress != "127.0.0.1:8888" {
		t.Errorf("BindAddress = %q, want 127.0.0.1:8888", config.BindAddress)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", config.LogLevel)
	}
	if config.SessionMaxAge != 45*time.Minute {
		t.Errorf("SessionMaxAge = %v, want 45m", config.SessionMaxAge)
	}
}

func TestLoadConfigFromFlags(t *testing.T) {
	fSet := flag.NewFlagSet("test", flag.ContinueOnError)
	fSet.String("bind-address", "", "")
	fSet.String("log-level", "", "")
	fSet.String("session-max-age", "", "")
	if err := fSet.Parse([]string{"-bind-address=127.0.0.1:7070", "-log-level=debug", "-session-max-age=10m"}); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(WithDefaults(), WithFlags(fSet))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.BindAddress != "127.0.0.1:7070" {
		t.Errorf("BindAddress = %q, want 127.0.0.1:7070", config.BindAddress)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.SessionMaxAge != 10*time.Minute {
		t.Errorf("SessionMaxAge = %v, want 10m", config.SessionMaxAge)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	// Flags set explicitly win over env, which wins over the file.
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\nbind_address: 10.0.0.1:1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "error")

	fSet := flag.NewFlagSet("test", flag.ContinueOnError)
	fSet.String("log-level", "", "")
	if err := fSet.Parse([]string{"-log-level=debug"}); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(fSet))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want flag value debug", config.LogLevel)
	}
	if config.BindAddress != "10.0.0.1:1" {
		t.Errorf("BindAddress = %q, want file value 10.0.0.1:1", config.BindAddress)
	}
}
