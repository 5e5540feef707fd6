// Package config loads and defaults the engine's runtime configuration:
// data directory, buffer pool sizing, and tablespace growth parameters.
package config

import (
	"bufio"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config holds every tunable the storage engine needs at startup.
type Config struct {
	DataDir                  string `json:"data_dir"`
	BufferPoolSize           int    `json:"buffer_pool_size"`
	InitialTablespaceSizeMiB int    `json:"initial_tablespace_size_mib"`
	AutoExtendSizeMiB        int    `json:"auto_extend_size_mib"`
	LogLevel                 string `json:"log_level"`
}

// NewConfig builds a Config rooted at dataDir with default sizing.
func NewConfig(dataDir string) *Config {
	return &Config{
		DataDir:                  dataDir,
		BufferPoolSize:           256,
		InitialTablespaceSizeMiB: 16,
		AutoExtendSizeMiB:        16,
		LogLevel:                 "info",
	}
}

// LoadConfig reads configuration from path, accepting either JSON or a
// simple "key = value" text format, and fills in defaults for anything
// left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	if len(data) == 0 {
		return nil, errors.New("config: empty config file")
	}

	var c Config
	if err := json.Unmarshal(data, &c); err == nil && c.DataDir != "" {
		c.applyDefaults()
		return &c, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sep := "="
		if !strings.Contains(line, "=") && strings.Contains(line, ":") {
			sep = ":"
		}
		parts := strings.SplitN(line, sep, 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		switch key {
		case "data_dir", "datadir":
			c.DataDir = val
		case "buffer_pool_size":
			if v, err := strconv.Atoi(val); err == nil {
				c.BufferPoolSize = v
			}
		case "initial_tablespace_size_mib":
			if v, err := strconv.Atoi(val); err == nil {
				c.InitialTablespaceSizeMiB = v
			}
		case "auto_extend_size_mib":
			if v, err := strconv.Atoi(val); err == nil {
				c.AutoExtendSizeMiB = v
			}
		case "log_level":
			c.LogLevel = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan config file")
	}
	if c.DataDir == "" {
		return nil, errors.New("config: data_dir not set")
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.BufferPoolSize == 0 {
		c.BufferPoolSize = 256
	}
	if c.InitialTablespaceSizeMiB == 0 {
		c.InitialTablespaceSizeMiB = 16
	}
	if c.AutoExtendSizeMiB == 0 {
		c.AutoExtendSizeMiB = 16
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// InitialTablespaceSize returns the initial file size in bytes.
func (c *Config) InitialTablespaceSize() uint64 {
	return uint64(c.InitialTablespaceSizeMiB) << 20
}

// AutoExtendSize returns the auto-extend growth in bytes.
func (c *Config) AutoExtendSize() uint64 {
	return uint64(c.AutoExtendSizeMiB) << 20
}
