package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Storage selects and configures the queue database.
type Storage struct {
	Driver        string `toml:"driver"`
	SQLitePath    string `toml:"sqlite_path"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	User          string `toml:"user"`
	UserFile      string `toml:"user_file"`
	Password      string `toml:"password"`
	PasswordFile  string `toml:"password_file"`
	Name          string `toml:"name"`
	SSLMode       string `toml:"sslmode"`
	MaxOpenConns  int    `toml:"max_open_conns"`
	MaxIdleConns  int    `toml:"max_idle_conns"`
	BusyTimeoutMs int    `toml:"busy_timeout_ms"`
}

// Queue contains tuning for position allocation and request handling.
type Queue struct {
	// RenumberGap is the smallest gap between neighbouring positions the
	// engine accepts before renumbering the queue to whole numbers.
	RenumberGap         float64 `toml:"renumber_gap"`
	DefaultLimit        int     `toml:"default_limit"`
	OperationTimeout    int     `toml:"operation_timeout"`
	MaintenanceInterval int     `toml:"maintenance_interval"`
}

// Notifications contains configuration for queue change publishers.
type Notifications struct {
	WebhookURL         string `toml:"webhook_url"`
	RequestTimeout     int    `toml:"request_timeout"`
	RedisAddr          string `toml:"redis_addr"`
	RedisPassword      string `toml:"redis_password"`
	RedisDB            int    `toml:"redis_db"`
	RedisChannelPrefix string `toml:"redis_channel_prefix"`
	RedisEncoding      string `toml:"redis_encoding"`
	AMQPURL            string `toml:"amqp_url"`
	AMQPExchange       string `toml:"amqp_exchange"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the karaoke daemon and CLI.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Storage: database driver and connection settings
//   - Queue: position allocation and request timeouts
//   - Notifications: webhook, Redis and AMQP publishers
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Storage       Storage       `toml:"storage"`
	Queue         Queue         `toml:"queue"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("karaoke.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Storage.Driver == DriverSQLite {
		if dir := filepath.Dir(c.Storage.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create database directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

// OperationTimeout returns the per-request deadline for queue operations.
func (c *Config) OperationTimeout() time.Duration {
	if c.Queue.OperationTimeout <= 0 {
		return time.Duration(defaultOperationTimeout) * time.Second
	}
	return time.Duration(c.Queue.OperationTimeout) * time.Second
}

// MaintenanceInterval returns how often the daemon sweeps queues for
// positions that need renumbering. Zero disables the sweep.
func (c *Config) MaintenanceInterval() time.Duration {
	if c.Queue.MaintenanceInterval <= 0 {
		return 0
	}
	return time.Duration(c.Queue.MaintenanceInterval) * time.Second
}

// PostgresDSN builds a lib/pq connection string from the storage section.
func (c *Config) PostgresDSN() string {
	parts := []string{
		"host=" + quoteDSN(c.Storage.Host),
		fmt.Sprintf("port=%d", c.Storage.Port),
		"dbname=" + quoteDSN(c.Storage.Name),
		"sslmode=" + quoteDSN(c.Storage.SSLMode),
	}
	if c.Storage.User != "" {
		parts = append(parts, "user="+quoteDSN(c.Storage.User))
	}
	if c.Storage.Password != "" {
		parts = append(parts, "password="+quoteDSN(c.Storage.Password))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
