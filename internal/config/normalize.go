package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("KARAOKE_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaultStorageDriver
	}

	var err error
	c.Storage.SQLitePath = strings.TrimSpace(c.Storage.SQLitePath)
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
	}
	if c.Storage.SQLitePath, err = expandPath(c.Storage.SQLitePath); err != nil {
		return fmt.Errorf("storage.sqlite_path: %w", err)
	}

	if value, ok := lookupTrimmed("DB_HOST"); ok && c.Storage.Host == defaultPostgresHost {
		c.Storage.Host = value
	}
	if value, ok := lookupTrimmed("DB_PORT"); ok && c.Storage.Port == defaultPostgresPort {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		c.Storage.Port = port
	}
	if value, ok := lookupTrimmed("DB_NAME"); ok && c.Storage.Name == defaultPostgresName {
		c.Storage.Name = value
	}
	if c.Storage.UserFile == "" {
		c.Storage.UserFile, _ = lookupTrimmed("DB_USER_FILE")
	}
	if c.Storage.PasswordFile == "" {
		c.Storage.PasswordFile, _ = lookupTrimmed("DB_PASSWORD_FILE")
	}
	if c.Storage.User, err = secretValue(c.Storage.User, c.Storage.UserFile, "DB_USER"); err != nil {
		return fmt.Errorf("storage.user_file: %w", err)
	}
	if c.Storage.Password, err = secretValue(c.Storage.Password, c.Storage.PasswordFile, "DB_PASSWORD"); err != nil {
		return fmt.Errorf("storage.password_file: %w", err)
	}

	c.Storage.Host = strings.TrimSpace(c.Storage.Host)
	c.Storage.Name = strings.TrimSpace(c.Storage.Name)
	c.Storage.SSLMode = strings.TrimSpace(c.Storage.SSLMode)
	if c.Storage.SSLMode == "" {
		c.Storage.SSLMode = defaultPostgresSSLMode
	}
	if c.Storage.MaxOpenConns <= 0 {
		c.Storage.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Storage.MaxIdleConns <= 0 {
		c.Storage.MaxIdleConns = defaultMaxIdleConns
	}
	if c.Storage.BusyTimeoutMs <= 0 {
		c.Storage.BusyTimeoutMs = defaultBusyTimeoutMs
	}
	return nil
}

// secretValue resolves a credential from, in order: the explicit value, the
// referenced file, then the named environment variable.
func secretValue(value, file, env string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}
	if file = strings.TrimSpace(file); file != "" {
		path, err := expandPath(file)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	value, _ = lookupTrimmed(env)
	return value, nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalizeQueue() {
	if c.Queue.RenumberGap <= 0 {
		c.Queue.RenumberGap = defaultRenumberGap
	}
	if c.Queue.DefaultLimit < 0 {
		c.Queue.DefaultLimit = 0
	}
	if c.Queue.OperationTimeout <= 0 {
		c.Queue.OperationTimeout = defaultOperationTimeout
	}
	if c.Queue.MaintenanceInterval < 0 {
		c.Queue.MaintenanceInterval = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	c.Notifications.RedisAddr = strings.TrimSpace(c.Notifications.RedisAddr)
	if c.Notifications.RedisAddr == "" {
		if value, ok := lookupTrimmed("REDIS_ADDR"); ok {
			c.Notifications.RedisAddr = value
		}
	}
	if c.Notifications.RedisChannelPrefix == "" {
		c.Notifications.RedisChannelPrefix = defaultRedisChannelPrefix
	}
	c.Notifications.RedisEncoding = strings.ToLower(strings.TrimSpace(c.Notifications.RedisEncoding))
	if c.Notifications.RedisEncoding == "" {
		c.Notifications.RedisEncoding = defaultRedisEncoding
	}
	c.Notifications.AMQPURL = strings.TrimSpace(c.Notifications.AMQPURL)
	if c.Notifications.AMQPURL == "" {
		if value, ok := lookupTrimmed("AMQP_URL"); ok {
			c.Notifications.AMQPURL = value
		}
	}
	c.Notifications.AMQPExchange = strings.TrimSpace(c.Notifications.AMQPExchange)
	if c.Notifications.AMQPExchange == "" {
		c.Notifications.AMQPExchange = defaultAMQPExchange
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
