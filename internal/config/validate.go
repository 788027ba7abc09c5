package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path must be set when storage.driver is sqlite")
		}
	case DriverPostgres:
		if c.Storage.Host == "" {
			return errors.New("storage.host must be set when storage.driver is postgres")
		}
		if c.Storage.Port <= 0 || c.Storage.Port > 65535 {
			return errors.New("storage.port must be between 1 and 65535")
		}
		if c.Storage.Name == "" {
			return errors.New("storage.name must be set when storage.driver is postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver: unsupported value %q (use sqlite, postgres, or memory)", c.Storage.Driver)
	}
	if c.Storage.MaxIdleConns > c.Storage.MaxOpenConns {
		return errors.New("storage.max_idle_conns must not exceed storage.max_open_conns")
	}
	return nil
}

func (c *Config) validateQueue() error {
	if math.IsNaN(c.Queue.RenumberGap) || math.IsInf(c.Queue.RenumberGap, 0) {
		return errors.New("queue.renumber_gap must be a finite number")
	}
	if c.Queue.RenumberGap >= 0.5 {
		return errors.New("queue.renumber_gap must be smaller than 0.5")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.WebhookURL != "" {
		parsed, err := url.Parse(c.Notifications.WebhookURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("notifications.webhook_url: invalid url %q", c.Notifications.WebhookURL)
		}
	}
	switch c.Notifications.RedisEncoding {
	case "json", "msgpack":
	default:
		return fmt.Errorf("notifications.redis_encoding: unsupported value %q (use json or msgpack)", c.Notifications.RedisEncoding)
	}
	if c.Notifications.RedisDB < 0 {
		return errors.New("notifications.redis_db must be >= 0")
	}
	if c.Notifications.AMQPURL != "" && !strings.HasPrefix(c.Notifications.AMQPURL, "amqp") {
		return fmt.Errorf("notifications.amqp_url: expected amqp:// or amqps:// scheme, got %q", c.Notifications.AMQPURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
