package config

// Storage drivers understood by storage.Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	defaultConfigPath           = "~/.config/karaoke/config.toml"
	defaultDataDir              = "~/.local/share/karaoke"
	defaultLogDir               = "~/.local/share/karaoke/logs"
	defaultAPIBind              = "127.0.0.1:7488"
	defaultStorageDriver        = DriverSQLite
	defaultSQLiteFile           = "queue.db"
	defaultPostgresHost         = "localhost"
	defaultPostgresPort         = 5432
	defaultPostgresName         = "kareoke"
	defaultPostgresSSLMode      = "disable"
	defaultMaxOpenConns         = 10
	defaultMaxIdleConns         = 1
	defaultBusyTimeoutMs        = 5000
	defaultRenumberGap          = 1e-9
	defaultOperationTimeout     = 10
	defaultMaintenanceInterval  = 300
	defaultNotifyRequestTimeout = 10
	defaultRedisChannelPrefix   = "karaoke:queue:"
	defaultRedisEncoding        = "json"
	defaultAMQPExchange         = "karaoke.events"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Storage: Storage{
			Driver:        defaultStorageDriver,
			Host:          defaultPostgresHost,
			Port:          defaultPostgresPort,
			Name:          defaultPostgresName,
			SSLMode:       defaultPostgresSSLMode,
			MaxOpenConns:  defaultMaxOpenConns,
			MaxIdleConns:  defaultMaxIdleConns,
			BusyTimeoutMs: defaultBusyTimeoutMs,
		},
		Queue: Queue{
			RenumberGap:         defaultRenumberGap,
			OperationTimeout:    defaultOperationTimeout,
			MaintenanceInterval: defaultMaintenanceInterval,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultNotifyRequestTimeout,
			RedisChannelPrefix: defaultRedisChannelPrefix,
			RedisEncoding:      defaultRedisEncoding,
			AMQPExchange:       defaultAMQPExchange,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
