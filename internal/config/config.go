package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Ops       OpsConfig       `mapstructure:"ops"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Leader    LeaderConfig    `mapstructure:"leader"`
	Instance  InstanceConfig  `mapstructure:"instance"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// OpsConfig is the internal operations endpoint, served separately from the
// public API so it can be firewalled off.
type OpsConfig struct {
	Port int `mapstructure:"port"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LeaderConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

// SchedulerConfig controls the two lifecycle loops and the alert windows.
// Intervals below the minimums are clamped in Load.
type SchedulerConfig struct {
	StatusInterval     time.Duration `mapstructure:"status_interval"`
	AlertsInterval     time.Duration `mapstructure:"alerts_interval"`
	StartingSoonWindow time.Duration `mapstructure:"starting_soon_window"`
	EndingSoonWindow   time.Duration `mapstructure:"ending_soon_window"`
	StartedGraceWindow time.Duration `mapstructure:"started_grace_window"`
}

const (
	MinStatusInterval = 5 * time.Second
	MinAlertsInterval = 10 * time.Second
)

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("ops.port", 8081)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/vehicle_auctions?parseTime=true")
	viper.SetDefault("mysql.max_open_conns", 25)
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("leader.ttl", 30*time.Second)
	viper.SetDefault("instance.id", "auction-service-1")
	viper.SetDefault("scheduler.status_interval", time.Minute)
	viper.SetDefault("scheduler.alerts_interval", time.Minute)
	viper.SetDefault("scheduler.starting_soon_window", 15*time.Minute)
	viper.SetDefault("scheduler.ending_soon_window", 10*time.Minute)
	viper.SetDefault("scheduler.started_grace_window", 5*time.Minute)

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/vehicle-auctions/")

	// Environment variable support
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("ops.port", "OPS_PORT")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	viper.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	viper.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	viper.BindEnv("leader.ttl", "LEADER_TTL")
	viper.BindEnv("instance.id", "INSTANCE_ID")
	viper.BindEnv("scheduler.status_interval", "SCHEDULER_STATUS_INTERVAL")
	viper.BindEnv("scheduler.alerts_interval", "SCHEDULER_ALERTS_INTERVAL")
	viper.BindEnv("scheduler.starting_soon_window", "SCHEDULER_STARTING_SOON_WINDOW")
	viper.BindEnv("scheduler.ending_soon_window", "SCHEDULER_ENDING_SOON_WINDOW")
	viper.BindEnv("scheduler.started_grace_window", "SCHEDULER_STARTED_GRACE_WINDOW")

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Scheduler = config.Scheduler.Clamped()

	return &config, nil
}

// Clamped enforces the interval floors so a misconfigured deployment cannot
// hammer the database.
func (c SchedulerConfig) Clamped() SchedulerConfig {
	if c.StatusInterval < MinStatusInterval {
		c.StatusInterval = MinStatusInterval
	}
	if c.AlertsInterval < MinAlertsInterval {
		c.AlertsInterval = MinAlertsInterval
	}
	return c
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Ops: %d, Redis: %s, MySQL: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Ops.Port,
		c.Redis.Address,
		c.MySQL.DSN,
		c.Instance.ID,
	)
}
