package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ShipperConfig configures the sending CLI.
type ShipperConfig struct {
	Workspace      WorkspaceConfig `mapstructure:"workspace"`
	LogType        string          `mapstructure:"log_type"`
	TimestampField string          `mapstructure:"timestamp_field"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	Logging        LoggingConfig   `mapstructure:"logging"`
}

// SinkConfig configures the local verification receiver.
type SinkConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type WorkspaceConfig struct {
	ID         string `mapstructure:"id"`
	Key        string `mapstructure:"key"`
	URLSuffix  string `mapstructure:"url_suffix"`
	APIVersion string `mapstructure:"api_version"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func LoadShipper(path string) (*ShipperConfig, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var config ShipperConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func LoadSink(path string) (*SinkConfig, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var config SinkConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func read(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}
