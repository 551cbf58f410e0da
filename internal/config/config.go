package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	DataDir    string        `mapstructure:"data_dir"`

	Recording RecordingConfig `mapstructure:"recording"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Mail      MailConfig      `mapstructure:"mail"`
}

type RecordingConfig struct {
	MaxBufferBytes int64         `mapstructure:"max_buffer_bytes"`
	ChunkRateLimit int           `mapstructure:"chunk_rate_limit"`
	ChunkRateWin   time.Duration `mapstructure:"chunk_rate_window"`
	ReconnectGrace time.Duration `mapstructure:"reconnect_grace"`
}

type DispatchConfig struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
}

type MailConfig struct {
	SMTPAddr string `mapstructure:"smtp_addr"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 1048576)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("recording.max_buffer_bytes", 64*1024*1024)
	v.SetDefault("recording.chunk_rate_limit", 120)
	v.SetDefault("recording.chunk_rate_window", "1s")
	v.SetDefault("recording.reconnect_grace", "30s")
	v.SetDefault("dispatch.workers", 4)
	v.SetDefault("dispatch.queue_size", 256)
	v.SetDefault("dispatch.task_timeout", "15s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// PORT from the environment wins over the file; an unparsable or
	// zero port must fail at startup, not at bind time.
	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Port = port
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port out of range: %d", cfg.Port)
	}
	return &cfg, nil
}
