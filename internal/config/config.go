package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Kernel   KernelConfig `mapstructure:"kernel"`
	Bench    BenchConfig  `mapstructure:"bench"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

type KernelConfig struct {
	Backend string `mapstructure:"backend"`
}

type BenchConfig struct {
	Iterations  int     `mapstructure:"iterations"`
	Runs        int     `mapstructure:"runs"`
	MSThreshold float64 `mapstructure:"ms_threshold"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	MaxIterations   int    `mapstructure:"max_iterations"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Kernel: KernelConfig{
			Backend: "auto",
		},
		Bench: BenchConfig{
			Iterations:  100,
			Runs:        1,
			MSThreshold: 0,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			RequestTimeout:  10,
			ShutdownTimeout: 30,
			MaxIterations:   1_000_000,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("kernel-backend", defaults.Kernel.Backend, "Kernel backend: scalar|block|auto")
	fs.Int("bench-iterations", defaults.Bench.Iterations, "Transform+reduce iterations per measured loop")
	fs.Int("bench-runs", defaults.Bench.Runs, "Number of measured loops")
	fs.Float64("bench-ms-threshold", defaults.Bench.MSThreshold, "Exit non-zero if mean elapsed ms exceeds this value (0 = disabled)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request deadline in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.Int("server-max-iterations", defaults.Server.MaxIterations, "Maximum iterations accepted per HTTP run request")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("VECCHECK")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("veccheck")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("kernel.backend", c.Kernel.Backend)
	v.SetDefault("bench.iterations", c.Bench.Iterations)
	v.SetDefault("bench.runs", c.Bench.Runs)
	v.SetDefault("bench.ms_threshold", c.Bench.MSThreshold)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_iterations", c.Server.MaxIterations)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("kernel.backend", "kernel-backend")
	v.RegisterAlias("bench.iterations", "bench-iterations")
	v.RegisterAlias("bench.runs", "bench-runs")
	v.RegisterAlias("bench.ms_threshold", "bench-ms-threshold")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("server.max_iterations", "server-max-iterations")
	v.RegisterAlias("log_level", "log-level")
}
