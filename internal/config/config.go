package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "archivist"
	DefaultConfigName = "archivist"
)

var defaultConfigPaths = []string{
	".",
	"./config",
	"$HOME/.config/archivist",
	"/etc/archivist",
}

type Config struct {
	Run      RunConfig      `mapstructure:"-"`
	Log      LogConfig      `mapstructure:"log"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// RunConfig holds the per-invocation arguments taken from the command line.
type RunConfig struct {
	Source      string
	Destination string
	Restore     string
	Email       string
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type ArchiveConfig struct {
	KeepEmptyDirs bool `mapstructure:"keep_empty_dirs"`
}

// Flags returns the command line flag set understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {}

	fs.String("restore", "", "archive to restore from")
	fs.String("email", "", "email address to send notifications to")
	fs.StringP("config", "c", "", "config file")
	fs.BoolP("verbose", "v", false, "also write log records to stderr")

	return fs
}

// Load parses args (without the program name) and merges them with the
// environment and an optional config file.
func Load(args []string) (*Config, error) {
	fs := Flags("archivist")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.BindPFlag("log.console", fs.Lookup("verbose")); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	configFile, _ := fs.GetString("config")
	if err := readConfig(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Run.Restore, _ = fs.GetString("restore")
	cfg.Run.Email, _ = fs.GetString("email")

	switch positional := fs.Args(); len(positional) {
	case 0:
	case 1:
		cfg.Run.Destination = positional[0]
	case 2:
		cfg.Run.Source, cfg.Run.Destination = positional[0], positional[1]
	default:
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[2:], " "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", 30*time.Second)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")

	v.SetDefault("archive.keep_empty_dirs", false)
}

// readConfig reads the given file, which must exist, or searches the default
// locations where a missing file is not an error.
func readConfig(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	for _, dir := range defaultConfigPaths {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Run.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	if c.Run.Restore == "" && c.Run.Source == "" {
		return fmt.Errorf("source is required unless --restore is given")
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port %d is out of range", c.SMTP.Port)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	return nil
}

func (c *Config) RestoreMode() bool {
	return c.Run.Restore != ""
}
