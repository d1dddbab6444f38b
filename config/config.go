// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDrivers      = []string{"sqlite", "postgres", "mongo"}
)

type Config struct {
	App      App      `mapstructure:"app"`
	Host     Host     `mapstructure:"host"`
	Database Database `mapstructure:"database"`
	JWT      JWT      `mapstructure:"jwt"`
	Mail     Mail     `mapstructure:"mail"`
	AI       AI       `mapstructure:"ai"`
	Storage  Storage  `mapstructure:"storage"`
	Upload   Upload   `mapstructure:"upload"`
	Security Security `mapstructure:"security"`
	FFmpeg   FFmpeg   `mapstructure:"ffmpeg"`
	Cleanup  Cleanup  `mapstructure:"cleanup"`

	// Sweep runs the orphaned audio sweep once and exits
	Sweep bool `mapstructure:"sweep"`
}

type App struct {
	LogLevel  string   `mapstructure:"log_level"`
	Origins   []string `mapstructure:"origins"`
	PublicURL string   `mapstructure:"public_url"`
	Env       string   `mapstructure:"env"`
}

// Production reports whether cookies should be marked secure
func (a App) Production() bool {
	return a.Env == "production"
}

// Origin is the frontend address used for redirects
func (a App) Origin() string {
	if len(a.Origins) == 0 {
		return ""
	}

	return strings.TrimRight(a.Origins[0], "/")
}

type Host struct {
	Port int `mapstructure:"port"`
	SSL  SSL `mapstructure:"ssl"`
}

type SSL struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// Name is the MongoDB database name
	Name string `mapstructure:"name"`
}

type JWT struct {
	Secret string `mapstructure:"secret"`
}

type Mail struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

type AI struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	Model        string `mapstructure:"model"`
}

type Storage struct {
	Type  string       `mapstructure:"type"`
	Local LocalStorage `mapstructure:"local"`
	S3    S3Storage    `mapstructure:"s3"`
}

type LocalStorage struct {
	Dir string `mapstructure:"dir"`
}

type S3Storage struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"`
	// AccountID switches the client to Cloudflare R2
	AccountID string `mapstructure:"account_id"`
}

type Upload struct {
	// MaxSize is in megabytes
	MaxSize int64 `mapstructure:"max_size"`
}

// MaxBytes is MaxSize converted to bytes
func (u Upload) MaxBytes() int64 {
	return u.MaxSize << 20
}

type Security struct {
	RateLimit int   `mapstructure:"rate_limit"`
	Argon     Argon `mapstructure:"argon"`
}

// Argon holds the password hashing costs. Memory is in KiB.
type Argon struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
}

type FFmpeg struct {
	FFprobePath string `mapstructure:"ffprobe_path"`
}

type Cleanup struct {
	TokensSchedule  string        `mapstructure:"tokens_schedule"`
	OrphansSchedule string        `mapstructure:"orphans_schedule"`
	OrphansGrace    time.Duration `mapstructure:"orphans_grace"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.origins", []string{"http://localhost:5173"})
	v.SetDefault("app.public_url", "http://localhost:5000")
	v.SetDefault("app.env", "development")

	v.SetDefault("host.port", 5000)
	v.SetDefault("host.ssl.enabled", false)
	v.SetDefault("host.ssl.certificate_path", "")
	v.SetDefault("host.ssl.certificate_key_path", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "voicenote.db")
	v.SetDefault("database.name", "voicenote")

	v.SetDefault("jwt.secret", "")

	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.sender", "")

	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.dir", "uploads/audio")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.public_url", "")
	v.SetDefault("storage.s3.account_id", "")

	v.SetDefault("upload.max_size", 10)

	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.argon.memory", 64*1024)
	v.SetDefault("security.argon.iterations", 3)
	v.SetDefault("security.argon.parallelism", 2)

	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")

	v.SetDefault("cleanup.tokens_schedule", "@every 24h")
	v.SetDefault("cleanup.orphans_schedule", "@every 6h")
	v.SetDefault("cleanup.orphans_grace", "24h")
}

// Load reads config.toml (if present), environment variables and the command
// line flags in args, then validates the result. Environment variables are
// the upper-cased keys with dots replaced by underscores, e.g. HOST_PORT.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("voicenote", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to the config file")
	fs.Int("port", 0, "port to listen on")
	fs.Bool("sweep", false, "delete unreferenced audio files and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.BindPFlag("host.port", fs.Lookup("port"))
	v.BindPFlag("sweep", fs.Lookup("sweep"))

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by existing deployments
	v.BindEnv("ai.gemini_api_key", "AI_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("jwt.secret", "JWT_SECRET", "SECURITY_JWT_SECRET")
	v.BindEnv("app.public_url", "APP_PUBLIC_URL", "SERVER_URL")
	v.BindEnv("app.origins", "APP_ORIGINS", "ORIGIN")

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if *configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate returns an error if something is critically wrong and the
// application can't run because of that
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.App.PublicURL == "" {
		return errors.New("app.public_url can't be empty")
	}
	c.App.PublicURL = strings.TrimRight(c.App.PublicURL, "/")

	if c.Host.Port <= 0 || c.Host.Port > 65535 {
		return errors.New("invalid port provided")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn can't be empty")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not set. Set it as the JWT_SECRET environment variable or in config.toml, for example:\n\n%s", genSecret())
	}

	if c.AI.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}

	if c.Mail.Port <= 0 {
		return errors.New("invalid mail port provided")
	}

	if c.Mail.Sender == "" {
		c.Mail.Sender = c.Mail.Username
	}

	switch c.Storage.Type {
	case "s3":
		s := c.Storage.S3
		if s.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if s.AccessKeyID == "" {
			return errors.New("access key id can't be empty")
		}
		if s.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
		if s.PublicURL == "" {
			return errors.New("storage.s3.public_url can't be empty")
		}
		if s.AccountID == "" && s.Region == "" {
			return errors.New("either storage.s3.region or storage.s3.account_id must be set")
		}
	case "local":
		if c.Storage.Local.Dir == "" {
			return errors.New("storage.local.dir can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.Security.RateLimit <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if c.Security.Argon.Memory == 0 || c.Security.Argon.Iterations == 0 || c.Security.Argon.Parallelism == 0 {
		return errors.New("security.argon memory, iterations and parallelism must be bigger than 0")
	}

	if c.Cleanup.OrphansGrace <= 0 {
		return errors.New("cleanup.orphans_grace must be bigger than 0")
	}

	return nil
}
