package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/retroboard/models"
	"github.com/danielhkuo/retroboard/snapshot"
)

// Snapshot store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreS3       = "s3"
)

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	PathStyle       bool   `yaml:"path_style"`
	DisableChecksum bool   `yaml:"disable_checksum"`
}

type Config struct {
	Port           int      `yaml:"port"`
	Store          string   `yaml:"store"`
	SnapshotFile   string   `yaml:"snapshot_file"`
	DatabaseURL    string   `yaml:"database_url"`
	RedisURL       string   `yaml:"redis_url"`
	RedisKey       string   `yaml:"redis_key"`
	S3             S3Config `yaml:"s3"`
	StaticDir      string   `yaml:"static_dir"`
	MaxVotes       int      `yaml:"max_votes"`
	Columns        []string `yaml:"columns"`
	QueueSize      int      `yaml:"queue_size"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() Config {
	return Config{
		Port:         3100,
		Store:        StoreFile,
		SnapshotFile: "rooms.json",
		RedisKey:     snapshot.DefaultRedisKey,
		S3:           S3Config{Key: snapshot.DefaultS3Key},
		StaticDir:    "public",
		MaxVotes:     models.DefaultMaxVotes,
		Columns:      append([]string(nil), models.DefaultColumns...),
		QueueSize:    models.DefaultQueueSize,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// ParseFlags builds the config from defaults, an optional YAML file,
// environment variables and flags, later sources overriding earlier ones.
func ParseFlags(args []string) (Config, error) {
	cfg := Defaults()

	var fv Config
	var configPath string

	fs := pflag.NewFlagSet("retroboard", pflag.ContinueOnError)

	fs.StringVarP(&configPath, "config", "c", "", "YAML config file")

	// Network config
	fs.IntVarP(&fv.Port, "port", "p", cfg.Port, "Server port")
	fs.StringVar(&fv.StaticDir, "static-dir", cfg.StaticDir, "Directory served at / (empty disables)")
	fs.StringSliceVar(&fv.AllowedOrigins, "allowed-origins", nil, "Websocket origin allow-list (empty allows any)")

	// Snapshot store
	fs.StringVarP(&fv.Store, "store", "s", cfg.Store, "Snapshot store (memory, file, sqlite, postgres, redis, s3)")
	fs.StringVarP(&fv.SnapshotFile, "snapshot-file", "f", cfg.SnapshotFile, "Snapshot file path")
	fs.StringVarP(&fv.DatabaseURL, "database-url", "d", "", "Database URL (sqlite or postgres store)")
	fs.StringVar(&fv.RedisURL, "redis-url", "", "Redis URL")
	fs.StringVar(&fv.RedisKey, "redis-key", cfg.RedisKey, "Redis key holding the snapshot")
	fs.StringVar(&fv.S3.Bucket, "s3-bucket", "", "S3 bucket")
	fs.StringVar(&fv.S3.Key, "s3-key", cfg.S3.Key, "S3 object key")
	fs.StringVar(&fv.S3.Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	fs.StringVar(&fv.S3.Region, "s3-region", "", "S3 region")
	fs.StringVar(&fv.S3.AccessKey, "s3-access-key", "", "S3 access key (prefer env)")
	fs.StringVar(&fv.S3.SecretKey, "s3-secret-key", "", "S3 secret key (prefer env)")
	fs.BoolVar(&fv.S3.PathStyle, "s3-path-style", false, "Use path-style S3 addressing")
	fs.BoolVar(&fv.S3.DisableChecksum, "s3-disable-checksum", false, "Only send S3 checksums when required")

	// Board rules
	fs.IntVar(&fv.MaxVotes, "max-votes", cfg.MaxVotes, "Votes per identity per room")
	fs.StringSliceVar(&fv.Columns, "columns", cfg.Columns, "Board column ids")
	fs.IntVar(&fv.QueueSize, "queue-size", cfg.QueueSize, "Outbound frames buffered per connection")

	// Logging
	fs.StringVar(&fv.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&fv.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if configPath == "" {
		configPath = os.Getenv("RETRO_CONFIG")
	}
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	applyFlags(fs, fv, &cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// Keys absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := os.Getenv("MAX_VOTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid MAX_VOTES env variable")
		}
		cfg.MaxVotes = n
	}
	if v := os.Getenv("QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid QUEUE_SIZE env variable")
		}
		cfg.QueueSize = n
	}
	for _, key := range []string{"S3_PATH_STYLE", "S3_DISABLE_CHECKSUM"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s env variable", key)
		}
		if key == "S3_PATH_STYLE" {
			cfg.S3.PathStyle = b
		} else {
			cfg.S3.DisableChecksum = b
		}
	}

	envString("SNAPSHOT_STORE", &cfg.Store)
	envString("SNAPSHOT_FILE", &cfg.SnapshotFile)
	envString("DATABASE_URL", &cfg.DatabaseURL)
	envString("REDIS_URL", &cfg.RedisURL)
	envString("REDIS_KEY", &cfg.RedisKey)
	envString("S3_BUCKET", &cfg.S3.Bucket)
	envString("S3_KEY", &cfg.S3.Key)
	envString("S3_ENDPOINT", &cfg.S3.Endpoint)
	envString("S3_REGION", &cfg.S3.Region)
	envString("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	envString("S3_SECRET_KEY", &cfg.S3.SecretKey)
	envString("STATIC_DIR", &cfg.StaticDir)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)

	if v := os.Getenv("BOARD_COLUMNS"); v != "" {
		cfg.Columns = splitList(v)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// applyFlags copies only the flags given on the command line
func applyFlags(fs *pflag.FlagSet, fv Config, cfg *Config) {
	set := map[string]func(){
		"port":                func() { cfg.Port = fv.Port },
		"static-dir":          func() { cfg.StaticDir = fv.StaticDir },
		"allowed-origins":     func() { cfg.AllowedOrigins = trimList(fv.AllowedOrigins) },
		"store":               func() { cfg.Store = fv.Store },
		"snapshot-file":       func() { cfg.SnapshotFile = fv.SnapshotFile },
		"database-url":        func() { cfg.DatabaseURL = fv.DatabaseURL },
		"redis-url":           func() { cfg.RedisURL = fv.RedisURL },
		"redis-key":           func() { cfg.RedisKey = fv.RedisKey },
		"s3-bucket":           func() { cfg.S3.Bucket = fv.S3.Bucket },
		"s3-key":              func() { cfg.S3.Key = fv.S3.Key },
		"s3-endpoint":         func() { cfg.S3.Endpoint = fv.S3.Endpoint },
		"s3-region":           func() { cfg.S3.Region = fv.S3.Region },
		"s3-access-key":       func() { cfg.S3.AccessKey = fv.S3.AccessKey },
		"s3-secret-key":       func() { cfg.S3.SecretKey = fv.S3.SecretKey },
		"s3-path-style":       func() { cfg.S3.PathStyle = fv.S3.PathStyle },
		"s3-disable-checksum": func() { cfg.S3.DisableChecksum = fv.S3.DisableChecksum },
		"max-votes":           func() { cfg.MaxVotes = fv.MaxVotes },
		"columns":             func() { cfg.Columns = trimList(fv.Columns) },
		"queue-size":          func() { cfg.QueueSize = fv.QueueSize },
		"log-level":           func() { cfg.LogLevel = fv.LogLevel },
		"log-format":          func() { cfg.LogFormat = fv.LogFormat },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := set[f.Name]; ok {
			apply()
		}
	})
}

func splitList(s string) []string {
	return trimList(strings.Split(s, ","))
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate reports the first setting that cannot be used to start the server
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.SnapshotFile == "" {
			return errors.New("snapshot file required for file store (use -f or SNAPSHOT_FILE env)")
		}
	case StoreSQLite, StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("redis URL required (use --redis-url or REDIS_URL env)")
		}
	case StoreS3:
		if c.S3.Bucket == "" {
			return errors.New("S3 bucket required (use --s3-bucket or S3_BUCKET env)")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	if c.MaxVotes < 1 {
		return fmt.Errorf("max votes must be at least 1, got %d", c.MaxVotes)
	}

	if len(c.Columns) == 0 {
		return errors.New("at least one column required")
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if col == "" {
			return errors.New("column ids must not be empty")
		}
		if seen[col] {
			return fmt.Errorf("duplicate column %q", col)
		}
		seen[col] = true
	}

	if c.QueueSize < 1 {
		return fmt.Errorf("queue size must be at least 1, got %d", c.QueueSize)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
