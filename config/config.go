// Package config 负责应用配置与后处理 Node 注册表。
//
// 应用配置按 默认值 → YAML 文件 → SHOPREC_ 环境变量 的顺序分层加载（koanf），
// 加载后用 validator 校验。嵌套字段的环境变量用双下划线分隔：
//
//	SHOPREC_RECOMMEND__NEIGHBORS=5  ->  recommend.neighbors
//	SHOPREC_STORAGE__REDIS__ADDR=127.0.0.1:6379  ->  storage.redis.addr
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logging"
	"github.com/rushteam/shoprec/store"
)

const (
	// EnvPrefix 是环境变量前缀
	EnvPrefix = "SHOPREC_"

	// ConfigPathEnvVar 指定配置文件路径
	ConfigPathEnvVar = "SHOPREC_CONFIG"
)

// DefaultConfigPaths 是未显式指定时依次查找的配置文件。
var DefaultConfigPaths = []string{
	"shoprec.yaml",
	"config/shoprec.yaml",
}

// 存储后端
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config 是应用配置。
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	Log       logging.Config  `koanf:"log"`
}

// DataConfig 是快照文件位置。
type DataConfig struct {
	Catalog string `koanf:"catalog" validate:"required"`
	Ratings string `koanf:"ratings" validate:"required"`
	History string `koanf:"history" validate:"required"`
}

// RecommendConfig 是推荐参数。
type RecommendConfig struct {
	TopK      int     `koanf:"top_k" validate:"gte=1"`
	Neighbors int     `koanf:"neighbors" validate:"gte=1"`
	Workers   int     `koanf:"workers" validate:"gte=0"`
	RatingMin float64 `koanf:"rating_min"`
	RatingMax float64 `koanf:"rating_max" validate:"gtfield=RatingMin"`

	// Pipeline 是后处理配置文件，为空表示不做后处理
	Pipeline string `koanf:"pipeline"`
}

// StorageConfig 决定评分日志与推荐历史写到哪里。
//
// file 时评分追加到 Data.Ratings、历史追加到 Data.History；
// redis / memory 时两者都写入对应 key 的 list。
type StorageConfig struct {
	Backend    string            `koanf:"backend" validate:"oneof=file memory redis"`
	RatingsKey string            `koanf:"ratings_key" validate:"required"`
	HistoryKey string            `koanf:"history_key" validate:"required"`
	Redis      store.RedisConfig `koanf:"redis" validate:"-"`

	// 评分追加失败时的重试次数与线性退避间隔
	RetryAttempts int           `koanf:"retry_attempts" validate:"gte=1,lte=10"`
	RetryBackoff  time.Duration `koanf:"retry_backoff" validate:"gte=0"`

	// 连续失败 BreakerFailures 次后熔断评分写入 BreakerTimeout，0 表示不熔断
	BreakerFailures int           `koanf:"breaker_failures" validate:"gte=0"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gte=0"`
}

// Default 返回默认配置。
func Default() *Config {
	rc := &core.DefaultRecallConfig{}
	min, max := rc.DefaultRatingRange()
	return &Config{
		Data: DataConfig{
			Catalog: "products.csv",
			Ratings: "ratings.csv",
			History: "recommendation_log.txt",
		},
		Recommend: RecommendConfig{
			TopK:      rc.DefaultTopK(),
			Neighbors: rc.DefaultNeighbors(),
			Workers:   rc.DefaultWorkers(),
			RatingMin: min,
			RatingMax: max,
		},
		Storage: StorageConfig{
			Backend:       BackendFile,
			RatingsKey:    "shoprec:ratings",
			HistoryKey:    "shoprec:history",
			Redis:         store.RedisConfig{Addr: "localhost:6379"},
			RetryAttempts: 3,
			RetryBackoff:  100 * time.Millisecond,

			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Log: logging.Config{Level: "info", Format: "console"},
	}
}

// Load 分层加载配置。path 为空时依次尝试 SHOPREC_CONFIG 与 DefaultConfigPaths，
// 都不存在则只使用默认值与环境变量；显式给出的 path 不存在时返回错误。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey: SHOPREC_STORAGE__REDIS__ADDR -> storage.redis.addr
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验配置；Redis 连接参数只在 backend 为 redis 时检查。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Storage.Backend == BackendRedis {
		if err := validate.Struct(c.Storage.Redis); err != nil {
			return fmt.Errorf("storage.redis: %w", err)
		}
	}
	return nil
}
