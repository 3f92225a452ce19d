package api

import (
	"encoding/json"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port      string          `yaml:"port" env:"KESTREL_PORT" env-default:"8000" json:"port"`
	Redis     RedisConfig     `yaml:"redis" json:"redis"`
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`
	TLS       TLSConfig       `yaml:"tls" json:"tls"`
	// SyncInterval is how often the monitor reconciles drone statuses
	// against mission state and checks database health.
	SyncInterval time.Duration `yaml:"syncInterval" env:"KESTREL_SYNC_INTERVAL" env-default:"1m" json:"syncInterval"`
	// MissionExpiry is how long completed and aborted missions are kept
	// before the monitor deletes them.
	MissionExpiry  time.Duration `yaml:"missionExpiry" env:"KESTREL_MISSION_EXPIRY" env-default:"720h" json:"missionExpiry"`
	MemoryLimitMiB int64         `yaml:"memoryLimitMiB" env:"KESTREL_MEMORY_LIMIT_MIB" env-default:"1024" json:"memoryLimitMiB"`
}

type DashboardConfig struct {
	Enabled bool   `yaml:"enabled" env:"KESTREL_DASHBOARD" env-default:"true" json:"enabled"`
	Src     string `yaml:"src" env:"KESTREL_DASHBOARD_SRC" env-default:"" json:"src"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379" json:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:"" json:"password"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0" json:"db"`
}

type TLSConfig struct {
	Auto     bool   `yaml:"auto" env:"TLS_AUTO" env-default:"true" json:"auto"`
	Host     string `yaml:"host" env:"TLS_HOST" env-default:"" json:"host"`
	CertFile string `yaml:"certFile" env:"TLS_CERT_FILE" env-default:"cert.pem" json:"certFile"`
	KeyFile  string `yaml:"keyFile" env:"TLS_KEY_FILE" env-default:"key.pem" json:"keyFile"`
}

func LoadConfig(configPath string) Config {
	var config Config
	if configPath == "" {
		log.Debug("Using configuration environment")
		err := cleanenv.ReadEnv(&config)
		if err != nil {
			panic(err)
		}
	} else {
		log.Debugf("Loading configuration from %s", configPath)
		err := cleanenv.ReadConfig(configPath, &config)
		if err != nil {
			panic(err)
		}
	}
	configJson, _ := json.Marshal(config)
	log.Debug("Configuration Loaded: ", string(configJson))

	return config
}
