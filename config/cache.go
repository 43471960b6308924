package config

import (
	"time"

	"github.com/spf13/viper"
)

// Cache redis response cache config struct
type Cache struct {
	Addr     string        `json:"addr" yaml:"addr"`
	Password string        `json:"password" yaml:"password"`
	DB       int           `json:"db" yaml:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
	Prefix   string        `json:"prefix" yaml:"prefix"`
}

// Enabled reports whether a redis address is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.Addr != ""
}

func getCacheConfig(v *viper.Viper) *Cache {
	return &Cache{
		Addr:     v.GetString("cache.addr"),
		Password: v.GetString("cache.password"),
		DB:       v.GetInt("cache.db"),
		TTL:      getDurationOrDefault(v, "cache.ttl", time.Minute),
		Prefix:   getStringOrDefault(v, "cache.prefix", "couchview:"),
	}
}
