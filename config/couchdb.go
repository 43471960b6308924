package config

import (
	"time"

	"github.com/spf13/viper"
)

// CouchDB server config struct
type CouchDB struct {
	URL         string        `json:"url" yaml:"url"`
	Database    string        `json:"database" yaml:"database"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	SlowRequest time.Duration `json:"slow_request" yaml:"slow_request"`
	Breaker     *Breaker      `json:"breaker" yaml:"breaker"`
}

// Breaker circuit breaker config struct
type Breaker struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	MaxRequests  uint32        `json:"max_requests" yaml:"max_requests"`
	Interval     time.Duration `json:"interval" yaml:"interval"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	MinRequests  uint32        `json:"min_requests" yaml:"min_requests"`
	FailureRatio float64       `json:"failure_ratio" yaml:"failure_ratio"`
}

func getCouchDBConfig(v *viper.Viper) *CouchDB {
	return &CouchDB{
		URL:         getStringOrDefault(v, "couchdb.url", "http://127.0.0.1:5984"),
		Database:    v.GetString("couchdb.database"),
		Timeout:     getDurationOrDefault(v, "couchdb.timeout", 30*time.Second),
		SlowRequest: getDurationOrDefault(v, "couchdb.slow_request", 5*time.Second),
		Breaker: &Breaker{
			Enabled:      v.GetBool("couchdb.breaker.enabled"),
			MaxRequests:  getUint32OrDefault(v, "couchdb.breaker.max_requests", 1),
			Interval:     getDurationOrDefault(v, "couchdb.breaker.interval", 60*time.Second),
			Timeout:      getDurationOrDefault(v, "couchdb.breaker.timeout", 30*time.Second),
			MinRequests:  getUint32OrDefault(v, "couchdb.breaker.min_requests", 3),
			FailureRatio: getFloat64OrDefault(v, "couchdb.breaker.failure_ratio", 0.6),
		},
	}
}
