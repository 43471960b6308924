package config

import (
	"time"

	"github.com/spf13/viper"
)

// orDefault reads key with get when it is set, otherwise returns def
func orDefault[T any](v *viper.Viper, key string, def T, get func(string) T) T {
	if !v.IsSet(key) {
		return def
	}
	return get(key)
}

func getDurationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	return orDefault(v, key, def, v.GetDuration)
}

func getIntOrDefault(v *viper.Viper, key string, def int) int {
	return orDefault(v, key, def, v.GetInt)
}

func getUint32OrDefault(v *viper.Viper, key string, def uint32) uint32 {
	return orDefault(v, key, def, v.GetUint32)
}

func getFloat64OrDefault(v *viper.Viper, key string, def float64) float64 {
	return orDefault(v, key, def, v.GetFloat64)
}

func getStringOrDefault(v *viper.Viper, key string, def string) string {
	return orDefault(v, key, def, v.GetString)
}
