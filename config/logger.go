package config

import (
	"github.com/spf13/viper"
)

// Logger logger config struct
type Logger struct {
	Level      int    `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	OutputFile string `json:"output_file" yaml:"output_file"`
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:      getIntOrDefault(v, "logger.level", 4),
		Format:     getStringOrDefault(v, "logger.format", "text"),
		Output:     getStringOrDefault(v, "logger.output", "stderr"),
		OutputFile: v.GetString("logger.output_file"),
	}
}
