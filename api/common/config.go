package common

import (
	"time"

	"github.com/spf13/viper"
)

// Config api configuration
type Config struct {
	Port           int           `mapstructure:"port"`
	ProxyCount     int           `mapstructure:"proxyCount"`
	MaxContentSize int64         `mapstructure:"maxContentSize"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	CloseTimeout   time.Duration `mapstructure:"closeTimeout"`
}

// InitConfig initialize api configuration
func InitConfig() (*Config, error) {
	config := &Config{}
	subv := viper.Sub("api")
	err := subv.Unmarshal(&config)
	if config.MaxContentSize == 0 {
		config.MaxContentSize = 5
	}
	return config, err
}
