package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config app configuration
type Config struct {
	SecretKey string `mapstructure:"secretKey"`
	// key for encrypting provider credentials at rest, 32 bytes
	EncryptionKey string `mapstructure:"encryptionKey"`

	// donors may donate again after this many days
	CooldownDays int `mapstructure:"cooldownDays"`
	// reward points awarded per recorded donation
	RewardPointsPerDonation int `mapstructure:"rewardPointsPerDonation"`
	// radius for urgent-request donor matching
	NotifyRadiusKm float64 `mapstructure:"notifyRadiusKm"`
	// units expiring within this horizon are flagged by the sweep
	ExpiryHorizonDays int `mapstructure:"expiryHorizonDays"`

	// per-attempt timeout on outbound provider calls
	ProviderTimeout time.Duration `mapstructure:"providerTimeout"`
	// recipients handled per chunk on bulk sends
	BulkChunkSize int `mapstructure:"bulkChunkSize"`
	// courtesy delay between consecutive WhatsApp sends
	WhatsAppSendDelay time.Duration `mapstructure:"whatsappSendDelay"`
}

// InitConfig initialize app configuration
func InitConfig() (*Config, error) {
	config := &Config{}
	subv := viper.Sub("app")
	if err := subv.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.CooldownDays == 0 {
		config.CooldownDays = 56
	}
	if config.RewardPointsPerDonation == 0 {
		config.RewardPointsPerDonation = 10
	}
	if config.NotifyRadiusKm == 0 {
		config.NotifyRadiusKm = 50
	}
	if config.ExpiryHorizonDays == 0 {
		config.ExpiryHorizonDays = 7
	}
	if config.ProviderTimeout == 0 {
		config.ProviderTimeout = 15 * time.Second
	}
	if config.BulkChunkSize == 0 {
		config.BulkChunkSize = 100
	}
	return config, nil
}
