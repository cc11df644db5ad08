package provider

import (
	"sync"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// Service exposes the mutable notification-provider configuration. The
// decrypted snapshot is cached in memory; Update and Reload replace it so a
// configuration change takes effect on the next send without a restart.
type Service interface {
	Get() (*model.APIConfiguration, error)
	GetMasked() (*model.APIConfiguration, error)
	Update(cfg *model.APIConfiguration, updatedBy int) (*model.APIConfiguration, error)
	Reload() error
}

type service struct {
	config  *config.Config
	mongodb *mongodatabase.DBConfig

	mu       sync.RWMutex
	snapshot *model.APIConfiguration
}

// NewService - creates new provider configuration service
func NewService(repos *model.Repos, conf *config.Config) Service {
	return &service{
		config:  conf,
		mongodb: repos.MongoDB,
	}
}

func (s *service) Get() (*model.APIConfiguration, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

func (s *service) GetMasked() (*model.APIConfiguration, error) {
	cfg, err := s.Get()
	if err != nil {
		return nil, err
	}
	masked := *cfg
	masked.SMS.TwilioAuthToken = maskSecret(masked.SMS.TwilioAuthToken)
	masked.SMS.MSG91AuthKey = maskSecret(masked.SMS.MSG91AuthKey)
	masked.Email.SMTPPassword = maskSecret(masked.Email.SMTPPassword)
	masked.WhatsApp.TwilioAuthToken = maskSecret(masked.WhatsApp.TwilioAuthToken)
	masked.WhatsApp.WABAAccessToken = maskSecret(masked.WhatsApp.WABAAccessToken)
	return &masked, nil
}

func (s *service) Update(cfg *model.APIConfiguration, updatedBy int) (*model.APIConfiguration, error) {
	stored, err := upsertConfiguration(s.mongodb, []byte(s.config.EncryptionKey), cfg, updatedBy)
	if err != nil {
		return nil, err
	}

	// replace the snapshot with the decrypted form of what was written
	decrypted, err := decryptConfiguration([]byte(s.config.EncryptionKey), stored)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = decrypted
	s.mu.Unlock()

	return s.GetMasked()
}

func (s *service) Reload() error {
	stored, err := loadConfiguration(s.mongodb)
	if err != nil {
		return err
	}

	decrypted, err := decryptConfiguration([]byte(s.config.EncryptionKey), stored)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = decrypted
	s.mu.Unlock()
	return nil
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	return "********"
}
