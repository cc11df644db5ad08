package channel

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	mail "gopkg.in/mail.v2"

	"github.com/bloodlink-app/bloodlink-server/app/provider"
	"github.com/bloodlink-app/bloodlink-server/consts"
)

type emailChannel struct {
	providers provider.Service
}

// NewEmail builds the email channel backed by SMTP
func NewEmail(providers provider.Service) Channel {
	return &emailChannel{providers: providers}
}

func (c *emailChannel) Name() string { return consts.ChannelEmail }

func (c *emailChannel) Send(ctx context.Context, dest Destination, msg Message) (string, error) {
	cfg, err := c.providers.Get()
	if err != nil {
		return "", errors.Wrap(err, "unable to load email configuration")
	}
	if !cfg.Email.Enabled {
		return "", errors.New("email service is disabled")
	}
	if dest.Email == "" {
		return "", errors.New("recipient has no email address")
	}
	if cfg.Email.SMTPHost == "" || cfg.Email.SMTPUser == "" {
		return "", errors.New("smtp configuration is incomplete")
	}

	from := cfg.Email.FromEmail
	if from == "" {
		from = cfg.Email.SMTPUser
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", from, cfg.Email.FromName)
	m.SetHeader("To", dest.Email)
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/html", fmt.Sprintf("<h2>%s</h2><p>%s</p>", msg.Title, msg.Body))

	dialer := mail.NewDialer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUser, cfg.Email.SMTPPassword)
	if err := dialer.DialAndSend(m); err != nil {
		return "", errors.Wrap(err, "unable to send email")
	}
	return dest.Email, nil
}
