package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bloodlink-app/bloodlink-server/app/provider"
	"github.com/bloodlink-app/bloodlink-server/consts"
)

const (
	twilioMessagesURL = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"
	msg91FlowURL      = "https://api.msg91.com/api/v5/flow/"
)

type smsChannel struct {
	providers provider.Service
	client    *http.Client
}

// NewSMS builds the SMS channel. The provider (twilio or msg91) and its
// credentials are resolved from the live configuration snapshot on every
// send, so a config update applies without a restart.
func NewSMS(providers provider.Service, timeout time.Duration) Channel {
	return &smsChannel{
		providers: providers,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *smsChannel) Name() string { return consts.ChannelSMS }

func (c *smsChannel) Send(ctx context.Context, dest Destination, msg Message) (string, error) {
	cfg, err := c.providers.Get()
	if err != nil {
		return "", errors.Wrap(err, "unable to load sms configuration")
	}
	if !cfg.SMS.Enabled {
		return "", errors.New("sms service is disabled")
	}
	if dest.Phone == "" {
		return "", errors.New("recipient has no phone number")
	}

	body := msg.Title + "\n\n" + msg.Body

	switch cfg.SMS.Provider {
	case "twilio":
		return c.sendViaTwilio(ctx, cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioPhoneNumber, dest.Phone, body)
	case "msg91":
		return c.sendViaMSG91(ctx, cfg.SMS.MSG91AuthKey, cfg.SMS.MSG91SenderID, dest.Phone, body)
	}
	return "", errors.Errorf("invalid sms provider %q", cfg.SMS.Provider)
}

func (c *smsChannel) sendViaTwilio(ctx context.Context, sid, token, from, to, body string) (string, error) {
	if sid == "" || token == "" || from == "" {
		return "", errors.New("twilio configuration is incomplete")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf(twilioMessagesURL, sid), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(sid, token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "twilio request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("twilio returned %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "unable to decode twilio response")
	}
	return out.SID, nil
}

func (c *smsChannel) sendViaMSG91(ctx context.Context, authKey, senderID, to, body string) (string, error) {
	if authKey == "" || senderID == "" {
		return "", errors.New("msg91 configuration is incomplete")
	}

	payload := map[string]interface{}{
		"sender": senderID,
		"route":  "4",
		"sms": []map[string]interface{}{{
			"message": body,
			"to":      []string{strings.TrimPrefix(to, "+")},
		}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, msg91FlowURL, strings.NewReader(string(raw)))
	if err != nil {
		return "", err
	}
	req.Header.Set("authkey", authKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "msg91 request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("msg91 returned %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "unable to decode msg91 response")
	}
	return out.RequestID, nil
}
