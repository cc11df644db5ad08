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

const wabaMessagesURL = "https://graph.facebook.com/v18.0/%s/messages"

type whatsappChannel struct {
	providers provider.Service
	client    *http.Client
}

// NewWhatsApp builds the WhatsApp channel (twilio or WhatsApp Business API)
func NewWhatsApp(providers provider.Service, timeout time.Duration) Channel {
	return &whatsappChannel{
		providers: providers,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *whatsappChannel) Name() string { return consts.ChannelWhatsApp }

func (c *whatsappChannel) Send(ctx context.Context, dest Destination, msg Message) (string, error) {
	cfg, err := c.providers.Get()
	if err != nil {
		return "", errors.Wrap(err, "unable to load whatsapp configuration")
	}
	if !cfg.WhatsApp.Enabled {
		return "", errors.New("whatsapp service is disabled")
	}
	if dest.Phone == "" {
		return "", errors.New("recipient has no phone number")
	}

	body := "*" + msg.Title + "*\n\n" + msg.Body

	switch cfg.WhatsApp.Provider {
	case "twilio":
		return c.sendViaTwilio(ctx, cfg.WhatsApp.TwilioAccountSID, cfg.WhatsApp.TwilioAuthToken,
			cfg.WhatsApp.TwilioWhatsAppNumber, dest.Phone, body)
	case "waba":
		return c.sendViaWABA(ctx, cfg.WhatsApp.WABAPhoneNumberID, cfg.WhatsApp.WABAAccessToken, dest.Phone, body)
	}
	return "", errors.Errorf("invalid whatsapp provider %q", cfg.WhatsApp.Provider)
}

func (c *whatsappChannel) sendViaTwilio(ctx context.Context, sid, token, from, to, body string) (string, error) {
	if sid == "" || token == "" || from == "" {
		return "", errors.New("twilio whatsapp configuration is incomplete")
	}

	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
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
		return "", errors.Wrap(err, "twilio whatsapp request failed")
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

func (c *whatsappChannel) sendViaWABA(ctx context.Context, phoneNumberID, accessToken, to, body string) (string, error) {
	if phoneNumberID == "" || accessToken == "" {
		return "", errors.New("waba configuration is incomplete")
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf(wabaMessagesURL, phoneNumberID), strings.NewReader(string(raw)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "waba request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("waba returned %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "unable to decode waba response")
	}
	if len(out.Messages) == 0 {
		return "", errors.New("waba returned no message id")
	}
	return out.Messages[0].ID, nil
}
