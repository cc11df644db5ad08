package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloodlink-app/bloodlink-server/app/channel"
	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/provider"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// Emitter pushes a realtime event to an account's live sessions
type Emitter interface {
	EmitToUser(accountID int, event string, payload interface{})
}

// Input one notification intent fanned out to a recipient set
type Input struct {
	Recipients []int
	Title      string
	Message    string
	Category   string
	Priority   string
	Channels   []string
	Data       model.NotificationData
}

// Attempt the outcome of one send to one recipient on one channel
type Attempt struct {
	AccountID int    `json:"accountId"`
	Channel   string `json:"channel"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report per-recipient, per-channel outcomes of a dispatch. A dispatch
// never fails as a whole; callers inspect the report when they care.
type Report struct {
	Requested int       `json:"requested"`
	Attempts  []Attempt `json:"attempts"`
}

// Sent counts successful attempts on a channel
func (r *Report) Sent(channelName string) int {
	n := 0
	for _, a := range r.Attempts {
		if a.Channel == channelName && a.Error == "" {
			n++
		}
	}
	return n
}

// Failed counts failed attempts on a channel
func (r *Report) Failed(channelName string) int {
	n := 0
	for _, a := range r.Attempts {
		if a.Channel == channelName && a.Error != "" {
			n++
		}
	}
	return n
}

// Dispatcher fans a notification intent out across the in-app record and
// the requested external channels. Every send is isolated: one failing
// recipient or provider never blocks the rest of the batch.
type Dispatcher struct {
	conf     *config.Config
	channels map[string]channel.Channel

	resolve func(accountIDs []int) ([]channel.Destination, error)
	persist func(n *model.Notification) error
	emit    func(accountID int, event string, payload interface{})
}

// NewDispatcher wires the dispatcher against the live repos and channel
// adapters
func NewDispatcher(repos *model.Repos, conf *config.Config, providers provider.Service, emitter Emitter) *Dispatcher {
	channels := map[string]channel.Channel{
		consts.ChannelSMS:      channel.NewSMS(providers, conf.ProviderTimeout),
		consts.ChannelEmail:    channel.NewEmail(providers),
		consts.ChannelWhatsApp: channel.NewWhatsApp(providers, conf.ProviderTimeout),
	}

	return &Dispatcher{
		conf:     conf,
		channels: channels,
		resolve: func(accountIDs []int) ([]channel.Destination, error) {
			accounts, err := resolveAccounts(repos.MasterDB, accountIDs)
			if err != nil {
				return nil, err
			}
			dests := make([]channel.Destination, 0, len(accounts))
			for _, acc := range accounts {
				dests = append(dests, channel.Destination{
					AccountID: acc.ID,
					Name:      acc.Name,
					Phone:     acc.Phone,
					Email:     acc.Email,
				})
			}
			return dests, nil
		},
		persist: func(n *model.Notification) error {
			return createNotification(repos.MongoDB, repos.MasterDB, n)
		},
		emit: emitter.EmitToUser,
	}
}

// Dispatch resolves the recipients chunk by chunk and delivers to each.
// The in-app record is written for every resolved recipient regardless of
// the requested channels; external sends follow and their failures are
// recorded on the report, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, in Input) *Report {
	defer util.Recover()

	report := &Report{Requested: len(in.Recipients)}

	chunkSize := d.conf.BulkChunkSize
	if chunkSize <= 0 {
		chunkSize = 100
	}

	for start := 0; start < len(in.Recipients); start += chunkSize {
		end := start + chunkSize
		if end > len(in.Recipients) {
			end = len(in.Recipients)
		}

		dests, err := d.resolve(in.Recipients[start:end])
		if err != nil {
			for _, id := range in.Recipients[start:end] {
				report.Attempts = append(report.Attempts, Attempt{
					AccountID: id,
					Channel:   consts.ChannelInApp,
					Error:     err.Error(),
				})
			}
			continue
		}

		for _, dest := range dests {
			d.dispatchOne(ctx, dest, in, report)
		}
	}

	return report
}

func (d *Dispatcher) dispatchOne(ctx context.Context, dest channel.Destination, in Input, report *Report) {
	record := &model.Notification{
		ID:                 primitive.NewObjectID(),
		RecipientAccountID: dest.AccountID,
		Category:           in.Category,
		Title:              in.Title,
		Message:            in.Message,
		Data:               in.Data,
		Priority:           in.Priority,
		IsRead:             false,
		Channels:           in.Channels,
		CreatedDate:        time.Now(),
	}
	record.SentStatus.InApp = true

	msg := channel.Message{Title: in.Title, Body: in.Message}

	for _, name := range in.Channels {
		if name == consts.ChannelInApp {
			continue
		}
		ch, ok := d.channels[name]
		if !ok {
			report.Attempts = append(report.Attempts, Attempt{
				AccountID: dest.AccountID,
				Channel:   name,
				Error:     "unknown channel",
			})
			continue
		}
		if missing := missingContact(name, dest); missing != "" {
			report.Attempts = append(report.Attempts, Attempt{
				AccountID: dest.AccountID,
				Channel:   name,
				Error:     missing,
			})
			continue
		}

		id, err := ch.Send(ctx, dest, msg)
		attempt := Attempt{AccountID: dest.AccountID, Channel: name, MessageID: id}
		if err != nil {
			attempt.Error = err.Error()
		} else {
			switch name {
			case consts.ChannelSMS:
				record.SentStatus.SMS = true
			case consts.ChannelEmail:
				record.SentStatus.Email = true
			case consts.ChannelWhatsApp:
				record.SentStatus.WhatsApp = true
			}
		}
		report.Attempts = append(report.Attempts, attempt)

		if name == consts.ChannelWhatsApp && d.conf.WhatsAppSendDelay > 0 {
			time.Sleep(d.conf.WhatsAppSendDelay)
		}
	}

	attempt := Attempt{AccountID: dest.AccountID, Channel: consts.ChannelInApp}
	if err := d.persist(record); err != nil {
		attempt.Error = err.Error()
	} else if d.emit != nil {
		d.emit(dest.AccountID, "notification", record)
	}
	report.Attempts = append(report.Attempts, attempt)
}

func missingContact(channelName string, dest channel.Destination) string {
	switch channelName {
	case consts.ChannelSMS, consts.ChannelWhatsApp:
		if dest.Phone == "" {
			return "no phone number on file"
		}
	case consts.ChannelEmail:
		if dest.Email == "" {
			return "no email address on file"
		}
	}
	return ""
}
