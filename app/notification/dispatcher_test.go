package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink-app/bloodlink-server/app/channel"
	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/model"
)

type fakeChannel struct {
	name    string
	failFor map[int]bool
	sent    []int
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, dest channel.Destination, _ channel.Message) (string, error) {
	if f.failFor[dest.AccountID] {
		return "", fmt.Errorf("provider rejected message for account %d", dest.AccountID)
	}
	f.sent = append(f.sent, dest.AccountID)
	return fmt.Sprintf("msg-%d", dest.AccountID), nil
}

func testDispatcher(conf *config.Config, channels map[string]channel.Channel, persisted *[]*model.Notification) *Dispatcher {
	return &Dispatcher{
		conf:     conf,
		channels: channels,
		resolve: func(ids []int) ([]channel.Destination, error) {
			dests := make([]channel.Destination, 0, len(ids))
			for _, id := range ids {
				dests = append(dests, channel.Destination{
					AccountID: id,
					Name:      fmt.Sprintf("Donor %d", id),
					Phone:     fmt.Sprintf("+91900000000%d", id),
					Email:     fmt.Sprintf("donor%d@example.com", id),
				})
			}
			return dests, nil
		},
		persist: func(n *model.Notification) error {
			*persisted = append(*persisted, n)
			return nil
		},
	}
}

func TestDispatchIsolatesChannelFailures(t *testing.T) {
	sms := &fakeChannel{name: consts.ChannelSMS, failFor: map[int]bool{3: true}}
	var persisted []*model.Notification

	d := testDispatcher(&config.Config{BulkChunkSize: 100},
		map[string]channel.Channel{consts.ChannelSMS: sms}, &persisted)

	report := d.Dispatch(context.Background(), Input{
		Recipients: []int{1, 2, 3, 4, 5},
		Title:      "Urgent: O- blood needed",
		Message:    "A critical request near you needs O- blood.",
		Category:   consts.CategoryBloodRequest,
		Priority:   consts.PriorityCritical,
		Channels:   []string{consts.ChannelInApp, consts.ChannelSMS},
	})

	// one failed SMS must not stop the other sends or any in-app record
	assert.Equal(t, 5, report.Requested)
	assert.Equal(t, 4, report.Sent(consts.ChannelSMS))
	assert.Equal(t, 1, report.Failed(consts.ChannelSMS))
	assert.Equal(t, 5, report.Sent(consts.ChannelInApp))
	assert.Len(t, persisted, 5)

	for _, n := range persisted {
		assert.True(t, n.SentStatus.InApp)
		if n.RecipientAccountID == 3 {
			assert.False(t, n.SentStatus.SMS)
		} else {
			assert.True(t, n.SentStatus.SMS)
		}
	}
}

func TestDispatchUnknownChannelRecorded(t *testing.T) {
	var persisted []*model.Notification
	d := testDispatcher(&config.Config{BulkChunkSize: 100}, map[string]channel.Channel{}, &persisted)

	report := d.Dispatch(context.Background(), Input{
		Recipients: []int{7},
		Title:      "t",
		Message:    "m",
		Channels:   []string{"pager"},
	})

	require.Len(t, report.Attempts, 2)
	assert.Equal(t, "unknown channel", report.Attempts[0].Error)
	assert.Len(t, persisted, 1)
}

func TestDispatchSkipsRecipientsWithoutContact(t *testing.T) {
	sms := &fakeChannel{name: consts.ChannelSMS, failFor: map[int]bool{}}
	var persisted []*model.Notification

	d := testDispatcher(&config.Config{BulkChunkSize: 100},
		map[string]channel.Channel{consts.ChannelSMS: sms}, &persisted)
	d.resolve = func(ids []int) ([]channel.Destination, error) {
		return []channel.Destination{{AccountID: ids[0], Name: "No Phone"}}, nil
	}

	report := d.Dispatch(context.Background(), Input{
		Recipients: []int{9},
		Title:      "t",
		Message:    "m",
		Channels:   []string{consts.ChannelSMS},
	})

	assert.Equal(t, 0, report.Sent(consts.ChannelSMS))
	assert.Equal(t, 1, report.Failed(consts.ChannelSMS))
	assert.Empty(t, sms.sent)
	// the in-app record still lands
	assert.Len(t, persisted, 1)
}

func TestDispatchChunksRecipients(t *testing.T) {
	var persisted []*model.Notification
	var chunks [][]int

	d := testDispatcher(&config.Config{BulkChunkSize: 2}, map[string]channel.Channel{}, &persisted)
	base := d.resolve
	d.resolve = func(ids []int) ([]channel.Destination, error) {
		chunks = append(chunks, ids)
		return base(ids)
	}

	d.Dispatch(context.Background(), Input{
		Recipients: []int{1, 2, 3, 4, 5},
		Title:      "t",
		Message:    "m",
		Channels:   []string{consts.ChannelInApp},
	})

	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2}, chunks[0])
	assert.Equal(t, []int{5}, chunks[2])
	assert.Len(t, persisted, 5)
}
