package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bloodlink-app/bloodlink-server/app/donor"
	"github.com/bloodlink-app/bloodlink-server/app/inventory"
	"github.com/bloodlink-app/bloodlink-server/app/notification"
	"github.com/bloodlink-app/bloodlink-server/app/request"
	"github.com/bloodlink-app/bloodlink-server/consts"
	"github.com/bloodlink-app/bloodlink-server/util"
)

// sweep cadences
const (
	outboxInterval      = 5 * time.Second
	expiryInterval      = time.Hour
	eligibilityInterval = 24 * time.Hour
	inventoryInterval   = 24 * time.Hour
)

const outboxBatch = 50

// Scheduler runs the background sweeps. Every sweep logs and carries on;
// nothing here is ever fatal to the serving process.
type Scheduler struct {
	donors        donor.Service
	requests      request.Service
	inventories   inventory.Service
	notifications notification.Service

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates the scheduler
func New(donors donor.Service, requests request.Service, inventories inventory.Service, notifications notification.Service) *Scheduler {
	return &Scheduler{
		donors:        donors,
		requests:      requests,
		inventories:   inventories,
		notifications: notifications,
		stop:          make(chan struct{}),
	}
}

// Start launches the sweep loops
func (s *Scheduler) Start() {
	s.loop(outboxInterval, s.drainOutbox)
	s.loop(expiryInterval, s.expireRequests)
	s.loop(eligibilityInterval, s.recheckEligibility)
	s.loop(inventoryInterval, s.sweepInventory)
	logrus.Info("scheduler started")
}

// Stop halts every loop and waits for in-flight sweeps
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
	logrus.Info("scheduler stopped")
}

func (s *Scheduler) loop(interval time.Duration, sweep func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(sweep)
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) run(sweep func()) {
	defer util.Recover()
	sweep()
}

func (s *Scheduler) drainOutbox() {
	handled, err := s.notifications.DrainOutbox(outboxBatch)
	if err != nil {
		logrus.Error("outbox sweep failed: ", err)
		return
	}
	if handled > 0 {
		logrus.Info("outbox sweep delivered ", handled, " entries")
	}
}

func (s *Scheduler) expireRequests() {
	flipped, err := s.requests.ExpireOverdue(time.Now())
	if err != nil {
		logrus.Error("request expiry sweep failed: ", err)
		return
	}
	if flipped > 0 {
		logrus.Info("request expiry sweep expired ", flipped, " requests")
	}
}

func (s *Scheduler) recheckEligibility() {
	becameEligible, err := s.donors.RecheckEligibility(time.Now())
	if err != nil {
		logrus.Error("eligibility sweep failed: ", err)
		return
	}
	if len(becameEligible) == 0 {
		return
	}

	err = s.notifications.Enqueue(notification.Input{
		Recipients: becameEligible,
		Title:      "You are eligible to donate again",
		Message:    "Your donation cooldown is over. Nearby requests are waiting for donors like you.",
		Category:   consts.CategoryEligibilityReminder,
		Priority:   consts.PriorityMedium,
		Channels:   []string{consts.ChannelInApp, consts.ChannelSMS},
	})
	if err != nil {
		logrus.Error("unable to enqueue eligibility reminders: ", err)
	}
}

// sweepInventory expires overdue bags, then sends each bank manager one
// digest covering their low ledgers and soon-to-expire bags
func (s *Scheduler) sweepInventory() {
	now := time.Now()

	if flipped, err := s.inventories.ExpireUnits(now); err != nil {
		logrus.Error("unit expiry sweep failed: ", err)
	} else if flipped > 0 {
		logrus.Info("unit expiry sweep expired ", flipped, " bags")
	}

	low, err := s.inventories.ListLowStock()
	if err != nil {
		logrus.Error("low-stock sweep failed: ", err)
		return
	}
	expiring, err := s.inventories.ListExpiring(now)
	if err != nil {
		logrus.Error("expiring-units sweep failed: ", err)
		return
	}

	lines := map[int][]string{}
	for _, inv := range low {
		lines[inv.ManagerAccountID] = append(lines[inv.ManagerAccountID],
			fmt.Sprintf("%s %s at %d unit(s), reorder level %d", inv.BloodType, inv.Component, inv.Units, inv.ReorderLevel))
	}
	for _, u := range expiring {
		lines[u.ManagerAccountID] = append(lines[u.ManagerAccountID],
			fmt.Sprintf("bag %s (%s %s) expires %s", u.BagNumber, u.BloodType, u.Component, u.ExpiryDate.Format("Jan 2")))
	}

	for manager, items := range lines {
		body := "Daily stock digest:"
		for _, line := range items {
			body += "\n- " + line
		}
		err := s.notifications.Enqueue(notification.Input{
			Recipients: []int{manager},
			Title:      "Inventory needs attention",
			Message:    body,
			Category:   consts.CategoryLowInventoryAlert,
			Priority:   consts.PriorityHigh,
			Channels:   []string{consts.ChannelInApp, consts.ChannelEmail},
		})
		if err != nil {
			logrus.Error("unable to enqueue inventory digest: ", err)
		}
	}
}
