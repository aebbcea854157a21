package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/models"
)

// ExpiryService cancels bookings that were created but never paid. A client
// abandoning checkout leaves a pending/pending row behind; this sweep keeps
// those from lingering forever.
type ExpiryService struct {
	cron     *cron.Cron
	bookings BookingStore
	audit    AuditLogger
	ttl      time.Duration
	schedule string
	logger   *logrus.Logger
}

// NewExpiryService creates a new ExpiryService
func NewExpiryService(bookings BookingStore, audit AuditLogger, ttl time.Duration, schedule string, logger *logrus.Logger) *ExpiryService {
	// Seconds precision, matching the 6-field schedule in config
	c := cron.New(cron.WithSeconds())
	return &ExpiryService{
		cron:     c,
		bookings: bookings,
		audit:    audit,
		ttl:      ttl,
		schedule: schedule,
		logger:   logger,
	}
}

// Start schedules the sweep and starts the scheduler
func (s *ExpiryService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.SweepOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule pending booking sweep: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"ttl":      s.ttl.String(),
	}).Info("Pending booking sweep scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *ExpiryService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Pending booking sweep stopped")
}

// SweepOnce runs one sweep across all verticals. Exported so it can be
// invoked directly by tests and ops tooling.
func (s *ExpiryService) SweepOnce() {
	cutoff := time.Now().Add(-s.ttl)
	start := time.Now()

	var total int64
	for _, vertical := range models.AllVerticals() {
		expired, err := s.bookings.ExpirePending(vertical, cutoff)
		if err != nil {
			s.logger.WithError(err).WithField("vertical", vertical).Error("Pending booking sweep failed")
			continue
		}
		total += expired

		if expired > 0 {
			audit := models.NewPaymentAudit(models.PaymentEventBookingExpired, models.PaymentSourceSystem)
			v := vertical
			audit.Vertical = &v
			audit.SetError(fmt.Sprintf("expired %d pending bookings older than %s", expired, s.ttl))
			if err := s.audit.Log(audit); err != nil {
				s.logger.WithError(err).Error("Failed to record expiry audit")
			}
		}
	}

	if total > 0 {
		s.logger.WithFields(logrus.Fields{
			"expired":  total,
			"cutoff":   cutoff.Format(time.RFC3339),
			"duration": time.Since(start).String(),
		}).Info("Pending booking sweep completed")
	}
}
