package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// reconcileBatchSize caps how many mismatch rows one report pulls
const reconcileBatchSize = 50

// ReconciliationService periodically surfaces payment audits whose gateway
// amount disagreed with the stored booking amount. Mismatched payments are
// confirmed anyway at webhook time; this report is how they get chased.
type ReconciliationService struct {
	cron     *cron.Cron
	audit    AuditReader
	schedule string
	logger   *logrus.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(audit AuditReader, schedule string, logger *logrus.Logger) *ReconciliationService {
	return &ReconciliationService{
		cron:     cron.New(cron.WithSeconds()),
		audit:    audit,
		schedule: schedule,
		logger:   logger,
	}
}

// Start schedules the report and starts the scheduler
func (s *ReconciliationService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.ReportOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule reconciliation report: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Amount reconciliation report scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running report to finish
func (s *ReconciliationService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Amount reconciliation report stopped")
}

// ReportOnce logs every open amount mismatch with its full order trail.
// Exported so it can be invoked directly by tests and ops tooling.
func (s *ReconciliationService) ReportOnce() {
	mismatches, err := s.audit.GetAmountMismatches(reconcileBatchSize)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load amount mismatches")
		return
	}
	if len(mismatches) == 0 {
		return
	}

	for _, m := range mismatches {
		fields := logrus.Fields{"event_type": m.EventType}
		if m.BookingID != nil {
			fields["booking_id"] = *m.BookingID
		}
		if m.ExpectedAmount != nil {
			fields["expected"] = *m.ExpectedAmount
		}
		if m.ReceivedAmount != nil {
			fields["received"] = *m.ReceivedAmount
		}
		if m.OrderID != nil {
			fields["order_id"] = *m.OrderID
			if trail, err := s.audit.GetByOrderID(*m.OrderID); err == nil {
				fields["trail_events"] = len(trail)
			}
		}
		s.logger.WithFields(fields).Error("Unreconciled payment amount mismatch")
	}

	s.logger.WithField("count", len(mismatches)).Warn("Amount reconciliation report completed with open mismatches")
}
