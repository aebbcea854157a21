package sms

import (
	"github.com/sirupsen/logrus"
)

// SimulatedGateway logs messages instead of sending them. Used in dev mode
// so the notification path can be exercised without an SMS provider account.
type SimulatedGateway struct {
	logger *logrus.Logger
}

// NewSimulatedGateway creates a gateway that only logs
func NewSimulatedGateway(logger *logrus.Logger) *SimulatedGateway {
	return &SimulatedGateway{logger: logger}
}

// Send logs the message that would have been sent
func (g *SimulatedGateway) Send(phone, message string) error {
	g.logger.WithFields(logrus.Fields{
		"phone":   phone,
		"message": message,
	}).Info("SMS gateway in dev mode, message not sent")
	return nil
}
