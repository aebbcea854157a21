// Package sms sends transactional SMS through a pluggable gateway.
package sms

// Gateway sends a single SMS message
type Gateway interface {
	Send(phone, message string) error
}
