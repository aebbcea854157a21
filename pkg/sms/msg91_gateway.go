package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MSG91Gateway implements SMS sending via the MSG91 Flow API
type MSG91Gateway struct {
	apiURL   string
	authKey  string
	senderID string
	route    string
	client   *http.Client
}

// MSG91Config holds configuration for the MSG91 gateway
type MSG91Config struct {
	APIURL   string
	AuthKey  string
	SenderID string
	Route    string
}

// NewMSG91Gateway creates a new MSG91 gateway client
func NewMSG91Gateway(config MSG91Config) *MSG91Gateway {
	return &MSG91Gateway{
		apiURL:   config.APIURL,
		authKey:  config.AuthKey,
		senderID: config.SenderID,
		route:    config.Route,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type msg91Request struct {
	Sender  string          `json:"sender"`
	Route   string          `json:"route"`
	SMS     []msg91Message  `json:"sms"`
}

type msg91Message struct {
	Message string   `json:"message"`
	To      []string `json:"to"`
}

type msg91Response struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Send delivers a single SMS
func (g *MSG91Gateway) Send(phone, message string) error {
	reqBody := msg91Request{
		Sender: g.senderID,
		Route:  g.route,
		SMS: []msg91Message{
			{Message: message, To: []string{phone}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", g.authKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp msg91Response
	if err := json.Unmarshal(body, &smsResp); err != nil {
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}
	if smsResp.Type != "success" {
		return fmt.Errorf("SMS gateway rejected message: %s", smsResp.Message)
	}

	return nil
}
