package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"koperasi-backend/internal/logger"
)

// ErrWhatsAppDisabled is returned when the gateway is switched off in config.
// Callers treat it as a soft failure: the in-app notification still lands.
var ErrWhatsAppDisabled = errors.New("whatsapp gateway disabled")

type whatsAppClient struct {
	baseURL string
	apiKey  string
	enabled bool
	client  *http.Client
}

func NewWhatsAppClient(baseURL, apiKey string, enabled bool, timeout time.Duration) WhatsAppClient {
	return &whatsAppClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		enabled: enabled,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (c *whatsAppClient) Send(ctx context.Context, phone, message string) error {
	if !c.enabled {
		return ErrWhatsAppDisabled
	}
	logger.ExternalServiceCall("whatsapp", "send", "phone", phone)

	body, err := json.Marshal(sendMessageRequest{Phone: phone, Message: message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("whatsapp", "send", err, "phone", phone)
		return fmt.Errorf("whatsapp gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("whatsapp", "send", err, "phone", phone)
		return err
	}

	logger.ExternalServiceResult("whatsapp", "send", nil, "phone", phone)
	return nil
}

func (c *whatsAppClient) Status(ctx context.Context) error {
	if !c.enabled {
		return ErrWhatsAppDisabled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}
	return nil
}
