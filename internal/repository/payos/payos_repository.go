package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nickstore/domain"
)

type PayOSConfig struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	ReturnURL   string
	CancelURL   string
	WebhookURL  string
}

type PayOSRepository struct {
	payosConfig PayOSConfig
	client      *http.Client
}

func NewPayOSRepository(cfg PayOSConfig) *PayOSRepository {
	return &PayOSRepository{
		payosConfig: cfg,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder registers a payment order with the gateway and returns
// the checkout link and QR the client renders for the bank transfer.
func (r *PayOSRepository) CreateOrder(ctx context.Context, orderCode, amount int64, description string) (domain.PayOSOrderResponse, error) {
	order := domain.PayOSOrderRequest{
		OrderCode:   orderCode,
		Amount:      amount,
		Description: description,
		ReturnURL:   r.payosConfig.ReturnURL,
		CancelURL:   r.payosConfig.CancelURL,
		WebhookURL:  r.payosConfig.WebhookURL,
	}
	// the gateway authenticates order creation with the same canonical
	// signature scheme it uses on webhooks
	order.Signature = Sign(map[string]interface{}{
		"orderCode":   order.OrderCode,
		"amount":      order.Amount,
		"description": order.Description,
		"returnUrl":   order.ReturnURL,
		"cancelUrl":   order.CancelURL,
	}, r.payosConfig.ChecksumKey)

	body, err := json.Marshal(order)
	if err != nil {
		return domain.PayOSOrderResponse{}, err
	}

	url := r.payosConfig.BaseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.PayOSOrderResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", r.payosConfig.ClientID)
	req.Header.Set("x-api-key", r.payosConfig.APIKey)

	res, err := r.client.Do(req)
	if err != nil {
		return domain.PayOSOrderResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.PayOSOrderResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.PayOSOrderResponse{}, fmt.Errorf("%w: gateway returned %d", domain.ErrUpstream, res.StatusCode)
	}

	var payosResponse domain.PayOSOrderResponse
	if err := json.Unmarshal(resBody, &payosResponse); err != nil {
		return domain.PayOSOrderResponse{}, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}

	return payosResponse, nil
}

// VerifyWebhook authenticates a raw webhook body with this gateway's
// checksum key.
func (r *PayOSRepository) VerifyWebhook(raw []byte) (domain.PayOSWebhookPayload, error) {
	return VerifyWebhook(raw, r.payosConfig.ChecksumKey)
}
