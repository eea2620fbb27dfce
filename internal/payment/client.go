package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client bicara ke Payment Orchestrator. Server key hanya dipakai di
// payment create; config lookup terbuka.
type Client struct {
	BaseURL   string
	ServerKey string
	HTTP      *http.Client
}

func NewClient(baseURL, serverKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL:   baseURL,
		ServerKey: serverKey,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

type feeConfigResp struct {
	Success bool `json:"success"`
	Data    struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		AdminFee int64  `json:"admin_fee"`
	} `json:"data"`
}

// AdminFee resolve fee utk payment method. Gagal apa pun (timeout,
// non-2xx, payload rusak, fee negatif) -> 0; resolusi fee tidak boleh
// memblokir checkout.
func (c *Client) AdminFee(ctx context.Context, code string) int64 {
	u := c.BaseURL + "/api/admin/config?code=" + url.QueryEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("fee lookup %s: %v (pakai fee 0)", code, err)
		return 0
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("fee lookup %s: status %d (pakai fee 0)", code, resp.StatusCode)
		return 0
	}
	var out feeConfigResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Success {
		return 0
	}
	if out.Data.AdminFee < 0 {
		return 0
	}
	return out.Data.AdminFee
}

type CreatePaymentRequest struct {
	ReferenceID   string `json:"reference_id"` // order id; idempotency key di provider
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Description   string `json:"description"`
}

type PaymentDetails struct {
	TransactionID  string `json:"transaction_id"`
	PaymentURL     string `json:"payment_url,omitempty"`
	VirtualAccount string `json:"virtual_account,omitempty"`
	QRCode         string `json:"qr_code,omitempty"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
}

type createPaymentResp struct {
	Success bool           `json:"success"`
	Data    PaymentDetails `json:"data"`
}

var ErrProvider = errors.New("payment provider error")

func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentRequest) (*PaymentDetails, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/payments/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-server-key", c.ServerKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}
	var out createPaymentResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	if !out.Success || out.Data.TransactionID == "" {
		return nil, fmt.Errorf("%w: rejected", ErrProvider)
	}
	return &out.Data, nil
}
