package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

const defaultBaseURL = "https://api.paystack.co"

// Client implements ports.PaymentGateway against the Paystack REST API.
// Amounts cross the wire in subunits (kobo); the rest of the system works in
// major currency units.
type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	client      *http.Client
}

func NewClient(secretKey, baseURL, callbackURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		secretKey:   secretKey,
		baseURL:     baseURL,
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string    `json:"reference"`
		Status    string    `json:"status"`
		Amount    int64     `json:"amount"`
		Currency  string    `json:"currency"`
		Channel   string    `json:"channel"`
		PaidAt    time.Time `json:"paid_at"`
		Metadata  struct {
			OrderID string `json:"order_id"`
		} `json:"metadata"`
	} `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, email string, amount float64, reference string, metadata map[string]string) (*ports.CheckoutSession, error) {
	payload := initializeRequest{
		Email:       email,
		Amount:      toSubunits(amount),
		Reference:   reference,
		CallbackURL: c.callbackURL,
		Metadata:    metadata,
	}

	var out initializeResponse
	if err := c.post(ctx, "/transaction/initialize", payload, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("%w: initialize: %s", domain.ErrGateway, out.Message)
	}
	return &ports.CheckoutSession{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        out.Data.Reference,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*ports.GatewayCharge, error) {
	var out verifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("%w: verify: %s", domain.ErrGateway, out.Message)
	}
	return &ports.GatewayCharge{
		Reference: out.Data.Reference,
		Status:    out.Data.Status,
		Amount:    fromSubunits(out.Data.Amount),
		Currency:  out.Data.Currency,
		Channel:   out.Data.Channel,
		OrderID:   out.Data.Metadata.OrderID,
		PaidAt:    out.Data.PaidAt,
	}, nil
}

// ValidSignature checks the x-paystack-signature header: an HMAC-SHA512 of
// the raw body keyed with the secret key, hex encoded.
func (c *Client) ValidSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrGateway, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d: %s", domain.ErrGateway, res.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrGateway, err)
	}
	return nil
}

func toSubunits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromSubunits(amount int64) float64 {
	return float64(amount) / 100
}
