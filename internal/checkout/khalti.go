package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusCompleted is the lookup status Khalti reports for a settled payment.
const StatusCompleted = "Completed"

var (
	ErrGatewayUnavailable = errors.New("khalti unreachable")
	ErrGatewayBadStatus   = errors.New("khalti bad status")
	ErrGatewayRejected    = errors.New("khalti rejected request")
)

// KhaltiClient talks to the Khalti ePayment API. The gateway is a black
// box: initiate hands it a priced order and yields a redirect URL, lookup
// resolves a payment reference to a status.
type KhaltiClient struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

func NewKhaltiClient(baseURL, secretKey string) *KhaltiClient {
	return &KhaltiClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SecretKey: secretKey,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type BreakdownLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type ProductDetail struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	TotalPrice int64  `json:"total_price"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// InitiateRequest is the gateway's payment-initiation schema. All amounts
// are in paisa.
type InitiateRequest struct {
	ReturnURL         string          `json:"return_url"`
	WebsiteURL        string          `json:"website_url"`
	Amount            int64           `json:"amount"`
	PurchaseOrderID   string          `json:"purchase_order_id"`
	PurchaseOrderName string          `json:"purchase_order_name"`
	CustomerInfo      CustomerInfo    `json:"customer_info"`
	AmountBreakdown   []BreakdownLine `json:"amount_breakdown"`
	ProductDetails    []ProductDetail `json:"product_details"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
}

func (c *KhaltiClient) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	var resp struct {
		Pidx       string `json:"pidx"`
		PaymentURL string `json:"payment_url"`
		ErrorKey   string `json:"error_key"`
		Detail     string `json:"detail"`
	}

	if err := c.post(ctx, "/epayment/initiate/", req, &resp); err != nil {
		return InitiateResponse{}, err
	}

	if resp.ErrorKey != "" {
		return InitiateResponse{}, fmt.Errorf("%w: %s", ErrGatewayRejected, resp.Detail)
	}
	if resp.Pidx == "" || resp.PaymentURL == "" {
		return InitiateResponse{}, fmt.Errorf("%w: missing pidx or payment_url", ErrGatewayRejected)
	}

	return InitiateResponse{Pidx: resp.Pidx, PaymentURL: resp.PaymentURL}, nil
}

// Lookup resolves a payment reference to the gateway's status string.
func (c *KhaltiClient) Lookup(ctx context.Context, pidx string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}

	body := map[string]string{"pidx": pidx}
	if err := c.post(ctx, "/epayment/lookup/", body, &resp); err != nil {
		return "", err
	}

	return resp.Status, nil
}

func (c *KhaltiClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrGatewayBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	}
	return nil
}
