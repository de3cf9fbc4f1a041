package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayClient issues Snap-style payment sessions against the external
// gateway. Implemented over plain HTTP the same way the rest of the
// gateway surface (signature checks, callbacks) is wire-level.
type GatewayClient interface {
	CreateTransaction(ctx context.Context, req SessionRequest) (*Session, error)
}

type SessionRequest struct {
	OrderID       string
	GrossAmount   float64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type snapClient struct {
	baseURL   string
	serverKey string
	http      *http.Client
}

func NewSnapClient(baseURL, serverKey string, timeout time.Duration) GatewayClient {
	return &snapClient{
		baseURL:   baseURL,
		serverKey: serverKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type snapTransactionRequest struct {
	TransactionDetails struct {
		OrderID     string  `json:"order_id"`
		GrossAmount float64 `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name,omitempty"`
		Email     string `json:"email,omitempty"`
		Phone     string `json:"phone,omitempty"`
	} `json:"customer_details"`
}

func (c *snapClient) CreateTransaction(ctx context.Context, req SessionRequest) (*Session, error) {
	var payload snapTransactionRequest
	payload.TransactionDetails.OrderID = req.OrderID
	payload.TransactionDetails.GrossAmount = req.GrossAmount
	payload.CustomerDetails.FirstName = req.CustomerName
	payload.CustomerDetails.Email = req.CustomerEmail
	payload.CustomerDetails.Phone = req.CustomerPhone

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.serverKey, "")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: malformed gateway response", ErrGatewayUnavailable)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("%w: gateway returned no token", ErrGatewayUnavailable)
	}
	return &session, nil
}
