package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicedesk/internal/config"
)

const (
	payEndpoint    = "/pg/v1/pay"
	statusEndpoint = "/pg/v1/status"
)

var (
	// ErrBadSignature means a callback or response failed checksum
	// verification.
	ErrBadSignature = errors.New("payment: checksum verification failed")
	ErrInvalidArgument = errors.New("payment: invalid argument")
)

// GatewayError carries a non-2xx gateway response unchanged.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: upstream status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the checksum-signed payment gateway. Requests carry a
// base64-encoded JSON payload and an X-VERIFY signature over it.
type Client struct {
	baseURL     string
	merchantID  string
	merchantKey string
	keyIndex    string
	redirectURL string
	callbackURL string
	http        *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		merchantID:  cfg.MerchantID,
		merchantKey: cfg.MerchantKey,
		keyIndex:    cfg.KeyIndex,
		redirectURL: cfg.RedirectURL,
		callbackURL: cfg.CallbackURL,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// InitiateRequest starts a hosted-page payment for a subscription purchase.
type InitiateRequest struct {
	TransactionID string
	UserRef       string
	AmountMinor   int64
}

// InitiateResult carries the hosted payment page to redirect the browser to.
type InitiateResult struct {
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
}

type initiatePayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	PaymentInstrument     map[string]string `json:"paymentInstrument"`
}

type initiateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

func (c *Client) InitiateSubscription(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	if req.TransactionID == "" || req.AmountMinor <= 0 {
		return InitiateResult{}, fmt.Errorf("%w: transaction id and positive amount required", ErrInvalidArgument)
	}

	payload := initiatePayload{
		MerchantID:            c.merchantID,
		MerchantTransactionID: req.TransactionID,
		MerchantUserID:        req.UserRef,
		Amount:                req.AmountMinor,
		RedirectURL:           c.redirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           c.callbackURL,
		PaymentInstrument:     map[string]string{"type": "PAY_PAGE"},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return InitiateResult{}, err
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return InitiateResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+payEndpoint, bytes.NewReader(body))
	if err != nil {
		return InitiateResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", Checksum(encoded, payEndpoint, c.merchantKey, c.keyIndex))

	var resp initiateResponse
	if err := c.do(httpReq, &resp); err != nil {
		return InitiateResult{}, err
	}
	return InitiateResult{
		TransactionID: req.TransactionID,
		RedirectURL:   resp.Data.InstrumentResponse.RedirectInfo.URL,
	}, nil
}

// StatusResult is the gateway's view of one transaction.
type StatusResult struct {
	TransactionID string
	State         string
	Code          string
}

// Completed reports whether the payment settled.
func (s StatusResult) Completed() bool { return s.State == "COMPLETED" }

type statusResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Data    struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		State                 string `json:"state"`
	} `json:"data"`
}

func (c *Client) CheckStatus(ctx context.Context, transactionID string) (StatusResult, error) {
	if transactionID == "" {
		return StatusResult{}, fmt.Errorf("%w: transaction id required", ErrInvalidArgument)
	}
	path := fmt.Sprintf("%s/%s/%s", statusEndpoint, c.merchantID, transactionID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return StatusResult{}, err
	}
	// GET requests sign the path itself; the payload part is empty.
	httpReq.Header.Set("X-VERIFY", Checksum("", path, c.merchantKey, c.keyIndex))
	httpReq.Header.Set("X-MERCHANT-ID", c.merchantID)

	var resp statusResponse
	if err := c.do(httpReq, &resp); err != nil {
		return StatusResult{}, err
	}
	return StatusResult{
		TransactionID: resp.Data.MerchantTransactionID,
		State:         resp.Data.State,
		Code:          resp.Code,
	}, nil
}

// CallbackEvent is the decoded server-to-server callback body.
type CallbackEvent struct {
	Code string `json:"code"`
	Data struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		State                 string `json:"state"`
		Amount                int64  `json:"amount"`
	} `json:"data"`
}

// Completed reports whether the callback announces a settled payment.
func (e CallbackEvent) Completed() bool { return e.Data.State == "COMPLETED" }

// DecodeCallback verifies the X-VERIFY signature over the base64 body and
// decodes the inner event. A bad signature returns ErrBadSignature.
func (c *Client) DecodeCallback(encodedBody, xVerify string) (CallbackEvent, error) {
	if !VerifyChecksum(xVerify, encodedBody, "", c.merchantKey, c.keyIndex) {
		return CallbackEvent{}, ErrBadSignature
	}
	raw, err := base64.StdEncoding.DecodeString(encodedBody)
	if err != nil {
		return CallbackEvent{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	var ev CallbackEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return CallbackEvent{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return ev, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
