package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/core/config"
	"github.com/gurihub/payments/internal/port/output"
)

// waafiAcceptedCode is the responseCode WAAFI documents for an accepted
// purchase request. Anything else is a rejection.
const waafiAcceptedCode = "2001"

// WaafiClient initiates EVC Plus purchases through the WAAFI gateway. The
// merchant credentials travel inside the request payload itself; there is no
// separate token exchange.
type WaafiClient struct {
	cfg    config.WaafiConfig
	client *http.Client
	now    func() time.Time
}

// NewWaafiClient creates a new WAAFI/EVC client
func NewWaafiClient(cfg config.WaafiConfig, client *http.Client) *WaafiClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WaafiClient{cfg: cfg, client: client, now: time.Now}
}

// Method returns the payment method this gateway serves
func (c *WaafiClient) Method() core.PaymentMethod {
	return core.PaymentMethodEVC
}

type waafiRequest struct {
	SchemaVersion string             `json:"schemaVersion"`
	RequestID     string             `json:"requestId"`
	Timestamp     string             `json:"timestamp"`
	ChannelName   string             `json:"channelName"`
	ServiceName   string             `json:"serviceName"`
	ServiceParams waafiServiceParams `json:"serviceParams"`
}

type waafiServiceParams struct {
	MerchantUID     string               `json:"merchantUid"`
	APIUserID       string               `json:"apiUserId"`
	APIKey          string               `json:"apiKey"`
	PaymentMethod   string               `json:"paymentMethod"`
	PayerInfo       waafiPayerInfo       `json:"payerInfo"`
	TransactionInfo waafiTransactionInfo `json:"transactionInfo"`
}

type waafiPayerInfo struct {
	AccountNo string `json:"accountNo"`
}

type waafiTransactionInfo struct {
	ReferenceID string `json:"referenceId"`
	InvoiceID   string `json:"invoiceId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// waafiResponse mirrors the provider's envelope. The provider's own
// transaction identifier is nested under params.transactionId.
type waafiResponse struct {
	SchemaVersion string      `json:"schemaVersion"`
	Timestamp     string      `json:"timestamp"`
	ResponseID    string      `json:"responseId"`
	ResponseCode  string      `json:"responseCode"`
	ResponseMsg   string      `json:"responseMsg"`
	Params        waafiParams `json:"params"`
}

type waafiParams struct {
	TransactionID string `json:"transactionId"`
	ReferenceID   string `json:"referenceId"`
	State         string `json:"state"`
}

// Initiate posts a single signed purchase payload. Success requires the
// provider's documented "request accepted" code.
func (c *WaafiClient) Initiate(ctx context.Context, intent output.PaymentIntent) (*output.ProviderAck, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	reqBody := waafiRequest{
		SchemaVersion: "1.0",
		RequestID:     intent.Reference,
		Timestamp:     c.now().UTC().Format(time.RFC3339),
		ChannelName:   "WEB",
		ServiceName:   "API_PURCHASE",
		ServiceParams: waafiServiceParams{
			MerchantUID:   c.cfg.MerchantUID,
			APIUserID:     c.cfg.APIUserID,
			APIKey:        c.cfg.APIKey,
			PaymentMethod: "MWALLET_ACCOUNT",
			PayerInfo:     waafiPayerInfo{AccountNo: intent.PhoneNumber},
			TransactionInfo: waafiTransactionInfo{
				ReferenceID: intent.Reference,
				InvoiceID:   intent.Reference,
				Amount:      intent.Amount.StringFixed(2),
				Currency:    intent.Currency,
				Description: intent.Description,
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal waafi request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build waafi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &core.GatewayError{Provider: "waafi", Message: fmt.Sprintf("purchase request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.GatewayError{Provider: "waafi", Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}

	var wr waafiResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, &core.GatewayError{Provider: "waafi", Message: "unparseable purchase response"}
	}

	if wr.ResponseCode != waafiAcceptedCode {
		return nil, &core.GatewayError{Provider: "waafi", Code: wr.ResponseCode, Message: wr.ResponseMsg}
	}

	if wr.Params.TransactionID == "" {
		return nil, &core.GatewayError{Provider: "waafi", Message: "response missing params.transactionId"}
	}

	return &output.ProviderAck{
		TransactionID: wr.Params.TransactionID,
		Description:   wr.ResponseMsg,
		Raw: map[string]interface{}{
			"responseId":    wr.ResponseID,
			"responseCode":  wr.ResponseCode,
			"responseMsg":   wr.ResponseMsg,
			"transactionId": wr.Params.TransactionID,
			"referenceId":   wr.Params.ReferenceID,
			"state":         wr.Params.State,
		},
	}, nil
}
