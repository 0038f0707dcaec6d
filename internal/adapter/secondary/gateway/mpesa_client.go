// Package gateway contains the outbound mobile-money provider adapters.
// Every client checks its credentials before touching the network, so a
// misconfigured deployment fails with a ConfigurationError instead of a
// confusing provider error.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/core/config"
	"github.com/gurihub/payments/internal/port/output"
)

const (
	mpesaTokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	mpesaStkPushPath = "/mpesa/stkpush/v1/processrequest"
	mpesaTimeLayout  = "20060102150405"
)

// MpesaClient performs STK Push initiations against the Daraja API. Each
// initiation exchanges the consumer credentials for a fresh access token; no
// token caching happens here.
type MpesaClient struct {
	cfg    config.MpesaConfig
	client *http.Client
	now    func() time.Time
}

// NewMpesaClient creates a new M-Pesa STK Push client
func NewMpesaClient(cfg config.MpesaConfig, client *http.Client) *MpesaClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MpesaClient{cfg: cfg, client: client, now: time.Now}
}

// Method returns the payment method this gateway serves
func (c *MpesaClient) Method() core.PaymentMethod {
	return core.PaymentMethodMpesa
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// Initiate exchanges credentials for an access token and fires the STK Push.
// The returned transaction identifier is the provider's CheckoutRequestID.
func (c *MpesaClient) Initiate(ctx context.Context, intent output.PaymentIntent) (*output.ProviderAck, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format(mpesaTimeLayout)
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.BusinessShortCode + c.cfg.Passkey + timestamp),
	)

	reqBody := stkPushRequest{
		BusinessShortCode: c.cfg.BusinessShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            intent.Amount.StringFixed(0),
		PartyA:            intent.PhoneNumber,
		PartyB:            c.cfg.BusinessShortCode,
		PhoneNumber:       intent.PhoneNumber,
		CallBackURL:       c.cfg.CallbackBaseURL + "/api/v1/payments/callbacks/mpesa",
		AccountReference:  intent.Reference,
		TransactionDesc:   intent.Description,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stk push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+mpesaStkPushPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build stk push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &core.GatewayError{Provider: "mpesa", Message: fmt.Sprintf("stk push request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.GatewayError{Provider: "mpesa", Message: fmt.Sprintf("failed to read stk push response: %v", err)}
	}

	var stk stkPushResponse
	if err := json.Unmarshal(body, &stk); err != nil {
		return nil, &core.GatewayError{Provider: "mpesa", Message: "unparseable stk push response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := stk.ErrorMessage
		if msg == "" {
			msg = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return nil, &core.GatewayError{Provider: "mpesa", Code: stk.ErrorCode, Message: msg}
	}

	if stk.ResponseCode != "0" {
		return nil, &core.GatewayError{Provider: "mpesa", Code: stk.ResponseCode, Message: stk.ResponseDescription}
	}

	if stk.CheckoutRequestID == "" {
		return nil, &core.GatewayError{Provider: "mpesa", Message: "response missing CheckoutRequestID"}
	}

	return &output.ProviderAck{
		TransactionID: stk.CheckoutRequestID,
		Description:   stk.ResponseDescription,
		Raw: map[string]interface{}{
			"MerchantRequestID":   stk.MerchantRequestID,
			"CheckoutRequestID":   stk.CheckoutRequestID,
			"ResponseCode":        stk.ResponseCode,
			"ResponseDescription": stk.ResponseDescription,
			"CustomerMessage":     stk.CustomerMessage,
		},
	}, nil
}

// accessToken exchanges the consumer key/secret for a short-lived bearer
// token via the client-credentials grant.
func (c *MpesaClient) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+mpesaTokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &core.GatewayError{Provider: "mpesa", Message: fmt.Sprintf("token request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &core.GatewayError{Provider: "mpesa", Message: fmt.Sprintf("token endpoint returned status %d", resp.StatusCode)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", &core.GatewayError{Provider: "mpesa", Message: "unparseable token response"}
	}
	if tokenResp.AccessToken == "" {
		return "", &core.GatewayError{Provider: "mpesa", Message: "token response missing access_token"}
	}
	return tokenResp.AccessToken, nil
}
