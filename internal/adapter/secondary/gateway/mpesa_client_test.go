package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/core/config"
	"github.com/gurihub/payments/internal/port/output"
)

func mpesaTestConfig(baseURL string) config.MpesaConfig {
	return config.MpesaConfig{
		BaseURL:           baseURL,
		ConsumerKey:       "key",
		ConsumerSecret:    "secret",
		BusinessShortCode: "174379",
		Passkey:           "passkey",
		CallbackBaseURL:   "https://payments.gurihub.so",
	}
}

func testIntent() output.PaymentIntent {
	return output.PaymentIntent{
		PhoneNumber: "254712345678",
		Amount:      decimal.RequireFromString("20.00"),
		Currency:    "KES",
		Reference:   "RCT-1700000000000-ABCD1234",
		Description: "Property Listing",
	}
}

func TestMpesaInitiate_Success(t *testing.T) {
	var tokenCalls, pushCalls atomic.Int32
	var gotPush map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			tokenCalls.Add(1)
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "key", user)
			assert.Equal(t, "secret", pass)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			pushCalls.Add(1)
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPush))
			json.NewEncoder(w).Encode(map[string]string{
				"MerchantRequestID":   "29115-34620561-1",
				"CheckoutRequestID":   "ws_CO_191220191020363925",
				"ResponseCode":        "0",
				"ResponseDescription": "Success. Request accepted for processing",
				"CustomerMessage":     "Success. Request accepted for processing",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewMpesaClient(mpesaTestConfig(srv.URL), srv.Client())
	ack, err := client.Initiate(context.Background(), testIntent())
	require.NoError(t, err)

	assert.Equal(t, "ws_CO_191220191020363925", ack.TransactionID)
	assert.Equal(t, int32(1), tokenCalls.Load())
	assert.Equal(t, int32(1), pushCalls.Load())

	assert.Equal(t, "174379", gotPush["BusinessShortCode"])
	assert.Equal(t, "20", gotPush["Amount"])
	assert.Equal(t, "254712345678", gotPush["PhoneNumber"])
	assert.Equal(t, "CustomerPayBillOnline", gotPush["TransactionType"])
	assert.Equal(t, "https://payments.gurihub.so/api/v1/payments/callbacks/mpesa", gotPush["CallBackURL"])
	assert.Equal(t, "RCT-1700000000000-ABCD1234", gotPush["AccountReference"])
	assert.NotEmpty(t, gotPush["Password"])
}

func TestMpesaInitiate_FreshTokenPerCall(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			tokenCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"CheckoutRequestID": "ws_CO_1",
			"ResponseCode":      "0",
		})
	}))
	defer srv.Close()

	client := NewMpesaClient(mpesaTestConfig(srv.URL), srv.Client())
	for i := 0; i < 3; i++ {
		_, err := client.Initiate(context.Background(), testIntent())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), tokenCalls.Load())
}

func TestMpesaInitiate_MissingConfigFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := mpesaTestConfig(srv.URL)
	cfg.Passkey = ""
	cfg.ConsumerSecret = ""

	client := NewMpesaClient(cfg, srv.Client())
	_, err := client.Initiate(context.Background(), testIntent())
	require.Error(t, err)

	var confErr *core.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "mpesa", confErr.Provider)
	assert.Contains(t, confErr.Missing, "MPESA_PASSKEY")
	assert.Contains(t, confErr.Missing, "MPESA_CONSUMER_SECRET")

	var gwErr *core.GatewayError
	assert.False(t, errors.As(err, &gwErr), "configuration absence must not look like a provider failure")
	assert.Equal(t, int32(0), hits.Load())
}

func TestMpesaInitiate_TokenEndpointRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewMpesaClient(mpesaTestConfig(srv.URL), srv.Client())
	_, err := client.Initiate(context.Background(), testIntent())

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "mpesa", gwErr.Provider)
}

func TestMpesaInitiate_ProviderRejectsPush(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"errorCode":    "400.002.02",
			"errorMessage": "Bad Request - Invalid Amount",
		})
	}))
	defer srv.Close()

	client := NewMpesaClient(mpesaTestConfig(srv.URL), srv.Client())
	_, err := client.Initiate(context.Background(), testIntent())

	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "400.002.02", gwErr.Code)
	assert.Contains(t, gwErr.Message, "Invalid Amount")
}
