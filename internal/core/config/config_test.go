package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurihub/payments/internal/core"
)

func TestMpesaConfigValidate(t *testing.T) {
	full := MpesaConfig{
		BaseURL:           "https://sandbox.safaricom.co.ke",
		ConsumerKey:       "k",
		ConsumerSecret:    "s",
		BusinessShortCode: "174379",
		Passkey:           "p",
		CallbackBaseURL:   "https://payments.gurihub.so",
	}
	require.NoError(t, full.Validate())

	missing := full
	missing.ConsumerKey = ""
	missing.Passkey = ""
	err := missing.Validate()
	require.Error(t, err)

	var confErr *core.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "mpesa", confErr.Provider)
	assert.ElementsMatch(t, []string{"MPESA_CONSUMER_KEY", "MPESA_PASSKEY"}, confErr.Missing)
}

func TestWaafiConfigValidate(t *testing.T) {
	full := WaafiConfig{
		EndpointURL: "https://api.waafipay.net/asm",
		MerchantUID: "M0912269",
		APIUserID:   "1000416",
		APIKey:      "key",
	}
	require.NoError(t, full.Validate())

	missing := WaafiConfig{}
	err := missing.Validate()
	require.Error(t, err)

	var confErr *core.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "waafi", confErr.Provider)
	assert.Len(t, confErr.Missing, 4)
}
