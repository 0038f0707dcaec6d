package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurihub/payments/internal/core"
)

func TestNormalize_Kenyan(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "local with leading zero", raw: "0712345678", want: "254712345678"},
		{name: "bare subscriber", raw: "712345678", want: "254712345678"},
		{name: "country code no plus", raw: "254712345678", want: "254712345678"},
		{name: "country code with plus", raw: "+254712345678", want: "254712345678"},
		{name: "spaces and dashes", raw: "0712 345-678", want: "254712345678"},
		{name: "airtel style 1-prefix", raw: "0101234567", want: "254101234567"},
		{name: "too short", raw: "0712", wantErr: true},
		{name: "too long", raw: "07123456789", wantErr: true},
		{name: "landline prefix", raw: "0212345678", wantErr: true},
		{name: "letters", raw: "07一2345678", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, PlanKenya)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrInvalidPhoneNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Somali(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "local with leading zero", raw: "0611234567", want: "252611234567"},
		{name: "bare subscriber", raw: "611234567", want: "252611234567"},
		{name: "country code no plus", raw: "252611234567", want: "252611234567"},
		{name: "country code with plus", raw: "+252611234567", want: "252611234567"},
		{name: "hormuud 7-prefix", raw: "0771234567", want: "252771234567"},
		{name: "too short", raw: "06112", wantErr: true},
		{name: "bad subscriber prefix", raw: "0911234567", wantErr: true},
		{name: "wrong country code", raw: "254611234567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, PlanSomalia)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrInvalidPhoneNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// All accepted formats of the same subscriber must canonicalize to the same
// value, regardless of leading zero or country code.
func TestNormalize_CanonicalFormAgreement(t *testing.T) {
	kenyanForms := []string{"0712345678", "712345678", "254712345678", "+254712345678", "+254 712 345 678"}
	for _, f := range kenyanForms {
		got, err := Normalize(f, PlanKenya)
		require.NoError(t, err, f)
		assert.Equal(t, "254712345678", got, f)
	}

	somaliForms := []string{"0611234567", "611234567", "252611234567", "+252611234567"}
	for _, f := range somaliForms {
		got, err := Normalize(f, PlanSomalia)
		require.NoError(t, err, f)
		assert.Equal(t, "252611234567", got, f)
	}
}
