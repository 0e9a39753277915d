package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkassa/kassaterm/internal/models"
)

func validCredentials() *models.Credentials {
	return &models.Credentials{
		AccessKey:     "0b63c8a8-7a62-4b39-9c2a-1f6f3d5a9a01",
		AccountGUID:   "f1d2a9d0-4c7b-4e8e-8f10-2b9c0d3e4f55",
		CurrencyCode:  "643",
		AccountNumber: "14744",
		ClientID:      "308156",
	}
}

func TestValidateCredentialsAllValid(t *testing.T) {
	assert.Empty(t, ValidateCredentials(validCredentials()))
}

func TestValidateAccountDigits(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"five digits", "14744", true},
		{"eight digits", "12345678", true},
		{"three digits", "123", false},
		{"nine digits", "123456789", false},
		{"letters", "1474a", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountDigits("account_number", tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				fieldErr, isField := err.(*FieldError)
				require.True(t, isField)
				assert.Equal(t, "account_number", fieldErr.Field)
			}
		})
	}
}

func TestValidateGUID(t *testing.T) {
	assert.NoError(t, ValidateGUID("access_key", "0b63c8a8-7a62-4b39-9c2a-1f6f3d5a9a01"))
	assert.Error(t, ValidateGUID("access_key", "not-a-guid"))
	assert.Error(t, ValidateGUID("access_key", ""))
}

func TestValidateCurrencyCode(t *testing.T) {
	assert.NoError(t, ValidateCurrencyCode("643"))
	assert.Error(t, ValidateCurrencyCode("RUB"))
	assert.Error(t, ValidateCurrencyCode(""))
}

func TestValidateMerchantName(t *testing.T) {
	assert.NoError(t, ValidateMerchantName(""))
	assert.NoError(t, ValidateMerchantName(strings.Repeat("a", 50)))
	assert.Error(t, ValidateMerchantName(strings.Repeat("a", 51)))
}

func TestValidateCredentialsCollectsEveryFailure(t *testing.T) {
	creds := validCredentials()
	creds.AccountNumber = "123"
	creds.ClientID = "ab"
	errs := ValidateCredentials(creds)
	require.Len(t, errs, 2)
	assert.Equal(t, "account_number", errs[0].Field)
	assert.Equal(t, "client_id", errs[1].Field)
}
