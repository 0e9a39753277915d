package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/openkassa/kassaterm/internal/models"
)

const MaxMerchantNameLength = 50

var (
	digitsRe   = regexp.MustCompile(`^[0-9]{5,8}$`)
	currencyRe = regexp.MustCompile(`^[0-9]+$`)
)

// FieldError reports a format-validation failure for a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateGUID validates a GUID-formatted credential field.
func ValidateGUID(field, value string) error {
	if value == "" {
		return &FieldError{Field: field, Message: "cannot be empty"}
	}
	if _, err := uuid.Parse(value); err != nil {
		return &FieldError{Field: field, Message: "must be a valid GUID"}
	}
	return nil
}

// ValidateAccountDigits validates a 5-8 digit identifier such as the
// currency account number or the client id.
func ValidateAccountDigits(field, value string) error {
	if value == "" {
		return &FieldError{Field: field, Message: "cannot be empty"}
	}
	if !digitsRe.MatchString(value) {
		return &FieldError{Field: field, Message: "must be 5 to 8 digits"}
	}
	return nil
}

// ValidateCurrencyCode validates a numeric currency code such as "643".
func ValidateCurrencyCode(value string) error {
	if value == "" {
		return &FieldError{Field: "currency_code", Message: "cannot be empty"}
	}
	if !currencyRe.MatchString(value) {
		return &FieldError{Field: "currency_code", Message: "must be numeric"}
	}
	return nil
}

// ValidateMerchantName validates the optional merchant display name.
func ValidateMerchantName(value string) error {
	if utf8.RuneCountInString(value) > MaxMerchantNameLength {
		return &FieldError{Field: "merchant_name", Message: fmt.Sprintf("must be at most %d characters", MaxMerchantNameLength)}
	}
	return nil
}

// ValidateCredentials runs every static format rule and collects all
// failures. An empty slice means the credential set may proceed to
// remote verification; any failure blocks network I/O entirely.
func ValidateCredentials(creds *models.Credentials) []*FieldError {
	var errs []*FieldError
	appendErr := func(err error) {
		if err != nil {
			errs = append(errs, err.(*FieldError))
		}
	}
	appendErr(ValidateGUID("access_key", creds.AccessKey))
	appendErr(ValidateGUID("account_guid", creds.AccountGUID))
	appendErr(ValidateCurrencyCode(creds.CurrencyCode))
	appendErr(ValidateAccountDigits("account_number", creds.AccountNumber))
	appendErr(ValidateAccountDigits("client_id", creds.ClientID))
	appendErr(ValidateMerchantName(creds.MerchantName))
	return errs
}
