package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/internal/provider"
	"github.com/openkassa/kassaterm/pkg/logger"
	"github.com/openkassa/kassaterm/pkg/validation"
)

// The step-1 probe creates a minimal payment to confirm the access key,
// account GUID and currency are jointly accepted. The payment is never
// shown to a customer.
var probeAmount = decimal.NewFromInt(10)

const probeDescription = "credential verification probe"

// Verifier runs the three-step remote credential verification protocol.
// Steps are strictly sequential and fail-fast: a failed step halts the
// run and later steps are never attempted. The current state is exposed
// for UI rendering.
type Verifier struct {
	logger   *logger.Logger
	provider models.PaymentProvider

	callbackURL string
	returnURL   string

	runMu sync.Mutex

	mu    sync.Mutex
	state models.VerificationState
	last  *models.ValidationResult
}

// NewVerifier creates a verifier backed by the given provider client.
// callbackURL and returnURL are placed into the probe payment body.
func NewVerifier(p models.PaymentProvider, callbackURL, returnURL string, logger *logger.Logger) *Verifier {
	return &Verifier{
		logger:      logger,
		provider:    p,
		callbackURL: callbackURL,
		returnURL:   returnURL,
		state:       models.VerificationNotStarted,
	}
}

// State returns the state reached by the most recent run.
func (v *Verifier) State() models.VerificationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// LastResult returns the outcome of the most recent run, or nil.
func (v *Verifier) LastResult() *models.ValidationResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

func (v *Verifier) setState(state models.VerificationState) {
	v.mu.Lock()
	v.state = state
	v.mu.Unlock()
}

func (v *Verifier) finish(result *models.ValidationResult) *models.ValidationResult {
	v.mu.Lock()
	if result.Success {
		v.state = models.VerificationStep3Passed
	} else {
		v.state = models.VerificationFailed
	}
	v.last = result
	v.mu.Unlock()
	return result
}

// ValidateStep1 confirms the access key, account GUID and currency code
// are jointly valid by probing the payment-preparation endpoint.
func (v *Verifier) ValidateStep1(ctx context.Context, accessKey, accountGUID, currencyCode string) *models.ValidationResult {
	currency, err := strconv.Atoi(currencyCode)
	if err != nil {
		return &models.ValidationResult{
			StepsCompleted: 0,
			Field:          "currency_code",
			Message:        "currency code must be numeric",
		}
	}

	_, err = v.provider.PreparePayment(ctx, models.ProviderAuth{AccessKey: accessKey, AccountGUID: accountGUID}, &models.PrepareRequest{
		Currency:    currency,
		Amount:      probeAmount,
		Description: probeDescription,
		OrderID:     "verify-" + uuid.NewString(),
		CallbackURL: v.callbackURL,
		ReturnURL:   v.returnURL,
	})
	if err != nil {
		return failureResult(0, err)
	}
	return &models.ValidationResult{Success: true, StepsCompleted: 1}
}

// ValidateStep2 confirms the account number belongs to the verified
// access key and account GUID, surfacing the account balance on success.
func (v *Verifier) ValidateStep2(ctx context.Context, accessKey, accountGUID, accountNumber string) *models.ValidationResult {
	balance, err := v.provider.AccountBalance(ctx, models.ProviderAuth{AccessKey: accessKey, AccountGUID: accountGUID}, accountNumber)
	if err != nil {
		return failureResult(1, err)
	}
	result := &models.ValidationResult{Success: true, StepsCompleted: 2}
	if balance != nil {
		available := balance.Balance
		result.AccountBalance = &available
	}
	return result
}

// ValidateStep3 confirms the client id under the access key, surfacing
// the customer balance on success.
func (v *Verifier) ValidateStep3(ctx context.Context, accessKey, clientID string) *models.ValidationResult {
	balance, err := v.provider.CustomerBalance(ctx, accessKey, clientID)
	if err != nil {
		return failureResult(2, err)
	}
	result := &models.ValidationResult{Success: true, StepsCompleted: 3}
	if balance != nil {
		available := balance.Balance
		result.CustomerBalance = &available
	}
	return result
}

// Run executes the full pipeline: the local format gate, then steps 1-3
// in order. Format failures block all network I/O. Only one run may be
// in flight at a time; a concurrent call fails immediately.
func (v *Verifier) Run(ctx context.Context, creds *models.Credentials) *models.ValidationResult {
	if !v.runMu.TryLock() {
		return &models.ValidationResult{Message: "verification already in progress"}
	}
	defer v.runMu.Unlock()

	v.setState(models.VerificationNotStarted)

	if fieldErrs := validation.ValidateCredentials(creds); len(fieldErrs) > 0 {
		messages := make([]string, len(fieldErrs))
		for i, fieldErr := range fieldErrs {
			messages[i] = fieldErr.Error()
		}
		v.logger.Debug("Credential format validation failed ", "errors ", strings.Join(messages, "; "))
		return v.finish(&models.ValidationResult{
			StepsCompleted: 0,
			Field:          fieldErrs[0].Field,
			Message:        strings.Join(messages, "; "),
		})
	}

	step1 := v.ValidateStep1(ctx, creds.AccessKey, creds.AccountGUID, creds.CurrencyCode)
	if !step1.Success {
		return v.finish(step1)
	}
	v.setState(models.VerificationStep1Passed)

	step2 := v.ValidateStep2(ctx, creds.AccessKey, creds.AccountGUID, creds.AccountNumber)
	if !step2.Success {
		return v.finish(step2)
	}
	v.setState(models.VerificationStep2Passed)

	step3 := v.ValidateStep3(ctx, creds.AccessKey, creds.ClientID)
	if !step3.Success {
		return v.finish(step3)
	}

	return v.finish(&models.ValidationResult{
		Success:         true,
		StepsCompleted:  3,
		AccountBalance:  step2.AccountBalance,
		CustomerBalance: step3.CustomerBalance,
	})
}

// failureResult classifies a step error. A remote API error carries the
// literal response body; a transport or parse error instead carries a
// synthesized diagnostic. stepsCompleted is the count of steps that had
// already passed, not the index of the failing step.
func failureResult(stepsCompleted int, err error) *models.ValidationResult {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		return &models.ValidationResult{
			StepsCompleted: stepsCompleted,
			Message:        apiErr.Message,
			RawResponse:    apiErr.RawBody,
			HTTPStatus:     apiErr.StatusCode,
		}
	}

	diagnostic, marshalErr := json.Marshal(map[string]string{
		"name":    fmt.Sprintf("%T", err),
		"message": err.Error(),
	})
	if marshalErr != nil {
		diagnostic = []byte(err.Error())
	}
	return &models.ValidationResult{
		StepsCompleted: stepsCompleted,
		Message:        err.Error(),
		RawResponse:    string(diagnostic),
	}
}
