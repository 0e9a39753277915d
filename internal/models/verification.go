package models

import "github.com/shopspring/decimal"

// VerificationState is the state of a credential verification run.
// Transitions: NotStarted -> Step1Passed -> Step2Passed -> Step3Passed,
// or to Failed from any of the intermediate states.
type VerificationState string

const (
	VerificationNotStarted  VerificationState = "not_started"
	VerificationStep1Passed VerificationState = "step1_passed"
	VerificationStep2Passed VerificationState = "step2_passed"
	VerificationStep3Passed VerificationState = "step3_passed"
	VerificationFailed      VerificationState = "failed"
)

// ValidationResult is the outcome of a verification step or of a whole
// verification run. A failed result reports the number of steps completed
// so far, not the step that failed, and always carries both a short
// message and the raw response for technical debugging.
type ValidationResult struct {
	// Success is true only if the step (or every step of the run) passed.
	Success bool `json:"success"`
	// StepsCompleted is the count of remote steps that succeeded, 0-3.
	// It only ever increases within a run.
	StepsCompleted int `json:"steps_completed"`
	// Field names the credential field that failed local format validation.
	// Empty for remote failures.
	Field string `json:"field,omitempty"`
	// Message is a short human-readable error description.
	Message string `json:"message,omitempty"`
	// RawResponse is the literal response body of a failed remote call, or
	// a synthesized diagnostic for transport/parse failures.
	RawResponse string `json:"raw_response,omitempty"`
	// HTTPStatus is the status code of the failing remote call, if any.
	HTTPStatus int `json:"http_status,omitempty"`
	// AccountBalance is the account balance surfaced by step 2, if present.
	AccountBalance *decimal.Decimal `json:"account_balance,omitempty"`
	// CustomerBalance is the customer balance surfaced by step 3, if present.
	CustomerBalance *decimal.Decimal `json:"customer_balance,omitempty"`
}
