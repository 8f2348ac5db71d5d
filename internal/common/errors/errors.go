// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Applicant input errors
const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeEncodingFailed     ErrorCode = "ENCODING_FAILED"
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
)

// Network and wallet errors
const (
	ErrCodeNetworkMismatch      ErrorCode = "NETWORK_MISMATCH"
	ErrCodeManualActionRequired ErrorCode = "MANUAL_ACTION_REQUIRED"
	ErrCodeProviderRejected     ErrorCode = "PROVIDER_REJECTED"
	ErrCodeProviderUnavailable  ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"
	ErrCodeWorkflowEngine       ErrorCode = "WORKFLOW_ENGINE_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// Ledger and gateway errors
const (
	ErrCodeDuplicateSubmission ErrorCode = "DUPLICATE_SUBMISSION"
	ErrCodeSubmissionReverted  ErrorCode = "SUBMISSION_REVERTED"
	ErrCodeLedgerCallFailed    ErrorCode = "LEDGER_CALL_FAILED"
	ErrCodeRecordNotFound      ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeDecryptionFailed    ErrorCode = "DECRYPTION_FAILED"
	ErrCodeGatewayUnavailable  ErrorCode = "GATEWAY_UNAVAILABLE"
)

// Bookkeeping errors. These never fail a submission.
const (
	ErrCodeReceiptStoreFailed ErrorCode = "RECEIPT_STORE_FAILED"
	ErrCodeAuditWriteFailed   ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches any StandardError carrying the same code, so sentinels below work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidationFailed     = &StandardError{Code: ErrCodeValidationFailed}
	ErrEncodingFailed       = &StandardError{Code: ErrCodeEncodingFailed}
	ErrNetworkMismatch      = &StandardError{Code: ErrCodeNetworkMismatch}
	ErrManualActionRequired = &StandardError{Code: ErrCodeManualActionRequired}
	ErrProviderRejected     = &StandardError{Code: ErrCodeProviderRejected}
	ErrProviderUnavailable  = &StandardError{Code: ErrCodeProviderUnavailable}
	ErrDuplicateSubmission  = &StandardError{Code: ErrCodeDuplicateSubmission}
	ErrSubmissionReverted   = &StandardError{Code: ErrCodeSubmissionReverted}
	ErrLedgerCallFailed     = &StandardError{Code: ErrCodeLedgerCallFailed}
	ErrRecordNotFound       = &StandardError{Code: ErrCodeRecordNotFound}
	ErrDecryptionFailed     = &StandardError{Code: ErrCodeDecryptionFailed}
	ErrGatewayUnavailable   = &StandardError{Code: ErrCodeGatewayUnavailable}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError lists every offending field in Metadata["fields"].
func NewValidationError(fields map[string]string) *StandardError {
	names := make([]string, 0, len(fields))
	for name, reason := range fields {
		names = append(names, fmt.Sprintf("%s: %s", name, reason))
	}
	sort.Strings(names)
	e := newError(ErrCodeValidationFailed, "Applicant attributes failed validation", strings.Join(names, "; "), false)
	e.Metadata = map[string]interface{}{"fields": fields}
	return e
}

func NewEncodingError(channel string, value int, width int) *StandardError {
	return newError(ErrCodeEncodingFailed, "Attribute does not fit its encoding channel",
		fmt.Sprintf("channel: %s, value: %d, width: %d bytes", channel, value, width), false)
}

func NewEncryptionError(err error) *StandardError {
	return newError(ErrCodeEncodingFailed, "Payload encryption failed", err.Error(), false)
}

func NewInputParsingError(details string) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", details, false)
}

// NewNetworkMismatchError carries the active and target chain ids so callers can prompt the user.
func NewNetworkMismatchError(activeChainID, targetChainID, targetName string) *StandardError {
	e := newError(ErrCodeNetworkMismatch, "Active network does not match the target network",
		fmt.Sprintf("active: %s, target: %s (%s)", activeChainID, targetChainID, targetName), false)
	e.Metadata = map[string]interface{}{
		"activeChainId":     activeChainID,
		"targetChainId":     targetChainID,
		"targetDisplayName": targetName,
	}
	return e
}

func NewManualActionRequiredError(targetName, targetChainID string) *StandardError {
	e := newError(ErrCodeManualActionRequired, "Target network must be added to the wallet manually",
		fmt.Sprintf("network: %s, chainId: %s", targetName, targetChainID), false)
	e.Metadata = map[string]interface{}{
		"targetChainId":     targetChainID,
		"targetDisplayName": targetName,
	}
	return e
}

func NewProviderRejectedError(method string) *StandardError {
	return newError(ErrCodeProviderRejected, "Request rejected in the wallet",
		fmt.Sprintf("method: %s", method), false)
}

func NewProviderUnavailableError(method string, err error) *StandardError {
	return newError(ErrCodeProviderUnavailable, "Wallet provider unavailable",
		fmt.Sprintf("method: %s, error: %v", method, err), true)
}

func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfigurationInvalid, "Invalid configuration", details, false)
}

// NewWorkflowEngineError wraps a failed Zeebe command.
func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	return newError(ErrCodeWorkflowEngine, fmt.Sprintf("Zeebe operation '%s' failed", operation), err.Error(), retryable)
}

func NewDuplicateSubmissionError(identity string) *StandardError {
	e := newError(ErrCodeDuplicateSubmission, "Identity already has a submission on record",
		fmt.Sprintf("identity: %s", identity), false)
	e.Metadata = map[string]interface{}{"identity": identity}
	return e
}

func NewSubmissionRevertedError(txHash, reason string) *StandardError {
	return newError(ErrCodeSubmissionReverted, "Submission transaction reverted",
		fmt.Sprintf("txHash: %s, reason: %s", txHash, reason), false)
}

func NewLedgerCallError(method string, err error) *StandardError {
	return newError(ErrCodeLedgerCallFailed, "Ledger authority call failed",
		fmt.Sprintf("method: %s, error: %v", method, err), true)
}

func NewRecordNotFoundError(identity string) *StandardError {
	return newError(ErrCodeRecordNotFound, "No submission record for identity",
		fmt.Sprintf("identity: %s", identity), false)
}

func NewDecryptionError(details string) *StandardError {
	return newError(ErrCodeDecryptionFailed, "Verdict decryption failed", details, true)
}

func NewGatewayUnavailableError(err error) *StandardError {
	return newError(ErrCodeGatewayUnavailable, "Decryption gateway unavailable", err.Error(), true)
}

func NewReceiptStoreError(err error) *StandardError {
	return newError(ErrCodeReceiptStoreFailed, "Receipt store operation failed", err.Error(), true)
}

func NewAuditWriteError(err error) *StandardError {
	return newError(ErrCodeAuditWriteFailed, "Audit write failed", err.Error(), true)
}

func NewEventPublishError(err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Event publish failed", err.Error(), true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:     "VALIDATION_FAILED",
	ErrCodeEncodingFailed:       "VALIDATION_FAILED",
	ErrCodeInputParsingFailed:   "VALIDATION_FAILED",
	ErrCodeNetworkMismatch:      "NETWORK_MISMATCH",
	ErrCodeManualActionRequired: "MANUAL_ACTION_REQUIRED",
	ErrCodeProviderRejected:     "PROVIDER_REJECTED",
	ErrCodeProviderUnavailable:  "PROVIDER_UNAVAILABLE",
	ErrCodeDuplicateSubmission:  "DUPLICATE_SUBMISSION",
	ErrCodeSubmissionReverted:   "SUBMISSION_REVERTED",
	ErrCodeLedgerCallFailed:     "LEDGER_CALL_FAILED",
	ErrCodeRecordNotFound:       "RECORD_NOT_FOUND",
	ErrCodeDecryptionFailed:     "DECRYPTION_FAILED",
	ErrCodeGatewayUnavailable:   "DECRYPTION_FAILED",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLedgerCallFailed,
		ErrCodeDecryptionFailed,
		ErrCodeGatewayUnavailable,
		ErrCodeReceiptStoreFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeEventPublishFailed:
		return 3

	case ErrCodeProviderUnavailable:
		return 2

	default:
		// Business and user-action errors are not retried by the engine.
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard normalizes any error into a StandardError.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// CodeOf returns the code of a StandardError anywhere in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsUserActionRequired reports codes recoverable only by the applicant acting in the wallet.
func IsUserActionRequired(code ErrorCode) bool {
	switch code {
	case ErrCodeNetworkMismatch, ErrCodeManualActionRequired, ErrCodeProviderRejected:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "ENCODING") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NETWORK") || strings.Contains(codeStr, "MANUAL_ACTION"):
		return "NETWORK"
	case strings.Contains(codeStr, "PROVIDER"):
		return "WALLET"
	case strings.Contains(codeStr, "SUBMISSION") || strings.Contains(codeStr, "LEDGER") || strings.Contains(codeStr, "RECORD"):
		return "LEDGER"
	case strings.Contains(codeStr, "DECRYPTION") || strings.Contains(codeStr, "GATEWAY"):
		return "GATEWAY"
	case strings.Contains(codeStr, "RECEIPT") || strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "EVENT"):
		return "BOOKKEEPING"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
