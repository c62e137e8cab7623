package ledger

import (
	"fmt"
	"strings"
)

// RejectReason is a machine-readable cause of a rejected group.
type RejectReason string

const (
	ReasonInsufficientFunds RejectReason = "insufficient_funds"
	ReasonExpired           RejectReason = "expired"
	ReasonContractAssert    RejectReason = "contract_assert"
	ReasonUnknown           RejectReason = "unknown"
)

// RejectionError reports a group the ledger refused to apply.
type RejectionError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("group rejected (%s): %s", e.Reason, e.Message)
}

// Reject builds a RejectionError, classifying msg.
func Reject(msg string) *RejectionError {
	return &RejectionError{Reason: Classify(msg), Message: msg}
}

// Classify maps a node error message to a RejectReason.
func Classify(msg string) RejectReason {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "overspend"),
		strings.Contains(m, "balance") && strings.Contains(m, "below min"),
		strings.Contains(m, "insufficient"):
		return ReasonInsufficientFunds
	case strings.Contains(m, "txn dead"),
		strings.Contains(m, "round outside"),
		strings.Contains(m, "expired"):
		return ReasonExpired
	case strings.Contains(m, "logic eval error"),
		strings.Contains(m, "rejected by logic"),
		strings.Contains(m, "assert failed"),
		strings.Contains(m, "err opcode"):
		return ReasonContractAssert
	default:
		return ReasonUnknown
	}
}
