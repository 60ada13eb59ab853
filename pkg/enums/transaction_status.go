package enums

import "fmt"

// TransactionStatus maps to the transaction_status enum in Postgres and drives
// all downstream payout eligibility.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCleared    TransactionStatus = "cleared"
	TransactionStatusReserved   TransactionStatus = "reserved"
	TransactionStatusRefunded   TransactionStatus = "refunded"
	TransactionStatusDisputed   TransactionStatus = "disputed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusReleased   TransactionStatus = "released"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusProcessing,
	TransactionStatusCleared,
	TransactionStatusReserved,
	TransactionStatusRefunded,
	TransactionStatusDisputed,
	TransactionStatusCancelled,
	TransactionStatusReleased,
}

// String implements fmt.Stringer.
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransactionStatus.
func (s TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusReleased, TransactionStatusRefunded, TransactionStatusCancelled:
		return true
	}
	return false
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
