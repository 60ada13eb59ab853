package ledger

import (
	"fmt"

	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
)

// allowedTransitions encodes the transaction status state machine. Released,
// refunded and cancelled are terminal: they appear only as targets.
var allowedTransitions = map[enums.TransactionStatus][]enums.TransactionStatus{
	enums.TransactionStatusPending: {
		enums.TransactionStatusCleared,
		enums.TransactionStatusDisputed,
		enums.TransactionStatusCancelled,
		enums.TransactionStatusRefunded,
		enums.TransactionStatusReserved,
	},
	enums.TransactionStatusProcessing: {
		enums.TransactionStatusPending,
		enums.TransactionStatusCleared,
		enums.TransactionStatusDisputed,
	},
	enums.TransactionStatusCleared: {
		enums.TransactionStatusReleased,
		enums.TransactionStatusRefunded,
		enums.TransactionStatusDisputed,
		enums.TransactionStatusReserved,
	},
	enums.TransactionStatusReserved: {
		enums.TransactionStatusCleared,
		enums.TransactionStatusDisputed,
	},
	enums.TransactionStatusDisputed: {
		enums.TransactionStatusCleared,
		enums.TransactionStatusRefunded,
	},
}

// TransitionAllowed reports whether the state machine permits moving from one
// status to another.
func TransitionAllowed(from, to enums.TransactionStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func stateConflictError(current, requested enums.TransactionStatus) *pkgerrors.Error {
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("entry not in expected state: current=%s requested=%s", current, requested),
	).WithDetails(map[string]any{
		"current_status":   current.String(),
		"requested_status": requested.String(),
	})
}
