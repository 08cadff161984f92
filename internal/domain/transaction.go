package domain

import "time"

// TransactionStatus is the approval state of a transaction.
// Pending is the only non-terminal state.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "Pending"
	TransactionApproved TransactionStatus = "Approved"
	TransactionRejected TransactionStatus = "Rejected"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionApproved, TransactionRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an operator may move a transaction from s to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == TransactionPending && (next == TransactionApproved || next == TransactionRejected)
}

// Transaction is a customer payment awaiting or past operator review.
type Transaction struct {
	ID            string            `json:"id,omitempty"`
	OrderID       string            `json:"orderId"`
	CustomerName  string            `json:"customerName"`
	PaymentMethod string            `json:"paymentMethod"`
	Amount        float64           `json:"amount"`
	Status        TransactionStatus `json:"status"`
	Note          string            `json:"note"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func (t Transaction) EntityID() string { return t.ID }

// TransactionFilter is the server-side query for the transaction list.
// Zero values mean "no constraint".
type TransactionFilter struct {
	Status TransactionStatus
	From   time.Time
	To     time.Time
}

// StatusChange is the body sent to the backend for an approve/reject action.
type StatusChange struct {
	TransactionID string            `json:"transactionId"`
	Status        TransactionStatus `json:"status"`
}
