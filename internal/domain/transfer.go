package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount indicates a zero, negative or malformed amount, or one with
	// more fractional digits than MoneyScale.
	ErrInvalidAmount = errors.New("amount must be greater than zero with at most 4 decimal places")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount indicates that transfer source and target are the same account.
	ErrSameAccount = errors.New("source and target accounts must be different")
	// ErrSourceNotFound indicates that the transfer source account is not found.
	ErrSourceNotFound = errors.New("source account not found")
	// ErrTargetNotFound indicates that the transfer target account is not found.
	ErrTargetNotFound = errors.New("target account not found")
	// ErrTransferConflict indicates that a concurrent modification was detected during a transfer.
	// The whole transfer should be retried with fresh reads.
	ErrTransferConflict = errors.New("conflict detected while processing the transfer, try again")
	// ErrTransferFailed indicates an unexpected failure during a transfer.
	ErrTransferFailed = errors.New("unexpected error while processing the transfer")
)

// TransferStage names the step of a transfer at which it stopped.
type TransferStage string

// Transfer stages in execution order.
const (
	StageLoadSource   TransferStage = "load_source"
	StageLoadTarget   TransferStage = "load_target"
	StageSaveSource   TransferStage = "save_source"
	StageSaveTarget   TransferStage = "save_target"
	StageAppendSource TransferStage = "append_source"
	StageAppendTarget TransferStage = "append_target"
)

// TransferError reports a transfer that passed validation but could not complete.
//
// Kind is either ErrTransferConflict or ErrTransferFailed. SourcePersisted is true when
// the source balance had already been durably changed; such a transfer leaves the
// accounts unreconciled until a reconciliation step runs.
type TransferError struct {
	Kind            error
	Stage           TransferStage
	SourcePersisted bool
	Cause           error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%v (stage %s): %v", e.Kind, e.Stage, e.Cause)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TransferError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// TransferResult is the result of a completed transfer.
type TransferResult struct {
	Source         Account     `json:"source"`
	Target         Account     `json:"target"`
	SourceTransfer Transaction `json:"source_transaction"`
	TargetTransfer Transaction `json:"target_transaction"`
}
