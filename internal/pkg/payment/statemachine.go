package payment

import "github.com/kleinmarkt/KleinMarkt/app/models"

// TransitionFor maps a gateway result code to the transaction status that
// should be persisted. Unrecognized codes are treated as failed so a broken
// or hostile gateway payload can never silently leave a payment open.
// Expiry is a separate transition handled by the processor with the lock
// held.
func TransitionFor(gatewayStatus string) string {
	if gatewayStatus == GatewayStatusSuccess {
		return models.TransactionStatusCompleted
	}
	return models.TransactionStatusFailed
}

// CanTransition reports whether a stored transaction may move to another
// state at all. Terminal states are final.
func CanTransition(current string) bool {
	return current == models.TransactionStatusPending
}
