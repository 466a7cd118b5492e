package wallet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProviderUnavailable means no usable wallet provider is present in the
// environment. Fatal to the connect call.
var ErrProviderUnavailable = errors.New("wallet provider is not available")

// Reason categorizes a failed connection attempt.
type Reason string

const (
	ReasonRejected     Reason = "rejected"
	ReasonTimeout      Reason = "timeout"
	ReasonNotInstalled Reason = "not-installed"
	ReasonKeyRetrieval Reason = "key-retrieval-failed"
	ReasonNotConnected Reason = "not-connected"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonUnsupported  Reason = "unsupported-method"
	ReasonGeneric      Reason = "generic"
)

// Provider error codes, as reported by browser wallet extensions.
const (
	codeUserRejected      = 4001
	codeUnauthorized      = 4100
	codeUnsupportedMethod = 4200
	codeDisconnected      = 4900
)

// ProviderError is a failure reported by a wallet provider, carrying the
// provider's numeric code when one exists (0 otherwise).
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}
	return e.Message
}

// ConnectionError is what callers of Connect see when the provider flow
// fails. It carries a human-readable message only; the reason tag exists for
// tests and retry policies.
type ConnectionError struct {
	Reason  Reason
	Message string
}

func (e *ConnectionError) Error() string { return e.Message }

var reasonMessages = map[Reason]string{
	ReasonRejected:     "Connection request was rejected. Please approve the connection in your wallet.",
	ReasonTimeout:      "Connection timed out. Please try again.",
	ReasonNotInstalled: "Wallet not found. Please install the wallet extension.",
	ReasonKeyRetrieval: "Could not retrieve the wallet public key.",
	ReasonNotConnected: "Wallet is not connected.",
	ReasonUnauthorized: "The wallet has not authorized this application.",
	ReasonUnsupported:  "The wallet does not support the requested method.",
	ReasonGeneric:      "Failed to connect wallet. Please try again.",
}

func newConnectionError(reason Reason) *ConnectionError {
	return &ConnectionError{Reason: reason, Message: reasonMessages[reason]}
}

// messageTable is the ordered fallback for providers that report no numeric
// code. Order matters: reason strings overlap ("user rejected" must win over
// a message that also mentions a timeout).
var messageTable = []struct {
	substr string
	reason Reason
}{
	{"user rejected", ReasonRejected},
	{"rejected", ReasonRejected},
	{"timed out", ReasonTimeout},
	{"timeout", ReasonTimeout},
	{"not installed", ReasonNotInstalled},
	{"not found", ReasonNotInstalled},
	{"public key", ReasonKeyRetrieval},
	{"not connected", ReasonNotConnected},
	{"unauthorized", ReasonUnauthorized},
	{"unsupported", ReasonUnsupported},
}

// ClassifyProviderError maps a provider failure to a connection reason.
// Coded errors are matched on the code first; only uncoded errors fall back
// to substring matching.
func ClassifyProviderError(err error) Reason {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Code != 0 {
		switch pe.Code {
		case codeUserRejected:
			return ReasonRejected
		case codeUnauthorized:
			return ReasonUnauthorized
		case codeUnsupportedMethod:
			return ReasonUnsupported
		case codeDisconnected:
			return ReasonNotConnected
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range messageTable {
		if strings.Contains(msg, m.substr) {
			return m.reason
		}
	}
	return ReasonGeneric
}
