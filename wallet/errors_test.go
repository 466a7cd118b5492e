package wallet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyProviderErrorCodes(t *testing.T) {
	cases := []struct {
		code int
		want Reason
	}{
		{4001, ReasonRejected},
		{4100, ReasonUnauthorized},
		{4200, ReasonUnsupported},
		{4900, ReasonNotConnected},
	}

	for _, tc := range cases {
		err := &ProviderError{Code: tc.code, Message: "whatever"}
		assert.Equal(t, tc.want, ClassifyProviderError(err), "code %d", tc.code)
	}
}

func TestClassifyProviderErrorCodeBeatsMessage(t *testing.T) {
	// The message mentions a timeout, but the code says user rejection.
	err := &ProviderError{Code: 4001, Message: "request timed out"}
	assert.Equal(t, ReasonRejected, ClassifyProviderError(err))
}

func TestClassifyProviderErrorMessages(t *testing.T) {
	cases := []struct {
		msg  string
		want Reason
	}{
		{"User rejected the request", ReasonRejected},
		{"connection timed out", ReasonTimeout},
		{"request timeout", ReasonTimeout},
		{"Phantom is not installed", ReasonNotInstalled},
		{"wallet 'default' not found", ReasonNotInstalled},
		{"could not read public key", ReasonKeyRetrieval},
		{"provider not connected", ReasonNotConnected},
		{"unauthorized origin", ReasonUnauthorized},
		{"unsupported method", ReasonUnsupported},
		{"something exploded", ReasonGeneric},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyProviderError(errors.New(tc.msg)), "message %q", tc.msg)
	}
}

func TestClassifyProviderErrorOrdering(t *testing.T) {
	// Both substrings are present; "user rejected" is matched first.
	err := errors.New("connection timeout: user rejected the request")
	assert.Equal(t, ReasonRejected, ClassifyProviderError(err))
}

func TestClassifyWrappedProviderError(t *testing.T) {
	err := fmt.Errorf("connect flow: %w", &ProviderError{Code: 4100, Message: "nope"})
	assert.Equal(t, ReasonUnauthorized, ClassifyProviderError(err))
}

func TestProviderErrorString(t *testing.T) {
	assert.Equal(t, "provider error 4001: no", (&ProviderError{Code: 4001, Message: "no"}).Error())
	assert.Equal(t, "no", (&ProviderError{Message: "no"}).Error())
}

func TestConnectionErrorMessages(t *testing.T) {
	err := newConnectionError(ReasonRejected)
	assert.Equal(t, ReasonRejected, err.Reason)
	assert.Contains(t, err.Error(), "rejected")

	// Every reason has a message.
	for reason := range reasonMessages {
		assert.NotEmpty(t, newConnectionError(reason).Error())
	}
}
