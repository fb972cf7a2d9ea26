package coerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"collabotp/pkg/coerr"
	"collabotp/pkg/request"
	"collabotp/pkg/statevector"
)

func TestClassifyLeafSentinel(t *testing.T) {
	domain, code := coerr.Classify(statevector.ErrMonotonicityViolation)
	require.Equal(t, coerr.DomainStateVector, domain)
	require.Equal(t, "MonotonicityViolation", code)

	domain, code = coerr.Classify(request.ErrNoAssociatedRequest)
	require.Equal(t, coerr.DomainRequest, domain)
	require.Equal(t, "NoAssociatedRequest", code)
}

func TestClassifyAlreadyTagged(t *testing.T) {
	sentinel := coerr.New(coerr.DomainSession, "SyncAborted", "session: sync aborted")
	domain, code := coerr.Classify(sentinel)
	require.Equal(t, coerr.DomainSession, domain)
	require.Equal(t, "SyncAborted", code)
}

func TestClassifyWrappedTagged(t *testing.T) {
	sentinel := coerr.New(coerr.DomainSession, "UnexpectedMessage", "session: unexpected message")
	wrapped := fmt.Errorf("handling message: %w", sentinel)

	domain, code := coerr.Classify(wrapped)
	require.Equal(t, coerr.DomainSession, domain)
	require.Equal(t, "UnexpectedMessage", code)
}

func TestClassifyUnknownFallsBackToInvalidRequest(t *testing.T) {
	domain, code := coerr.Classify(errors.New("something unrelated"))
	require.Equal(t, coerr.DomainSession, domain)
	require.Equal(t, "InvalidRequest", code)
}
