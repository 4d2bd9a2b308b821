package sync

import (
	"errors"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/providers"
)

var (
	// ErrNotConnected means the account has no connected Square configuration.
	// Fatal: retrying cannot help until the owner reconnects.
	ErrNotConnected = errors.New("account is not connected to square")

	// ErrSyncInProgress means another pass holds the lease for this
	// (account, sync type) key
	ErrSyncInProgress = errors.New("a sync pass is already running for this account and type")

	// ErrMaxRetriesExceeded means the retry budget is spent and the log entry
	// needs a manual re-trigger
	ErrMaxRetriesExceeded = errors.New("maximum retry count exceeded")

	// ErrUnknownSyncType rejects sync types outside the known set
	ErrUnknownSyncType = errors.New("unknown sync type")
)

// IsRetryable reports whether a pass-level failure should be scheduled for a
// backoff retry. Provider auth failures and local validation errors are
// fatal; rate limits and network trouble are worth waiting out.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrSyncInProgress) ||
		errors.Is(err, ErrMaxRetriesExceeded) {
		return false
	}

	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		return constants.RetryableErrorCodes[provErr.Code]
	}

	// Unclassified failures (local store hiccups, decode errors) get one
	// retry path rather than silently sticking in error
	return true
}
