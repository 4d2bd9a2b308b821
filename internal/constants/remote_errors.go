package constants

// Remote Client Error Codes
// These constants define specific error scenarios for the POS vendor API

const (
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeAuthExpired    = "AUTH_EXPIRED"
	ErrCodeInvalidToken   = "INVALID_TOKEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeNetworkError   = "NETWORK_ERROR"
	ErrCodeRemoteRejected = "REMOTE_REJECTED"
)

// Error Messages
// Human-readable messages corresponding to error codes

var RemoteErrorMessages = map[string]string{
	ErrCodeRateLimited:    "Rate limit exceeded on the Square API. Please try again later",
	ErrCodeAuthExpired:    "The Square access token has expired. Reconnect the account",
	ErrCodeInvalidToken:   "The Square access token is invalid or has been revoked",
	ErrCodeNotFound:       "The requested object was not found in the Square catalog",
	ErrCodeNetworkError:   "Unable to reach the Square API",
	ErrCodeRemoteRejected: "Square rejected the request",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := RemoteErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}

// RetryableErrorCodes are remote failures worth scheduling a backoff retry
// for. Auth failures stay fatal until the account owner reconnects.
var RetryableErrorCodes = map[string]bool{
	ErrCodeRateLimited:  true,
	ErrCodeNetworkError: true,
}
