package providers

import "fmt"

// Fallback messages used when a provider does not explain a failure.
const (
	HTTPErrorMessage     = "An error occurred, please try refreshing the page."
	ProviderErrorMessage = "An error occurred"
)

// APIError is an HTTP-level (non-2xx) or provider-level (status "error") failure.
// Message is always populated, falling back to the generic messages above.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError wraps a failure where no response was received.
// Its message is the underlying error's message.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// newAPIError builds an APIError choosing the right fallback for the failure kind.
func newAPIError(statusCode int, code, message string) *APIError {
	if message == "" {
		if isSuccess(statusCode) {
			message = ProviderErrorMessage
		} else {
			message = HTTPErrorMessage
		}
	}
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
