package retry

import "fmt"

// ServerError is a retryable upstream status: 429, 408 or any 5xx.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// ClientError is any other non-2xx status. The request itself is wrong,
// so retrying cannot help; it surfaces immediately.
type ClientError struct {
	StatusCode int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: status %d", e.StatusCode)
}

// ExhaustedError reports a spent retry budget. Last carries the failure
// observed on the final attempt.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
