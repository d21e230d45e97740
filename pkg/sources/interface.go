package sources

import "fmt"

// Platform error codes shared by the game API and the statistics service.
const (
	ErrorCodeSuccess        = 1
	ErrorCodeNotFound       = 4
	ErrorCodeSystemDisabled = 5
)

// Envelope wraps every platform response.
type Envelope[T any] struct {
	Response    T      `json:"Response"`
	ErrorCode   int    `json:"ErrorCode"`
	ErrorStatus string `json:"ErrorStatus"`
	Message     string `json:"Message"`
}

// OK reports whether the platform flagged the call as successful.
func (e *Envelope[T]) OK() bool {
	return e != nil && e.ErrorCode == ErrorCodeSuccess
}

// Err describes a non-success envelope, or returns nil.
func (e *Envelope[T]) Err() error {
	if e == nil {
		return fmt.Errorf("empty response")
	}
	if e.OK() {
		return nil
	}
	return fmt.Errorf("%s (code %d): %s", e.ErrorStatus, e.ErrorCode, e.Message)
}
