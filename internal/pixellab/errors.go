package pixellab

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned before any network I/O when a call requires
// authentication and no API key was configured.
var ErrMissingAPIKey = errors.New("PIXELLAB_API_KEY not found: set it in .env or pass it explicitly")

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pixellab api error: status %d: %s", e.StatusCode, e.Body)
}

// JobFailedError is returned when the server reports a background job failure.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// JobTimeoutError is returned when a background job does not reach a terminal
// status within the polling wait ceiling.
type JobTimeoutError struct {
	JobID   string
	MaxWait time.Duration
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("job %s did not complete within %s", e.JobID, e.MaxWait)
}
