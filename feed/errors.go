package feed

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrAlreadyStarted   = errors.New("poller already started")
	ErrPollerStopped    = errors.New("poller stopped")
)

func newStatusError(url string, code int) error {
	return fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, url, code)
}

func newMalformedError(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMalformedPayload, reason)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, reason, err)
}
