package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/authflow/internal/netx"
)

// Describe renders err as a short message for the end user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrDeviceIDMissing):
		return "This device has no identifier. Restart the application and try again."
	case errors.Is(err, ErrRestartFlow):
		return "Your verification has expired. Request a new code."
	case errors.Is(err, ErrOTTMissing):
		return "Your email is not verified yet. Verify it with a new code first."
	case errors.Is(err, ErrSceneMismatch):
		return "This code was issued for a different action. Request a new code."
	case errors.Is(err, ErrNotLoggedIn):
		return "You are not logged in."
	case errors.Is(err, ErrFlowAbandoned),
		errors.Is(err, context.Canceled):
		return "The operation was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The operation timed out."
	}

	ne, ok := netx.AsError(err)
	if !ok {
		return "Something went wrong: " + err.Error()
	}

	switch ne.Kind {
	case netx.KindAPI:
		if ne.API.Message != "" {
			return ne.API.Message
		}
		return fmt.Sprintf("The server rejected the request (%s).", ne.API.Code)
	case netx.KindHTTP:
		return describeStatus(ne.Status)
	case netx.KindTransport:
		return "Cannot reach the server. Check your connection and try again."
	case netx.KindEncoding:
		return "The request could not be prepared."
	default:
		return "Something went wrong. Please try again."
	}
}

func describeStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "Authentication failed."
	case status == http.StatusNotFound:
		return "The server does not support this operation."
	case status == http.StatusTooManyRequests:
		return "Too many requests. Wait a moment and try again."
	case status >= 500:
		return "The server is having trouble. Try again later."
	default:
		return fmt.Sprintf("The request failed with status %d.", status)
	}
}
