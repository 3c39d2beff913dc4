package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	return mapStatus(resp.StatusCode(), strings.TrimSpace(string(resp.Body())), false)
}

// mapStatus classifies an HTTP status. fileURL selects the rules for signed
// file links, where 403 and 410 mean the link expired.
func mapStatus(code int, body string, fileURL bool) error {
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case fileURL && (code == http.StatusForbidden || code == http.StatusGone):
		return fmt.Errorf("%w: http %d", ErrExpiredURL, code)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, code, body)
	case code >= http.StatusBadRequest:
		return fmt.Errorf("%w: http %d: %s", ErrBadRequest, code, body)
	default:
		return fmt.Errorf("%w: http %d", ErrBadResponse, code)
	}
}

// mapTransportError classifies a failure that produced no response. The
// caller's own cancellation passes through untouched; everything else,
// including per-request timeouts, is transient.
func mapTransportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}
