// Package acl is the anti-corruption layer around the downstream task API:
// it speaks that API's wire format and hands back domain types and domain
// errors. Per-resource translators live in subpackages (acl/task).
package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tdd/todo-app/internal/domain"
)

const maxProblemSize = 1 << 20

// problem is the subset of an RFC 9457 body the domain cares about.
type problem struct {
	Detail string `json:"detail"`
	Errors []struct {
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

// errorFromResponse turns an unexpected downstream status into a domain
// error. Field errors in a 400 or 422 problem body survive as a
// *domain.ValidationError for the first field.
func errorFromResponse(resp *http.Response) error {
	p := readProblem(resp)
	if p.Detail == "" {
		p.Detail = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch code := resp.StatusCode; {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		if len(p.Errors) > 0 {
			return &domain.ValidationError{
				Field:   strings.TrimPrefix(strings.TrimPrefix(p.Errors[0].Location, "body"), "."),
				Message: p.Errors[0].Message,
			}
		}
		sentinel = domain.ErrValidation
	case code == http.StatusConflict:
		sentinel = domain.ErrConflict
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		sentinel = domain.ErrUnavailable
	default:
		return fmt.Errorf("downstream status %d: %s", code, p.Detail)
	}
	return fmt.Errorf("%s: %w", p.Detail, sentinel)
}

// errorFromTransport classifies a call that got no usable response. The
// caller's own cancellation or deadline is passed through; anything else
// (open breaker, refused connection, exhausted rate limit) means the
// downstream is unavailable.
func errorFromTransport(method, path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrUnavailable, err)
}

func readProblem(resp *http.Response) problem {
	var p problem
	if resp.Body == nil {
		return p
	}
	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mt != "application/problem+json" {
		return p
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxProblemSize)).Decode(&p)
	return p
}
