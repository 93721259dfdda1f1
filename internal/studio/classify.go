package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"veostudio/internal/domain"
)

const (
	badRequestFallback = "Please check your inputs and try again."
	authErrorMessage   = "Authentication Error: Please add a valid API key to continue."
	serverErrorMessage = "Server Error: The service is temporarily unavailable. Please try again later."
)

type errorEnvelope struct {
	Error *struct {
		Code    any `json:"code"`
		Message any `json:"message"`
	} `json:"error"`
}

// Classify maps a generation failure to the text shown in the status area.
// A *domain.RemoteError anywhere in the chain is classified by its own
// fields. Otherwise the error text is parsed as the service's JSON envelope;
// anything that does not parse is shown verbatim.
func Classify(err error) domain.ClassifiedError {
	if err == nil {
		return domain.ClassifiedError{}
	}
	raw := err.Error()
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		raw = remote.Error()
	}

	var env errorEnvelope
	if jsonErr := json.Unmarshal([]byte(raw), &env); jsonErr != nil {
		return domain.ClassifiedError{DisplayMessage: raw}
	}

	var code int
	var message string
	if env.Error != nil {
		if n, ok := env.Error.Code.(float64); ok && n == float64(int(n)) {
			code = int(n)
		}
		message = messageText(env.Error.Message)
	}

	switch code {
	case 400:
		if message == "" {
			message = badRequestFallback
		}
		return domain.ClassifiedError{DisplayMessage: "Bad Request: " + message}
	case 401, 403:
		return domain.ClassifiedError{DisplayMessage: authErrorMessage, IsQuotaOrAuthError: true}
	case 429:
		// The host renders its own quota notice.
		return domain.ClassifiedError{IsQuotaOrAuthError: true}
	case 500, 503:
		return domain.ClassifiedError{DisplayMessage: serverErrorMessage}
	default:
		if message == "" {
			message = raw
		}
		return domain.ClassifiedError{DisplayMessage: message}
	}
}

// messageText renders the envelope message the way a truthiness check would
// keep it: empty strings, zero, false and null count as missing.
func messageText(v any) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return m
	case bool:
		if !m {
			return ""
		}
		return "true"
	case float64:
		if m == 0 {
			return ""
		}
		return strconv.FormatFloat(m, 'f', -1, 64)
	default:
		return fmt.Sprint(m)
	}
}
