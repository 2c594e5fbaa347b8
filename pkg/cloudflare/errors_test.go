package cloudflare

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewErrorKind(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		apiErrors  []ResponseError
		want       Kind
	}{
		{
			name:       "429 status is rate limited",
			statusCode: http.StatusTooManyRequests,
			want:       KindRateLimited,
		},
		{
			name:       "code 971 on a 2xx envelope is rate limited",
			statusCode: http.StatusOK,
			apiErrors:  []ResponseError{{Code: CodeRateLimited, Message: "Please wait and consider throttling your request speed"}},
			want:       KindRateLimited,
		},
		{
			name:       "code 971 on a 400 is rate limited",
			statusCode: http.StatusBadRequest,
			apiErrors:  []ResponseError{{Code: CodeRateLimited}},
			want:       KindRateLimited,
		},
		{
			name:       "code 81058 is already exists",
			statusCode: http.StatusBadRequest,
			apiErrors:  []ResponseError{{Code: CodeRecordAlreadyExists, Message: "An identical record already exists."}},
			want:       KindAlreadyExists,
		},
		{
			name:       "no response is transport",
			statusCode: 0,
			want:       KindTransport,
		},
		{
			name:       "non-2xx without special codes is http",
			statusCode: http.StatusForbidden,
			apiErrors:  []ResponseError{{Code: 9109, Message: "Unauthorized to access requested resource"}},
			want:       KindHTTP,
		},
		{
			name:       "2xx with success=false is application",
			statusCode: http.StatusOK,
			apiErrors:  []ResponseError{{Code: 1004, Message: "DNS Validation Error"}},
			want:       KindApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError("op", tt.statusCode, tt.apiErrors, nil)
			if err.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", err.Kind, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	rateLimited := NewError("op", http.StatusTooManyRequests, nil, nil)
	wrapped := fmt.Errorf("zone example.com: %w", rateLimited)

	if got := Classify(wrapped); got != KindRateLimited {
		t.Errorf("Classify(wrapped) = %v, want %v", got, KindRateLimited)
	}
	if !IsRateLimited(wrapped) {
		t.Error("IsRateLimited(wrapped) = false, want true")
	}
	if IsAlreadyExists(wrapped) {
		t.Error("IsAlreadyExists(wrapped) = true, want false")
	}
	if got := Classify(errors.New("boom")); got != KindUnknown {
		t.Errorf("Classify(plain) = %v, want %v", got, KindUnknown)
	}
	if got := Classify(nil); got != KindUnknown {
		t.Errorf("Classify(nil) = %v, want %v", got, KindUnknown)
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewError("list zones", 0, nil, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the transport cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, want it to mention the cause", err.Error())
	}

	appErr := NewError("create CAA record example.com", http.StatusBadRequest, []ResponseError{
		{Code: CodeRecordAlreadyExists, Message: "An identical record already exists."},
	}, nil)
	msg := appErr.Error()
	for _, want := range []string{"create CAA record example.com", "already_exists", "status 400", "81058"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}

	if got := APIErrors(fmt.Errorf("wrapped: %w", appErr)); len(got) != 1 || got[0].Code != CodeRecordAlreadyExists {
		t.Errorf("APIErrors() = %v, want the 81058 entry", got)
	}
}
