package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew_DefaultStatusCodes(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUnsupportedVenue, http.StatusBadRequest},
		{CodeIncompatibleVenues, http.StatusBadRequest},
		{CodeInvalidOrderbook, http.StatusBadRequest},
		{CodeDataUnavailable, http.StatusServiceUnavailable},
		{CodeCircuitOpen, http.StatusServiceUnavailable},
		{CodeOrderbookFetchFailed, http.StatusServiceUnavailable},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeNotFound, http.StatusNotFound},
		{CodeScheduleLoadFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code)
			if err.StatusCode != tt.want {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.want)
			}
			if err.Message != messages[tt.code] {
				t.Errorf("Message = %q, want %q", err.Message, messages[tt.code])
			}
		})
	}
}

func TestNew_UnknownCodeUsesCodeAsMessage(t *testing.T) {
	err := New(Code("SOMETHING_ELSE"))
	if err.Message != "SOMETHING_ELSE" {
		t.Errorf("Message = %q, want code", err.Message)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	wrapped := Wrap(cause, CodeOrderbookFetchFailed, "venue=kalshi")
	if wrapped.Code != CodeOrderbookFetchFailed {
		t.Errorf("Code = %s, want %s", wrapped.Code, CodeOrderbookFetchFailed)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}

	original := Validation(CodeIncompatibleVenues, "kalshi (prediction_market) and aerodrome (spot_dex)")
	if got := Wrap(fmt.Errorf("analyze: %w", original), CodeInternalError, "ignored"); got != original {
		t.Errorf("Wrap() = %v, want the existing AppError", got)
	}

	if Wrap(nil, CodeInternalError, "") != nil {
		t.Error("Wrap(nil) != nil")
	}
}

func TestIs_ComparesCodes(t *testing.T) {
	err := fmt.Errorf("estimate: %w", UnsupportedVenue("binance"))

	if !errors.Is(err, New(CodeUnsupportedVenue)) {
		t.Error("errors.Is() = false for same code")
	}
	if errors.Is(err, New(CodeIncompatibleVenues)) {
		t.Error("errors.Is() = true for different code")
	}
	if GetCode(err) != CodeUnsupportedVenue {
		t.Errorf("GetCode() = %s", GetCode(err))
	}
	if GetCode(errors.New("plain")) != CodeUnknownError {
		t.Error("GetCode() of plain error should be unknown")
	}
}

func TestToResponse(t *testing.T) {
	resp := UnsupportedVenue("binance").ToResponse()

	body, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response = %v, want error object", resp)
	}
	if body["code"] != CodeUnsupportedVenue {
		t.Errorf("code = %v", body["code"])
	}
	if body["context"] != "venue=binance" {
		t.Errorf("context = %v", body["context"])
	}
	if _, ok := body["traceId"]; ok {
		t.Error("traceId present without a trace")
	}
}
