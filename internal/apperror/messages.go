package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeUnsupportedVenue:   "No fee calculator registered for venue",
	CodeIncompatibleVenues: "Trade legs span venues that cannot be arbitraged against each other",
	CodeDataUnavailable:    "Live market data unavailable",
	CodeDegenerateInput:    "Degenerate trade input",

	CodeScheduleLoadFailed: "Failed to load fee schedules",
	CodeInvalidSchedule:    "Invalid fee schedule",

	CodeOrderbookFetchFailed: "Failed to fetch orderbook",
	CodeInvalidOrderbook:     "Invalid orderbook data",
	CodeOrderbookUnsupported: "Venue does not publish an orderbook",
	CodeOrderbookAPIError:    "Orderbook API error",

	CodeCacheMiss: "Cache miss",

	CodeCircuitOpen: "Circuit breaker is open",
}
