package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Fee oracle error codes
const (
	// Hard errors reported to the caller
	CodeUnsupportedVenue   Code = "UNSUPPORTED_VENUE"
	CodeIncompatibleVenues Code = "INCOMPATIBLE_VENUES"

	// Recovered locally unless the caller opts into live-only estimates
	CodeDataUnavailable Code = "DATA_UNAVAILABLE"
	CodeDegenerateInput Code = "DEGENERATE_INPUT"

	// Fee schedules
	CodeScheduleLoadFailed Code = "SCHEDULE_LOAD_FAILED"
	CodeInvalidSchedule    Code = "INVALID_SCHEDULE"

	// Orderbook collaborator
	CodeOrderbookFetchFailed Code = "ORDERBOOK_FETCH_FAILED"
	CodeInvalidOrderbook     Code = "INVALID_ORDERBOOK"
	CodeOrderbookUnsupported Code = "ORDERBOOK_UNSUPPORTED"
	CodeOrderbookAPIError    Code = "ORDERBOOK_API_ERROR"

	// Cache errors
	CodeCacheMiss Code = "CACHE_MISS"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
