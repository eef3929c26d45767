package models

// APIResponse wraps the parsed gateway response together with HTTP
// metadata. Body always carries the raw response; Data is filled when the
// body parses as the common gateway JSON shape.
type APIResponse struct {
	// HTTPStatus is the HTTP status code returned by the gateway.
	HTTPStatus int

	// Body is the raw response body.
	Body []byte

	// Data is the parsed gateway response, best-effort.
	Data GatewayResponse
}

// GatewayResponse is the common response envelope returned by the
// payment, transaction, and standing-instruction endpoints.
type GatewayResponse struct {
	// GID is the gateway-assigned global transaction identifier.
	GID string `json:"gid"`

	// Status is the transaction status, e.g. SENT_FOR_CAPTURE.
	Status string `json:"status"`

	// Message is a human-readable result description.
	Message string `json:"message"`

	// Timestamp is the gateway-side processing time.
	Timestamp string `json:"timestamp"`

	// ReasonCode qualifies declines and failures.
	ReasonCode string `json:"reasonCode"`

	// Data carries the follow-up URLs for redirect flows.
	// Nil when the response has none.
	Data *RedirectData `json:"data,omitempty"`

	// Errors lists field-level problems reported by the gateway.
	Errors []FieldError `json:"errors,omitempty"`
}

// RedirectData carries the URLs a redirect-based payment flow needs next.
type RedirectData struct {
	RedirectURL string `json:"redirectUrl"`
	StatusURL   string `json:"statusUrl"`
}

// FieldError is a field-level error item from the gateway.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Transaction status constants.
const (
	StatusSentForCapture = "SENT_FOR_CAPTURE"
	StatusSentForRefund  = "SENT_FOR_REFUND"
	StatusCaptured       = "CAPTURED"
	StatusRefunded       = "REFUNDED"
	StatusReversed       = "REVERSED"
	StatusPending        = "PENDING"
	StatusDeclined       = "DECLINED"
	StatusFailed         = "FAILED"
)
