package types

// SuccessEnvelope wraps every 2xx body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Warning marks business-rule rejections
// such as a duplicate request that the client is expected to surface as-is.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Warning   bool   `json:"warning,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
