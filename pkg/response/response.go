package response

// Envelope is the standard API response shape: {success, data?, message?}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Envelope {
	return Envelope{
		Success: true,
		Data:    data,
	}
}

// Message returns a success envelope carrying only a user-facing message.
func Message(msg string) Envelope {
	return Envelope{
		Success: true,
		Message: msg,
	}
}

// Fail returns an error envelope with a user-facing message.
func Fail(msg string) Envelope {
	return Envelope{
		Success: false,
		Message: msg,
	}
}
