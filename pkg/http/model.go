package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// APIResponse422Err represents a validation failure response.
type APIResponse422Err struct {
	Status  int               `json:"status" example:"422"`
	Message string            `json:"message" example:"Unprocessable Entity"`
	Data    []ValidationError `json:"data,omitempty"`
}

// APIResponse500Err represents 500 error response.
type APIResponse500Err struct {
	Status  int         `json:"status" example:"500"`
	Message string      `json:"message" example:"Internal Server Error"`
	Data    []*AppError `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"query"`
	Message string                 `json:"message,omitempty" example:"query is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
