package entity

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *ListMeta   `json:"meta,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListMeta describes a list payload
type ListMeta struct {
	Count int `json:"count"`
	Limit int `json:"limit,omitempty"`
}

// IngestResult counts the outcome of every event in an ingest batch
type IngestResult struct {
	Accepted    int `json:"accepted"`
	Filtered    int `json:"filtered"`
	Orphaned    int `json:"orphaned"`
	RateLimited int `json:"rate_limited"`
	Rejected    int `json:"rejected"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewListResponse(data interface{}, count, limit int) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: "OK",
		Data:    data,
		Meta:    &ListMeta{Count: count, Limit: limit},
	}
}

func NewErrorResponse(code string, message string) *APIResponse {
	return &APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}
