package serverutils

// ApiResponse is the envelope every endpoint returns.
type ApiResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) ApiResponse {
	return ApiResponse{Code: 200, Message: message, Data: data}
}

func ErrorResponse(code int, message string) ApiResponse {
	return ApiResponse{Code: code, Message: message}
}
