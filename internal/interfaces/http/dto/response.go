package dto

// Response is the envelope of every API answer.
// Error is true on failure and Message then explains it.
type Response struct {
	Error   bool   `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Data: data}
}

// NewMessageResponse creates a success response carrying a message for the user
func NewMessageResponse(message string, data any) Response {
	return Response{Message: message, Data: data}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Error:   true,
		Code:    code,
		Message: message,
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=1,max=200"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// ToggleRequest optionally names the flag to flip
type ToggleRequest struct {
	Field string `json:"field" binding:"omitempty,max=50"`
}

// EditCellRequest corrects one cell of an import session row
type EditCellRequest struct {
	Column string `json:"column" binding:"required"`
	Value  string `json:"value"`
}

// ImportSessionResponse summarizes an import session
type ImportSessionResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	TotalRows   int    `json:"total_rows"`
	InvalidRows int    `json:"invalid_rows"`
	Valid       bool   `json:"valid"`
	Rows        any    `json:"rows"`
}

// ImportCommitResponse reports a committed import
type ImportCommitResponse struct {
	Imported int `json:"imported"`
}
