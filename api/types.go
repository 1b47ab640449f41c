package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler    blogHandler
	postHandler    postHandler
	commentHandler commentHandler
	siteHandler    siteHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string       `json:"error" example:"Internal Server Error"`
	Status  string       `json:"status" example:"error"`
	Field   string       `json:"field,omitempty" example:"title"`
	Fields  []FieldIssue `json:"fields,omitempty"`
	Details string       `json:"details,omitempty" example:"Additional error details"`
	Cause   string       `json:"cause,omitempty" example:"Underlying error cause"`
}

// FieldIssue is one failing input field.
type FieldIssue struct {
	Field   string `json:"field" example:"name"`
	Message string `json:"message" example:"must be at least 2 characters"`
}
