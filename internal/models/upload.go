package models

// UploadResponse is the structured answer of the file upload endpoint
type UploadResponse struct {
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}
