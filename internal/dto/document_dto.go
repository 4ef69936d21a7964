package dto

type IngestDocumentRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content" validate:"required"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Subject    string `json:"subject"`
}

type IngestDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// IngestDocumentMessage is the ingestion topic payload.
type IngestDocumentMessage struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Subject    string `json:"subject"`
}
