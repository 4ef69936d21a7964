package dto

import (
	"ai-tutor-be/pkg/rag/retrieval"
)

type ChatRequest struct {
	Question string `json:"question" validate:"required"`
	Subject  string `json:"subject"`   // defaults to "generic"
	CourseID string `json:"course_id"` // optional retrieval filter
}

type ChatResponse struct {
	Answer  string               `json:"answer"`
	Sources []retrieval.Citation `json:"sources"`
}

type CreateSessionRequest struct {
	Subject  string `json:"subject"`
	CourseID string `json:"course_id"`
}

type CreateSessionResponse struct {
	Id string `json:"id"`
}

type SessionChatRequest struct {
	Question string `json:"question" validate:"required"`
}
