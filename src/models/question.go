package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Question ---
// An empty Options list makes the question free-text only.
type Question struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID    primitive.ObjectID `bson:"formId" json:"formId"`
	Question  string             `bson:"question" json:"question"`
	Options   []string           `bson:"options" json:"options"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type QuestionRequest struct {
	Question string   `json:"question" validate:"notblank"`
	Options  []string `json:"options" validate:"omitempty,dive,notblank"`
}

// UpdateQuestionRequest leaves nil fields untouched. An empty Options slice
// turns the question into a free-text question.
type UpdateQuestionRequest struct {
	Question *string   `json:"question"`
	Options  *[]string `json:"options"`
}
