package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is one user's response set to one form. Unique per (FormID, UserID).
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID    primitive.ObjectID `bson:"formId" json:"formId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Responses []Response         `bson:"responses" json:"responses"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Response struct {
	QuestionID   primitive.ObjectID `bson:"questionId" json:"questionId"`
	ResponseText string             `bson:"responseText" json:"responseText"`
}

type ResponseInput struct {
	QuestionID   string `json:"questionId" validate:"required,mongodb"`
	ResponseText string `json:"responseText" validate:"notblank"`
}

type SubmitFeedbackRequest struct {
	Responses []ResponseInput `json:"responses" validate:"required,min=1,dive"`
}

type SubmissionState struct {
	FormID    primitive.ObjectID `json:"formId"`
	Submitted bool               `json:"submitted"`
}
