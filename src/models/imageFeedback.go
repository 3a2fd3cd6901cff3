package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

type ImageFeedback struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ImageURLs   []string           `bson:"imageUrls" json:"imageUrls"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Status      ModerationStatus   `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ImageUpload is one uploaded file, already read into memory.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateImageFeedbackRequest struct {
	Title       string `json:"title" form:"title" validate:"notblank,max=200"`
	Description string `json:"description" form:"description" validate:"notblank,max=2000"`
}

type EditImageFeedbackRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

type ModerateImageFeedbackRequest struct {
	Status ModerationStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}
