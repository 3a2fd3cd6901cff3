package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AcademicYear struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Year      string             `bson:"year" json:"year"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type AddAcademicYearRequest struct {
	Year string `json:"year" validate:"notblank,max=20"`
}
