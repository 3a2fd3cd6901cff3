package utils

import (
	"time"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID converts a hex id from a path or body into an ObjectID.
func ParseObjectID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("invalid "+field, field+" must be a valid id")
	}
	return id, nil
}

// StoreError maps a repository failure to the error kind the API reports.
func StoreError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if repository.IsNotFound(err) {
		return apperror.NotFound(notFoundMsg)
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Dependency("storage operation failed", err)
}

// Now is the timestamp stored on new documents.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
