package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identity is the authenticated caller, resolved from the access token and
// passed explicitly into every service call.
type Identity struct {
	UserID       primitive.ObjectID `json:"userId"`
	Email        string             `json:"email"`
	Role         Role               `json:"role"`
	Department   Department         `json:"department"`
	AcademicYear primitive.ObjectID `json:"academicYear"`
}

// Owns reports whether ownerID is this caller.
func (i Identity) Owns(ownerID primitive.ObjectID) bool {
	return !i.UserID.IsZero() && i.UserID == ownerID
}
