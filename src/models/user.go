package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"fullName" json:"fullName"`
	Email        string              `bson:"email" json:"email"`
	Password     string              `bson:"password" json:"-"`
	CollegeID    string              `bson:"collegeId" json:"collegeId"`
	Role         Role                `bson:"accountType" json:"accountType"`
	Department   Department          `bson:"department" json:"department"`
	AcademicYear *primitive.ObjectID `bson:"academicYear,omitempty" json:"academicYear,omitempty"`
	RefreshToken string              `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) Identity() Identity {
	id := Identity{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}
	if u.AcademicYear != nil {
		id.AcademicYear = *u.AcademicYear
	}
	return id
}

type RegisterRequest struct {
	FullName     string     `json:"fullName" validate:"notblank,max=120"`
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=8,max=72"`
	CollegeID    string     `json:"collegeId" validate:"required,collegeid"`
	AccountType  Role       `json:"accountType" validate:"required,role"`
	Department   Department `json:"department" validate:"required,department"`
	AcademicYear string     `json:"academicYear" validate:"omitempty,mongodb"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type LoginResponse struct {
	User *User `json:"user"`
	AuthTokens
}
