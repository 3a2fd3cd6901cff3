package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixture is an in-memory store seeded with one academic year and a user per role.
type Fixture struct {
	Store      *repository.Store
	Year       models.AcademicYear
	Admin      models.Identity
	Instructor models.Identity
	// OtherInstructor owns nothing the other fixtures create.
	OtherInstructor models.Identity
	Student         models.Identity

	seq int
}

func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	f := &Fixture{Store: repository.NewMemoryStore()}
	ctx := context.Background()

	f.Admin = f.NewUser(t, models.RoleAdmin, models.DepartmentALL)
	f.Year = models.AcademicYear{Year: "2024-25", CreatedBy: f.Admin.UserID, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.Store.AcademicYears.Insert(ctx, &f.Year))

	f.Instructor = f.NewUser(t, models.RoleInstructor, models.DepartmentCSE)
	f.OtherInstructor = f.NewUser(t, models.RoleInstructor, models.DepartmentECE)
	f.Student = f.NewUser(t, models.RoleStudent, models.DepartmentCSE)
	return f
}

// NewUser stores a user and returns the identity the auth middleware would build.
func (f *Fixture) NewUser(t *testing.T, role models.Role, dept models.Department) models.Identity {
	t.Helper()
	f.seq++
	u := &models.User{
		FullName:   fmt.Sprintf("User %d", f.seq),
		Email:      fmt.Sprintf("user%d@example.com", f.seq),
		CollegeID:  fmt.Sprintf("JCER%03d", f.seq),
		Role:       role,
		Department: dept,
		CreatedAt:  time.Now().UTC(),
	}
	if role == models.RoleStudent {
		year := f.Year.ID
		u.AcademicYear = &year
	}
	require.NoError(t, f.Store.Users.Insert(context.Background(), u))
	return u.Identity()
}

func Question(text string, options ...string) models.QuestionRequest {
	return models.QuestionRequest{Question: text, Options: options}
}

// SeedForm writes a form and its questions straight into the store.
func (f *Fixture) SeedForm(t *testing.T, owner models.Identity, dept models.Department, published bool, questions ...models.QuestionRequest) (*models.Form, []models.Question) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	form := &models.Form{
		ID:           primitive.NewObjectID(),
		CreatedBy:    owner.UserID,
		Title:        "Course feedback",
		Department:   dept,
		AcademicYear: f.Year.ID,
		IsPublished:  published,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	qs := make([]models.Question, 0, len(questions))
	for _, in := range questions {
		q := models.Question{
			ID:        primitive.NewObjectID(),
			FormID:    form.ID,
			Question:  in.Question,
			Options:   append([]string{}, in.Options...),
			CreatedAt: now,
			UpdatedAt: now,
		}
		qs = append(qs, q)
		form.QuestionIDs = append(form.QuestionIDs, q.ID)
	}
	require.NoError(t, f.Store.Forms.Insert(ctx, form))
	require.NoError(t, f.Store.Questions.InsertMany(ctx, qs))
	return form, qs
}

// Answer builds a submit request answering questions in order with texts.
func Answer(questions []models.Question, texts ...string) models.SubmitFeedbackRequest {
	req := models.SubmitFeedbackRequest{}
	for i, text := range texts {
		req.Responses = append(req.Responses, models.ResponseInput{
			QuestionID:   questions[i].ID.Hex(),
			ResponseText: text,
		})
	}
	return req
}
