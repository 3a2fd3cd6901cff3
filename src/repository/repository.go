// Package repository hides the document store behind narrow interfaces so the
// services can run against MongoDB or the in-memory store.
package repository

import (
	"context"
	"time"

	"Backend-Feedback/src/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// FormFilter narrows List. Zero fields are ignored.
type FormFilter struct {
	CreatedBy    *primitive.ObjectID
	Published    *bool
	AcademicYear *primitive.ObjectID
	Departments  []models.Department
}

// FormUpdate holds the mutable form fields. Nil means unchanged.
type FormUpdate struct {
	Title       *string
	Description *string
	IsPublished *bool
}

type FormRepository interface {
	Insert(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error)
	// List returns newest first together with the unpaginated total.
	List(ctx context.Context, filter FormFilter, page models.PaginationParams) ([]models.Form, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, upd FormUpdate) (*models.Form, error)
	SetQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error
	// PushQuestion inserts questionID at position, or appends when position < 0.
	PushQuestion(ctx context.Context, id, questionID primitive.ObjectID, position int) error
	// PullQuestion removes questionID and reports where it was (-1 if absent).
	PullQuestion(ctx context.Context, id, questionID primitive.ObjectID) (int, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByAcademicYear(ctx context.Context, academicYear primitive.ObjectID) (int64, error)
}

type QuestionRepository interface {
	InsertMany(ctx context.Context, questions []models.Question) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error)
	FindByForm(ctx context.Context, formID primitive.ObjectID) ([]models.Question, error)
	Update(ctx context.Context, id primitive.ObjectID, text *string, options *[]string) (*models.Question, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error)
}

type FeedbackRepository interface {
	// InsertIfAbsent stores fb unless (FormID, UserID) already exists, in which
	// case it returns ErrDuplicate. The check and the insert are one atomic step.
	InsertIfAbsent(ctx context.Context, fb *models.Feedback) error
	Exists(ctx context.Context, formID, userID primitive.ObjectID) (bool, error)
	SubmittedFormIDs(ctx context.Context, userID primitive.ObjectID, formIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	// FindByForm returns every response set ordered by createdAt then id.
	FindByForm(ctx context.Context, formID primitive.ObjectID) ([]models.Feedback, error)
	ListByForm(ctx context.Context, formID primitive.ObjectID, page models.PaginationParams) ([]models.Feedback, int64, error)
	CountReferencingQuestion(ctx context.Context, formID, questionID primitive.ObjectID) (int64, error)
	DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error)
}

type UserRepository interface {
	// Insert returns ErrDuplicate when the email or college id is taken.
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	CountByAcademicYear(ctx context.Context, academicYear primitive.ObjectID) (int64, error)
}

type AcademicYearRepository interface {
	Insert(ctx context.Context, year *models.AcademicYear) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AcademicYear, error)
	List(ctx context.Context) ([]models.AcademicYear, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ImageFeedbackRepository interface {
	Insert(ctx context.Context, fb *models.ImageFeedback) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ImageFeedback, error)
	Replace(ctx context.Context, fb *models.ImageFeedback) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, page models.PaginationParams) ([]models.ImageFeedback, int64, error)
	List(ctx context.Context, status models.ModerationStatus, page models.PaginationParams) ([]models.ImageFeedback, int64, error)
}

// TxRunner runs fn inside a transaction when the backend supports one and
// runs it directly otherwise. Callers pair it with compensations.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	SupportsTransactions() bool
}

// Store bundles every repository the services need.
type Store struct {
	Forms          FormRepository
	Questions      QuestionRepository
	Feedbacks      FeedbackRepository
	Users          UserRepository
	AcademicYears  AcademicYearRepository
	ImageFeedbacks ImageFeedbackRepository
	Tx             TxRunner
}

// IsNotFound reports whether err (or anything it wraps) is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// now is truncated to the millisecond resolution BSON dates keep.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
