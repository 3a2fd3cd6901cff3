package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxDescriptionLength = 500

// --- Form ---
type Form struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedBy    primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	Department   Department           `bson:"department" json:"department"`
	AcademicYear primitive.ObjectID   `bson:"academicYear" json:"academicYear"`
	QuestionIDs  []primitive.ObjectID `bson:"questions" json:"questionIds"`
	IsPublished  bool                 `bson:"isPublished" json:"isPublished"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type FormWithQuestions struct {
	Form      `bson:",inline"`
	Questions []Question `json:"questions"`
}

// FormListItem is a form annotated with whether the caller already responded.
type FormListItem struct {
	Form      `bson:",inline"`
	Submitted bool `json:"submitted"`
}

// --- Requests ---

type CreateFormRequest struct {
	Title        string            `json:"title" validate:"notblank,max=200"`
	Description  string            `json:"description" validate:"max=500"`
	Department   Department        `json:"department" validate:"required,department"`
	AcademicYear string            `json:"academicYear" validate:"required,mongodb"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type UpdateFormRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type TogglePublishRequest struct {
	FormID string `json:"formId" validate:"required,mongodb"`
}

// OrderQuestions returns questions in the order of ids. Questions that belong
// to the form but are missing from ids keep their relative order at the end.
func OrderQuestions(ids []primitive.ObjectID, questions []Question) []Question {
	byID := make(map[primitive.ObjectID]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]Question, 0, len(questions))
	placed := make(map[primitive.ObjectID]bool, len(questions))
	for _, id := range ids {
		if q, ok := byID[id]; ok && !placed[id] {
			ordered = append(ordered, q)
			placed[id] = true
		}
	}
	for _, q := range questions {
		if !placed[q.ID] {
			ordered = append(ordered, q)
		}
	}
	return ordered
}
