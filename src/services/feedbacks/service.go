package feedbacks

import (
	"context"
	"fmt"
	"log"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

func (s *Service) loadForm(ctx context.Context, formID string) (*models.Form, error) {
	id, err := utils.ParseObjectID("formId", formID)
	if err != nil {
		return nil, err
	}
	form, err := s.store.Forms.FindByID(ctx, id)
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	return form, nil
}

// Submit stores the caller's response set for a published form. Answers are
// kept verbatim and in the order given. A second submission for the same
// (form, user) fails with a conflict, even when both race.
func (s *Service) Submit(ctx context.Context, identity models.Identity, formID string, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if _, err := utils.ParseObjectID("formId", formID); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !models.CanSubmitFeedback(identity.Role) {
		return nil, apperror.Forbidden("only students can submit feedback")
	}

	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished {
		return nil, apperror.Conflict("form is not accepting responses")
	}

	questions, err := s.store.Questions.FindByForm(ctx, form.ID)
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	belongs := make(map[primitive.ObjectID]bool, len(questions))
	for _, q := range questions {
		belongs[q.ID] = true
	}

	responses := make([]models.Response, 0, len(req.Responses))
	seen := make(map[primitive.ObjectID]bool, len(req.Responses))
	for i, in := range req.Responses {
		qid, err := primitive.ObjectIDFromHex(in.QuestionID)
		if err != nil {
			return nil, apperror.Validation("invalid questionId", responseField(i)+".questionId must be a valid id")
		}
		if !belongs[qid] {
			return nil, apperror.Validation("question does not belong to this form", responseField(i)+".questionId is not part of this form")
		}
		if seen[qid] {
			return nil, apperror.Validation("question answered more than once", responseField(i)+".questionId is repeated")
		}
		seen[qid] = true
		responses = append(responses, models.Response{QuestionID: qid, ResponseText: in.ResponseText})
	}

	fb := &models.Feedback{
		ID:        primitive.NewObjectID(),
		FormID:    form.ID,
		UserID:    identity.UserID,
		Responses: responses,
		CreatedAt: utils.Now(),
	}
	if err := s.store.Feedbacks.InsertIfAbsent(ctx, fb); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperror.Conflict("feedback already submitted for this form")
		}
		return nil, utils.StoreError(err, "form not found")
	}

	// A concurrent form delete may have swept this form's sets before the
	// insert landed. The purge sweeps again after removing the form, so the
	// form being gone here is the only case left to clean up.
	if _, err := s.store.Forms.FindByID(ctx, form.ID); repository.IsNotFound(err) {
		if _, err := s.store.Feedbacks.DeleteByForm(ctx, form.ID); err != nil {
			log.Printf("❌ [feedback] cleanup after form delete failed form=%s: %v", form.ID.Hex(), err)
		}
		return nil, apperror.NotFound("form not found")
	} else if err != nil {
		log.Printf("⚠️ [feedback] form re-check failed form=%s: %v", form.ID.Hex(), err)
	}

	log.Printf("[feedback] inserted id=%s form=%s user=%s responses=%d",
		fb.ID.Hex(), fb.FormID.Hex(), fb.UserID.Hex(), len(fb.Responses))
	return fb, nil
}

func responseField(i int) string {
	return fmt.Sprintf("responses[%d]", i)
}

// HasSubmitted reports whether the caller already answered the form.
func (s *Service) HasSubmitted(ctx context.Context, identity models.Identity, formID string) (*models.SubmissionState, error) {
	if !models.CanSubmitFeedback(identity.Role) {
		return nil, apperror.Forbidden("only students can check their submission state")
	}
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.Feedbacks.Exists(ctx, form.ID, identity.UserID)
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	return &models.SubmissionState{FormID: form.ID, Submitted: ok}, nil
}

// ListResponses pages through the raw response sets of a form.
func (s *Service) ListResponses(ctx context.Context, identity models.Identity, formID string, page models.PaginationParams) (*models.PaginatedResponse, error) {
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !models.CanViewResults(identity.Role, identity.Owns(form.CreatedBy)) {
		return nil, apperror.Forbidden("only the form owner or an admin can view responses")
	}
	page = page.Normalize()
	items, total, err := s.store.Feedbacks.ListByForm(ctx, form.ID, page)
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	return models.NewPaginatedResponse(items, total, page), nil
}
