package questions

import (
	"context"
	"log"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/services/saga"
	"Backend-Feedback/src/utils"
)

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

// Normalize trims the question text and options. Options must stay unique
// after trimming and cannot be models.FreeTextKey, which names the free-text
// bucket of the aggregated view. An empty list makes the question free-text only.
func Normalize(text string, options []string) (string, []string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, apperror.Validation("question text is required", "question cannot be blank")
	}
	out := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return "", nil, apperror.Validation("options cannot be blank", "options cannot contain blank values")
		}
		if opt == models.FreeTextKey {
			return "", nil, apperror.Validation("options cannot use a reserved name", "option "+opt+" is reserved")
		}
		if seen[opt] {
			return "", nil, apperror.Validation("options must be unique", "duplicate option "+opt)
		}
		seen[opt] = true
		out = append(out, opt)
	}
	return text, out, nil
}

// loadEditable returns the question and its form after checking that the
// caller may change it.
func (s *Service) loadEditable(ctx context.Context, identity models.Identity, questionID string) (*models.Question, *models.Form, error) {
	qid, err := utils.ParseObjectID("questionId", questionID)
	if err != nil {
		return nil, nil, err
	}
	question, err := s.store.Questions.FindByID(ctx, qid)
	if err != nil {
		return nil, nil, utils.StoreError(err, "question not found")
	}
	form, err := s.store.Forms.FindByID(ctx, question.FormID)
	if err != nil {
		return nil, nil, utils.StoreError(err, "form not found")
	}
	if !models.CanEditForm(identity.Role, identity.Owns(form.CreatedBy)) {
		return nil, nil, apperror.Forbidden("only the form owner or an admin can change its questions")
	}
	return question, form, nil
}

func (s *Service) Update(ctx context.Context, identity models.Identity, questionID string, req models.UpdateQuestionRequest) (*models.Question, error) {
	question, _, err := s.loadEditable(ctx, identity, questionID)
	if err != nil {
		return nil, err
	}
	if req.Question == nil && req.Options == nil {
		return nil, apperror.Validation("nothing to update", "question or options is required")
	}

	text := question.Question
	if req.Question != nil {
		text = *req.Question
	}
	options := question.Options
	if req.Options != nil {
		options = *req.Options
	}
	text, options, err = Normalize(text, options)
	if err != nil {
		return nil, err
	}

	var newOptions *[]string
	if req.Options != nil {
		newOptions = &options
	}
	var newText *string
	if req.Question != nil {
		newText = &text
	}

	updated, err := s.store.Questions.Update(ctx, question.ID, newText, newOptions)
	if err != nil {
		return nil, utils.StoreError(err, "question not found")
	}
	log.Printf("[question] updated id=%s", updated.ID.Hex())
	return updated, nil
}

// Delete refuses to remove a question that any response set already answers.
// The count and the delete are separate steps, so a submission landing in
// between can still reference the removed question; Tally skips such answers.
func (s *Service) Delete(ctx context.Context, identity models.Identity, questionID string) error {
	question, form, err := s.loadEditable(ctx, identity, questionID)
	if err != nil {
		return err
	}

	answered, err := s.store.Feedbacks.CountReferencingQuestion(ctx, form.ID, question.ID)
	if err != nil {
		return utils.StoreError(err, "form not found")
	}
	if answered > 0 {
		return apperror.Conflict("question already has responses and cannot be deleted")
	}

	position := -1
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return saga.New("delete question").
			Add(saga.Step{
				Name: "unlink question",
				Run: func(ctx context.Context) error {
					pos, err := s.store.Forms.PullQuestion(ctx, form.ID, question.ID)
					position = pos
					return err
				},
				Compensate: func(ctx context.Context) error {
					if position < 0 {
						return nil
					}
					return s.store.Forms.PushQuestion(ctx, form.ID, question.ID, position)
				},
			}).
			Add(saga.Step{
				Name: "delete question",
				Run: func(ctx context.Context) error {
					err := s.store.Questions.Delete(ctx, question.ID)
					if repository.IsNotFound(err) {
						return nil
					}
					return err
				},
			}).
			Execute(ctx)
	})
	if err != nil {
		log.Printf("[question] delete failed id=%s: %v", question.ID.Hex(), err)
		return utils.StoreError(err, "question not found")
	}

	log.Printf("[question] deleted id=%s form=%s", question.ID.Hex(), form.ID.Hex())
	return nil
}
