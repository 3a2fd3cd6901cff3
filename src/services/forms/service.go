package forms

import (
	"context"
	"log"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/jobs"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/services/questions"
	"Backend-Feedback/src/services/saga"
	"Backend-Feedback/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	store    *repository.Store
	purger   *Purger
	enqueuer jobs.Enqueuer
}

func NewService(store *repository.Store, purger *Purger, enqueuer jobs.Enqueuer) *Service {
	return &Service{store: store, purger: purger, enqueuer: enqueuer}
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

func (s *Service) loadEditable(ctx context.Context, identity models.Identity, formID string) (*models.Form, error) {
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !models.CanEditForm(identity.Role, identity.Owns(form.CreatedBy)) {
		return nil, apperror.Forbidden("only the form owner or an admin can change this form")
	}
	return form, nil
}

// CreateForm inserts the form shell, its questions, then links the question
// ids back onto the form. A failed step undoes the earlier ones.
func (s *Service) CreateForm(ctx context.Context, identity models.Identity, req models.CreateFormRequest) (*models.FormWithQuestions, error) {
	if !models.CanCreateForm(identity.Role) {
		return nil, apperror.Forbidden("only instructors can create forms")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	yearID, err := utils.ParseObjectID("academicYear", req.AcademicYear)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.AcademicYears.FindByID(ctx, yearID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.Validation("academic year does not exist", "academicYear does not exist")
		}
		return nil, utils.StoreError(err, "academic year not found")
	}

	now := utils.Now()
	form := &models.Form{
		ID:           primitive.NewObjectID(),
		CreatedBy:    identity.UserID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Department:   req.Department,
		AcademicYear: yearID,
		QuestionIDs:  []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	qs := make([]models.Question, 0, len(req.Questions))
	ids := make([]primitive.ObjectID, 0, len(req.Questions))
	for _, in := range req.Questions {
		text, options, err := questions.Normalize(in.Question, in.Options)
		if err != nil {
			return nil, err
		}
		q := models.Question{
			ID:        primitive.NewObjectID(),
			FormID:    form.ID,
			Question:  text,
			Options:   options,
			CreatedAt: now,
			UpdatedAt: now,
		}
		qs = append(qs, q)
		ids = append(ids, q.ID)
	}

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return saga.New("create form").
			Add(saga.Step{
				Name: "insert form",
				Run:  func(ctx context.Context) error { return s.store.Forms.Insert(ctx, form) },
				Compensate: func(ctx context.Context) error {
					return ignoreNotFound(s.store.Forms.Delete(ctx, form.ID))
				},
			}).
			Add(saga.Step{
				Name: "insert questions",
				Run:  func(ctx context.Context) error { return s.store.Questions.InsertMany(ctx, qs) },
				Compensate: func(ctx context.Context) error {
					_, err := s.store.Questions.DeleteByForm(ctx, form.ID)
					return err
				},
			}).
			Add(saga.Step{
				Name: "link questions",
				Run:  func(ctx context.Context) error { return s.store.Forms.SetQuestions(ctx, form.ID, ids) },
			}).
			Execute(ctx)
	})
	if err != nil {
		log.Printf("[form] create failed title=%q: %v", form.Title, err)
		return nil, apperror.Dependency("failed to create form", err)
	}

	form.QuestionIDs = ids
	log.Printf("[form] created id=%s questions=%d by=%s", form.ID.Hex(), len(qs), identity.UserID.Hex())
	return &models.FormWithQuestions{Form: *form, Questions: qs}, nil
}

// GetForm returns the form with its questions in form order. Drafts are only
// visible to those who can edit them.
func (s *Service) GetForm(ctx context.Context, identity models.Identity, formID string) (*models.FormWithQuestions, error) {
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished && !models.CanEditForm(identity.Role, identity.Owns(form.CreatedBy)) {
		return nil, apperror.NotFound("form not found")
	}

	qs, err := s.store.Questions.FindByForm(ctx, form.ID)
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	return &models.FormWithQuestions{Form: *form, Questions: models.OrderQuestions(form.QuestionIDs, qs)}, nil
}

func (s *Service) UpdateForm(ctx context.Context, identity models.Identity, formID string, req models.UpdateFormRequest) (*models.Form, error) {
	form, err := s.loadEditable(ctx, identity, formID)
	if err != nil {
		return nil, err
	}
	if req.Title == nil && req.Description == nil {
		return nil, apperror.Validation("nothing to update", "title or description is required")
	}

	upd := repository.FormUpdate{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.Validation("title cannot be blank", "title cannot be blank")
		}
		upd.Title = &title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if len([]rune(desc)) > models.MaxDescriptionLength {
			return nil, apperror.Validation("description is too long", "description must be at most 500 characters")
		}
		upd.Description = &desc
	}

	updated, err := s.store.Forms.Update(ctx, form.ID, upd)
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	log.Printf("[form] updated id=%s", updated.ID.Hex())
	return updated, nil
}

// TogglePublish flips isPublished. A form without questions cannot be opened.
func (s *Service) TogglePublish(ctx context.Context, identity models.Identity, formID string) (*models.Form, error) {
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !models.CanPublishForm(identity.Role, identity.Owns(form.CreatedBy)) {
		return nil, apperror.Forbidden("only the form owner or an admin can publish this form")
	}
	publish := !form.IsPublished
	if publish && len(form.QuestionIDs) == 0 {
		return nil, apperror.Conflict("a form needs at least one question before it can be published")
	}

	updated, err := s.store.Forms.Update(ctx, form.ID, repository.FormUpdate{IsPublished: &publish})
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	log.Printf("[form] publish id=%s isPublished=%v", updated.ID.Hex(), updated.IsPublished)
	return updated, nil
}

// DeleteForm removes response sets, questions and the form. If the cascade
// stops part way a form:purge task is queued to finish it.
func (s *Service) DeleteForm(ctx context.Context, identity models.Identity, formID string) error {
	form, err := s.loadEditable(ctx, identity, formID)
	if err != nil {
		return err
	}

	if err := s.purger.Purge(ctx, form.ID); err != nil {
		log.Printf("[form] cascade failed id=%s: %v", form.ID.Hex(), err)
		task, terr := jobs.NewPurgeFormTask(form.ID.Hex())
		if terr == nil {
			terr = s.enqueuer.Enqueue(ctx, task)
		}
		if terr != nil {
			log.Printf("[form] could not schedule purge id=%s: %v", form.ID.Hex(), terr)
		}
		return apperror.Dependency("form deletion did not complete, cleanup has been scheduled", err)
	}

	log.Printf("[form] deleted id=%s by=%s", form.ID.Hex(), identity.UserID.Hex())
	return nil
}

// AddQuestion appends a question to an existing form.
func (s *Service) AddQuestion(ctx context.Context, identity models.Identity, formID string, req models.QuestionRequest) (*models.Question, error) {
	form, err := s.loadEditable(ctx, identity, formID)
	if err != nil {
		return nil, err
	}
	text, options, err := questions.Normalize(req.Question, req.Options)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	q := models.Question{
		ID:        primitive.NewObjectID(),
		FormID:    form.ID,
		Question:  text,
		Options:   options,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return saga.New("add question").
			Add(saga.Step{
				Name: "insert question",
				Run:  func(ctx context.Context) error { return s.store.Questions.InsertMany(ctx, []models.Question{q}) },
				Compensate: func(ctx context.Context) error {
					return ignoreNotFound(s.store.Questions.Delete(ctx, q.ID))
				},
			}).
			Add(saga.Step{
				Name: "link question",
				Run:  func(ctx context.Context) error { return s.store.Forms.PushQuestion(ctx, form.ID, q.ID, -1) },
			}).
			Execute(ctx)
	})
	if err != nil {
		return nil, utils.StoreError(err, "form not found")
	}
	log.Printf("[form] question added form=%s question=%s", form.ID.Hex(), q.ID.Hex())
	return &q, nil
}

func (s *Service) ListByCreator(ctx context.Context, identity models.Identity, page models.PaginationParams) (*models.PaginatedResponse, error) {
	if !models.CanListOwnForms(identity.Role) {
		return nil, apperror.Forbidden("only instructors can list their forms")
	}
	page = page.Normalize()
	forms, total, err := s.store.Forms.List(ctx, repository.FormFilter{CreatedBy: &identity.UserID}, page)
	if err != nil {
		return nil, utils.StoreError(err, "forms not found")
	}
	return models.NewPaginatedResponse(forms, total, page), nil
}

func (s *Service) ListAll(ctx context.Context, identity models.Identity, page models.PaginationParams) (*models.PaginatedResponse, error) {
	if !models.CanListAllForms(identity.Role) {
		return nil, apperror.Forbidden("only admins can list every form")
	}
	page = page.Normalize()
	forms, total, err := s.store.Forms.List(ctx, repository.FormFilter{}, page)
	if err != nil {
		return nil, utils.StoreError(err, "forms not found")
	}
	return models.NewPaginatedResponse(forms, total, page), nil
}

// ListPublishedForScope lists the published forms of the student's academic
// year aimed at their department or at ALL, newest first, each marked with
// whether the student already responded.
func (s *Service) ListPublishedForScope(ctx context.Context, identity models.Identity, page models.PaginationParams) (*models.PaginatedResponse, error) {
	if !models.CanBrowseScopedForms(identity.Role) {
		return nil, apperror.Forbidden("only students can browse forms for their department")
	}
	page = page.Normalize()
	if identity.AcademicYear.IsZero() {
		return models.NewPaginatedResponse([]models.FormListItem{}, 0, page), nil
	}

	published := true
	forms, total, err := s.store.Forms.List(ctx, repository.FormFilter{
		Published:    &published,
		AcademicYear: &identity.AcademicYear,
		Departments:  []models.Department{identity.Department, models.DepartmentALL},
	}, page)
	if err != nil {
		return nil, utils.StoreError(err, "forms not found")
	}

	ids := make([]primitive.ObjectID, 0, len(forms))
	for _, f := range forms {
		ids = append(ids, f.ID)
	}
	submitted, err := s.store.Feedbacks.SubmittedFormIDs(ctx, identity.UserID, ids)
	if err != nil {
		return nil, utils.StoreError(err, "forms not found")
	}

	items := make([]models.FormListItem, 0, len(forms))
	for _, f := range forms {
		items = append(items, models.FormListItem{Form: f, Submitted: submitted[f.ID]})
	}
	return models.NewPaginatedResponse(items, total, page), nil
}

func ignoreNotFound(err error) error {
	if repository.IsNotFound(err) {
		return nil
	}
	return err
}
