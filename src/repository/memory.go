package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"Backend-Feedback/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryDB keeps every collection behind one mutex. It backs local runs
// (STORAGE=memory) and the service tests.
type memoryDB struct {
	mu             sync.RWMutex
	forms          map[primitive.ObjectID]models.Form
	questions      map[primitive.ObjectID]models.Question
	feedbacks      map[primitive.ObjectID]models.Feedback
	users          map[primitive.ObjectID]models.User
	academicYears  map[primitive.ObjectID]models.AcademicYear
	imageFeedbacks map[primitive.ObjectID]models.ImageFeedback
}

// NewMemoryStore returns a Store whose repositories share one in-process database.
func NewMemoryStore() *Store {
	db := &memoryDB{
		forms:          map[primitive.ObjectID]models.Form{},
		questions:      map[primitive.ObjectID]models.Question{},
		feedbacks:      map[primitive.ObjectID]models.Feedback{},
		users:          map[primitive.ObjectID]models.User{},
		academicYears:  map[primitive.ObjectID]models.AcademicYear{},
		imageFeedbacks: map[primitive.ObjectID]models.ImageFeedback{},
	}
	return &Store{
		Forms:          &memoryForms{db},
		Questions:      &memoryQuestions{db},
		Feedbacks:      &memoryFeedbacks{db},
		Users:          &memoryUsers{db},
		AcademicYears:  &memoryAcademicYears{db},
		ImageFeedbacks: &memoryImageFeedbacks{db},
		Tx:             memoryTx{},
	}
}

type memoryTx struct{}

func (memoryTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (memoryTx) SupportsTransactions() bool { return false }

func newerFirst(a, b primitive.ObjectID, ta, tb int64) bool {
	if ta != tb {
		return ta > tb
	}
	return a.Hex() > b.Hex()
}

func paginate[T any](items []T, page models.PaginationParams) []T {
	if page.Limit <= 0 {
		return items
	}
	start := int(page.GetSkip())
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end < start || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID(nil), ids...)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

// --- forms ---

type memoryForms struct{ db *memoryDB }

func cloneForm(f models.Form) models.Form {
	f.QuestionIDs = cloneIDs(f.QuestionIDs)
	return f
}

func (r *memoryForms) Insert(_ context.Context, form *models.Form) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if form.ID.IsZero() {
		form.ID = primitive.NewObjectID()
	}
	if _, ok := r.db.forms[form.ID]; ok {
		return ErrDuplicate
	}
	r.db.forms[form.ID] = cloneForm(*form)
	return nil
}

func (r *memoryForms) FindByID(_ context.Context, id primitive.ObjectID) (*models.Form, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	f, ok := r.db.forms[id]
	if !ok {
		return nil, ErrNotFound
	}
	f = cloneForm(f)
	return &f, nil
}

func (r *memoryForms) List(_ context.Context, filter FormFilter, page models.PaginationParams) ([]models.Form, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Form{}
	for _, f := range r.db.forms {
		if filter.CreatedBy != nil && f.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Published != nil && f.IsPublished != *filter.Published {
			continue
		}
		if filter.AcademicYear != nil && f.AcademicYear != *filter.AcademicYear {
			continue
		}
		if len(filter.Departments) > 0 && !containsDepartment(filter.Departments, f.Department) {
			continue
		}
		out = append(out, cloneForm(f))
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return paginate(out, page), int64(len(out)), nil
}

func containsDepartment(list []models.Department, d models.Department) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

func (r *memoryForms) Update(_ context.Context, id primitive.ObjectID, upd FormUpdate) (*models.Form, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.forms[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		f.Title = *upd.Title
	}
	if upd.Description != nil {
		f.Description = *upd.Description
	}
	if upd.IsPublished != nil {
		f.IsPublished = *upd.IsPublished
	}
	f.UpdatedAt = now()
	r.db.forms[id] = f
	f = cloneForm(f)
	return &f, nil
}

func (r *memoryForms) SetQuestions(_ context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.forms[id]
	if !ok {
		return ErrNotFound
	}
	f.QuestionIDs = cloneIDs(questionIDs)
	f.UpdatedAt = now()
	r.db.forms[id] = f
	return nil
}

func (r *memoryForms) PushQuestion(_ context.Context, id, questionID primitive.ObjectID, position int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.forms[id]
	if !ok {
		return ErrNotFound
	}
	ids := cloneIDs(f.QuestionIDs)
	if position < 0 || position >= len(ids) {
		ids = append(ids, questionID)
	} else {
		ids = append(ids[:position], append([]primitive.ObjectID{questionID}, ids[position:]...)...)
	}
	f.QuestionIDs = ids
	f.UpdatedAt = now()
	r.db.forms[id] = f
	return nil
}

func (r *memoryForms) PullQuestion(_ context.Context, id, questionID primitive.ObjectID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.forms[id]
	if !ok {
		return -1, ErrNotFound
	}
	pos := -1
	kept := make([]primitive.ObjectID, 0, len(f.QuestionIDs))
	for i, qid := range f.QuestionIDs {
		if qid == questionID {
			if pos < 0 {
				pos = i
			}
			continue
		}
		kept = append(kept, qid)
	}
	f.QuestionIDs = kept
	f.UpdatedAt = now()
	r.db.forms[id] = f
	return pos, nil
}

func (r *memoryForms) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.forms[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.forms, id)
	return nil
}

func (r *memoryForms) CountByAcademicYear(_ context.Context, academicYear primitive.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, f := range r.db.forms {
		if f.AcademicYear == academicYear {
			n++
		}
	}
	return n, nil
}

// --- questions ---

type memoryQuestions struct{ db *memoryDB }

func cloneQuestion(q models.Question) models.Question {
	q.Options = cloneStrings(q.Options)
	return q
}

func (r *memoryQuestions) InsertMany(_ context.Context, questions []models.Question) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range questions {
		if questions[i].ID.IsZero() {
			questions[i].ID = primitive.NewObjectID()
		}
		if _, ok := r.db.questions[questions[i].ID]; ok {
			return ErrDuplicate
		}
	}
	for _, q := range questions {
		r.db.questions[q.ID] = cloneQuestion(q)
	}
	return nil
}

func (r *memoryQuestions) FindByID(_ context.Context, id primitive.ObjectID) (*models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q, ok := r.db.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	q = cloneQuestion(q)
	return &q, nil
}

func (r *memoryQuestions) FindByForm(_ context.Context, formID primitive.ObjectID) ([]models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Question{}
	for _, q := range r.db.questions {
		if q.FormID == formID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *memoryQuestions) Update(_ context.Context, id primitive.ObjectID, text *string, options *[]string) (*models.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	q, ok := r.db.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if text != nil {
		q.Question = *text
	}
	if options != nil {
		q.Options = cloneStrings(*options)
		if q.Options == nil {
			q.Options = []string{}
		}
	}
	q.UpdatedAt = now()
	r.db.questions[id] = q
	q = cloneQuestion(q)
	return &q, nil
}

func (r *memoryQuestions) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.questions[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.questions, id)
	return nil
}

func (r *memoryQuestions) DeleteByForm(_ context.Context, formID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, q := range r.db.questions {
		if q.FormID == formID {
			delete(r.db.questions, id)
			n++
		}
	}
	return n, nil
}

// --- feedbacks ---

type memoryFeedbacks struct{ db *memoryDB }

func cloneFeedback(fb models.Feedback) models.Feedback {
	fb.Responses = append([]models.Response(nil), fb.Responses...)
	return fb
}

func (r *memoryFeedbacks) InsertIfAbsent(_ context.Context, fb *models.Feedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.feedbacks {
		if existing.FormID == fb.FormID && existing.UserID == fb.UserID {
			return ErrDuplicate
		}
	}
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	r.db.feedbacks[fb.ID] = cloneFeedback(*fb)
	return nil
}

func (r *memoryFeedbacks) Exists(_ context.Context, formID, userID primitive.ObjectID) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, fb := range r.db.feedbacks {
		if fb.FormID == formID && fb.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryFeedbacks) SubmittedFormIDs(_ context.Context, userID primitive.ObjectID, formIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	wanted := make(map[primitive.ObjectID]bool, len(formIDs))
	for _, id := range formIDs {
		wanted[id] = true
	}
	out := map[primitive.ObjectID]bool{}
	for _, fb := range r.db.feedbacks {
		if fb.UserID == userID && wanted[fb.FormID] {
			out[fb.FormID] = true
		}
	}
	return out, nil
}

func (r *memoryFeedbacks) byForm(formID primitive.ObjectID) []models.Feedback {
	out := []models.Feedback{}
	for _, fb := range r.db.feedbacks {
		if fb.FormID == formID {
			out = append(out, cloneFeedback(fb))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (r *memoryFeedbacks) FindByForm(_ context.Context, formID primitive.ObjectID) ([]models.Feedback, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.byForm(formID), nil
}

func (r *memoryFeedbacks) ListByForm(_ context.Context, formID primitive.ObjectID, page models.PaginationParams) ([]models.Feedback, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	all := r.byForm(formID)
	return paginate(all, page), int64(len(all)), nil
}

func (r *memoryFeedbacks) CountReferencingQuestion(_ context.Context, formID, questionID primitive.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, fb := range r.db.feedbacks {
		if fb.FormID != formID {
			continue
		}
		for _, resp := range fb.Responses {
			if resp.QuestionID == questionID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memoryFeedbacks) DeleteByForm(_ context.Context, formID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, fb := range r.db.feedbacks {
		if fb.FormID == formID {
			delete(r.db.feedbacks, id)
			n++
		}
	}
	return n, nil
}

// --- users ---

type memoryUsers struct{ db *memoryDB }

func (r *memoryUsers) Insert(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) || u.CollegeID == user.CollegeID {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.db.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = now()
	r.db.users[id] = u
	return nil
}

func (r *memoryUsers) CountByAcademicYear(_ context.Context, academicYear primitive.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, u := range r.db.users {
		if u.AcademicYear != nil && *u.AcademicYear == academicYear {
			n++
		}
	}
	return n, nil
}

// --- academic years ---

type memoryAcademicYears struct{ db *memoryDB }

func (r *memoryAcademicYears) Insert(_ context.Context, year *models.AcademicYear) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, y := range r.db.academicYears {
		if y.Year == year.Year {
			return ErrDuplicate
		}
	}
	if year.ID.IsZero() {
		year.ID = primitive.NewObjectID()
	}
	r.db.academicYears[year.ID] = *year
	return nil
}

func (r *memoryAcademicYears) FindByID(_ context.Context, id primitive.ObjectID) (*models.AcademicYear, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	y, ok := r.db.academicYears[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &y, nil
}

func (r *memoryAcademicYears) List(_ context.Context) ([]models.AcademicYear, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.AcademicYear, 0, len(r.db.academicYears))
	for _, y := range r.db.academicYears {
		out = append(out, y)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (r *memoryAcademicYears) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.academicYears[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.academicYears, id)
	return nil
}

// --- image feedbacks ---

type memoryImageFeedbacks struct{ db *memoryDB }

func cloneImageFeedback(fb models.ImageFeedback) models.ImageFeedback {
	fb.ImageURLs = cloneStrings(fb.ImageURLs)
	return fb
}

func (r *memoryImageFeedbacks) Insert(_ context.Context, fb *models.ImageFeedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	r.db.imageFeedbacks[fb.ID] = cloneImageFeedback(*fb)
	return nil
}

func (r *memoryImageFeedbacks) FindByID(_ context.Context, id primitive.ObjectID) (*models.ImageFeedback, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	fb, ok := r.db.imageFeedbacks[id]
	if !ok {
		return nil, ErrNotFound
	}
	fb = cloneImageFeedback(fb)
	return &fb, nil
}

func (r *memoryImageFeedbacks) Replace(_ context.Context, fb *models.ImageFeedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.imageFeedbacks[fb.ID]; !ok {
		return ErrNotFound
	}
	r.db.imageFeedbacks[fb.ID] = cloneImageFeedback(*fb)
	return nil
}

func (r *memoryImageFeedbacks) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.imageFeedbacks[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.imageFeedbacks, id)
	return nil
}

func (r *memoryImageFeedbacks) list(keep func(models.ImageFeedback) bool, page models.PaginationParams) ([]models.ImageFeedback, int64) {
	out := []models.ImageFeedback{}
	for _, fb := range r.db.imageFeedbacks {
		if keep(fb) {
			out = append(out, cloneImageFeedback(fb))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return paginate(out, page), int64(len(out))
}

func (r *memoryImageFeedbacks) ListByUser(_ context.Context, userID primitive.ObjectID, page models.PaginationParams) ([]models.ImageFeedback, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	items, total := r.list(func(fb models.ImageFeedback) bool { return fb.UserID == userID }, page)
	return items, total, nil
}

func (r *memoryImageFeedbacks) List(_ context.Context, status models.ModerationStatus, page models.PaginationParams) ([]models.ImageFeedback, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	items, total := r.list(func(fb models.ImageFeedback) bool { return status == "" || fb.Status == status }, page)
	return items, total, nil
}
