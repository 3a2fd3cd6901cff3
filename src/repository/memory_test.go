package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"Backend-Feedback/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryFeedbackInsertIfAbsentIsExclusive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	formID, userID := primitive.NewObjectID(), primitive.NewObjectID()

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Feedbacks.InsertIfAbsent(ctx, &models.Feedback{FormID: formID, UserID: userID})
		}()
	}
	wg.Wait()
	close(results)

	ok, dup := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case IsDuplicate(err):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)

	exists, err := store.Feedbacks.Exists(ctx, formID, userID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryFeedbackReplayOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	formID := primitive.NewObjectID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	late := &models.Feedback{FormID: formID, UserID: primitive.NewObjectID(), CreatedAt: base.Add(time.Minute)}
	early := &models.Feedback{FormID: formID, UserID: primitive.NewObjectID(), CreatedAt: base}
	require.NoError(t, store.Feedbacks.InsertIfAbsent(ctx, late))
	require.NoError(t, store.Feedbacks.InsertIfAbsent(ctx, early))

	all, err := store.Feedbacks.FindByForm(ctx, formID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, late.ID, all[1].ID)

	page, total, err := store.Feedbacks.ListByForm(ctx, formID, models.PaginationParams{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, late.ID, page[0].ID)
}

func TestMemoryFormQuestionListEditing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	form := &models.Form{Title: "Course review"}
	require.NoError(t, store.Forms.Insert(ctx, form))
	require.NoError(t, store.Forms.SetQuestions(ctx, form.ID, []primitive.ObjectID{a, b, c}))

	pos, err := store.Forms.PullQuestion(ctx, form.ID, b)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	got, err := store.Forms.FindByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, c}, got.QuestionIDs)

	require.NoError(t, store.Forms.PushQuestion(ctx, form.ID, b, pos))
	got, err = store.Forms.FindByID(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, b, c}, got.QuestionIDs)

	pos, err = store.Forms.PullQuestion(ctx, form.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, -1, pos)
}

func TestMemoryFormListFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	year := primitive.NewObjectID()
	published := true
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	insert := func(title string, dept models.Department, pub bool, offset time.Duration) {
		require.NoError(t, store.Forms.Insert(ctx, &models.Form{
			Title: title, Department: dept, AcademicYear: year, IsPublished: pub, CreatedAt: base.Add(offset),
		}))
	}
	insert("cse-old", models.DepartmentCSE, true, 0)
	insert("all", models.DepartmentALL, true, time.Hour)
	insert("ece", models.DepartmentECE, true, 2*time.Hour)
	insert("cse-draft", models.DepartmentCSE, false, 3*time.Hour)

	forms, total, err := store.Forms.List(ctx, FormFilter{
		Published:    &published,
		AcademicYear: &year,
		Departments:  []models.Department{models.DepartmentCSE, models.DepartmentALL},
	}, models.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, forms, 2)
	assert.Equal(t, "all", forms[0].Title)
	assert.Equal(t, "cse-old", forms[1].Title)
}

func TestMemoryReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	q := models.Question{FormID: primitive.NewObjectID(), Question: "Pace?", Options: []string{"Fast", "Slow"}}
	require.NoError(t, store.Questions.InsertMany(ctx, []models.Question{q}))

	list, err := store.Questions.FindByForm(ctx, q.FormID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list[0].Options[0] = "mutated"

	again, err := store.Questions.FindByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Fast", again.Options[0])
}

func TestMemoryNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Forms.FindByID(ctx, primitive.NewObjectID())
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(store.Questions.Delete(ctx, primitive.NewObjectID())))
	assert.True(t, IsNotFound(store.ImageFeedbacks.Replace(ctx, &models.ImageFeedback{ID: primitive.NewObjectID()})))
}

func TestPaginateOutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	assert.Equal(t, []int{3}, paginate(items, models.PaginationParams{Page: 2, Limit: 2}))
	assert.Empty(t, paginate(items, models.PaginationParams{Page: 1 << 62, Limit: 100}))
	assert.Empty(t, paginate(items, models.PaginationParams{Page: 2, Limit: 1 << 62}))
	assert.Equal(t, items, paginate(items, models.PaginationParams{Page: -1, Limit: 1 << 62}))
}
