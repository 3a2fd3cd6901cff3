package feedbacks_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/services/feedbacks"
	"Backend-Feedback/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rateCourse() models.QuestionRequest {
	return test.Question("Rate the course", "Good", "Average", "Poor")
}

func TestSubmitAndAggregateScenarios(t *testing.T) {
	suiteResult := test.NewTestSuiteResult("Feedback Scenarios")
	defer suiteResult.PrintSummary()
	ctx := context.Background()

	suiteResult.Track(t, "ScenarioA_OptionCountsAndFreeText", func(t *testing.T) {
		f := test.NewFixture(t)
		svc := feedbacks.NewService(f.Store)
		form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())

		for _, answer := range []string{"Good", "Good", "Excellent"} {
			student := f.NewUser(t, models.RoleStudent, models.DepartmentCSE)
			_, err := svc.Submit(ctx, student, form.ID.Hex(), test.Answer(qs, answer))
			require.NoError(t, err)
		}

		result, err := svc.Aggregate(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{})
		require.NoError(t, err)
		require.Len(t, result.Questions, 1)
		tally := result.Questions[0]
		assert.Equal(t, map[string]int{"Good": 2, "Average": 0, "Poor": 0}, tally.OptionCounts)
		assert.Equal(t, []string{"Excellent"}, tally.FreeText)
		assert.Equal(t, 3, result.TotalResponses)

		view := result.PerQuestion["Rate the course"]
		assert.Equal(t, 2, view["Good"])
		assert.Equal(t, 0, view["Poor"])
		assert.Equal(t, []string{"Excellent"}, view[models.FreeTextKey])
	})

	suiteResult.Track(t, "ScenarioB_SecondSubmitConflicts", func(t *testing.T) {
		f := test.NewFixture(t)
		svc := feedbacks.NewService(f.Store)
		form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())

		state, err := svc.HasSubmitted(ctx, f.Student, form.ID.Hex())
		require.NoError(t, err)
		assert.False(t, state.Submitted)

		_, err = svc.Submit(ctx, f.Student, form.ID.Hex(), test.Answer(qs, "Good"))
		require.NoError(t, err)

		_, err = svc.Submit(ctx, f.Student, form.ID.Hex(), test.Answer(qs, "Poor"))
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindConflict))

		for i := 0; i < 3; i++ {
			state, err := svc.HasSubmitted(ctx, f.Student, form.ID.Hex())
			require.NoError(t, err)
			assert.True(t, state.Submitted)
		}
	})

	suiteResult.Track(t, "ScenarioD_NoResponsesIsEmptyResult", func(t *testing.T) {
		f := test.NewFixture(t)
		svc := feedbacks.NewService(f.Store)
		form, _ := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true,
			rateCourse(), test.Question("Anything else?"))

		result, err := svc.Aggregate(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{})
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalResponses)
		require.Len(t, result.Questions, 2)
		assert.Equal(t, map[string]int{"Good": 0, "Average": 0, "Poor": 0}, result.Questions[0].OptionCounts)
		assert.Empty(t, result.Questions[0].FreeText)
		assert.Empty(t, result.Questions[1].OptionCounts)
		assert.NotNil(t, result.Questions[1].FreeText)
	})
}

func TestConcurrentSubmitsAcceptExactlyOne(t *testing.T) {
	f := test.NewFixture(t)
	svc := feedbacks.NewService(f.Store)
	form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())
	ctx := context.Background()

	timer := test.NewTestTimer("Concurrent submit")
	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, f.Student, form.ID.Hex(), test.Answer(qs, "Average"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	test.PerformanceAssertion(t, "Concurrent submit", timer.Stop(), 2*time.Second)

	ok, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.True(t, apperror.Is(err, apperror.KindConflict), "unexpected error: %v", err)
		conflicts++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)

	result, err := svc.Aggregate(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalResponses)
	assert.Equal(t, 1, result.Questions[0].OptionCounts["Average"])
}

func TestSubmitValidation(t *testing.T) {
	f := test.NewFixture(t)
	svc := feedbacks.NewService(f.Store)
	ctx := context.Background()
	form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse(), test.Question("Comments"))
	draft, draftQs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, false, rateCourse())
	_, foreignQs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())

	tests := []struct {
		name   string
		who    models.Identity
		formID string
		req    models.SubmitFeedbackRequest
		kind   apperror.Kind
	}{
		{"malformed form id", f.Student, "nope", test.Answer(qs, "Good"), apperror.KindValidation},
		{"no responses", f.Student, form.ID.Hex(), models.SubmitFeedbackRequest{}, apperror.KindValidation},
		{"blank answer", f.Student, form.ID.Hex(), test.Answer(qs, "   "), apperror.KindValidation},
		{"question from another form", f.Student, form.ID.Hex(), test.Answer(foreignQs, "Good"), apperror.KindValidation},
		{"same question twice", f.Student, form.ID.Hex(), models.SubmitFeedbackRequest{Responses: []models.ResponseInput{
			{QuestionID: qs[0].ID.Hex(), ResponseText: "Good"},
			{QuestionID: qs[0].ID.Hex(), ResponseText: "Poor"},
		}}, apperror.KindValidation},
		{"unknown form", f.Student, primitive.NewObjectID().Hex(), test.Answer(qs, "Good"), apperror.KindNotFound},
		{"unpublished form", f.Student, draft.ID.Hex(), test.Answer(draftQs, "Good"), apperror.KindConflict},
		{"instructor cannot submit", f.Instructor, form.ID.Hex(), test.Answer(qs, "Good"), apperror.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.who, tt.formID, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	state, err := svc.HasSubmitted(ctx, f.Student, form.ID.Hex())
	require.NoError(t, err)
	assert.False(t, state.Submitted, "failed submissions must not be stored")
}

func TestSubmitKeepsAnswerOrderAndText(t *testing.T) {
	f := test.NewFixture(t)
	svc := feedbacks.NewService(f.Store)
	form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse(), test.Question("Comments"))

	req := models.SubmitFeedbackRequest{Responses: []models.ResponseInput{
		{QuestionID: qs[1].ID.Hex(), ResponseText: "  spaced  "},
		{QuestionID: qs[0].ID.Hex(), ResponseText: "good"},
	}}
	fb, err := svc.Submit(context.Background(), f.Student, form.ID.Hex(), req)
	require.NoError(t, err)
	require.Len(t, fb.Responses, 2)
	assert.Equal(t, qs[1].ID, fb.Responses[0].QuestionID)
	assert.Equal(t, "  spaced  ", fb.Responses[0].ResponseText)

	result, err := svc.Aggregate(context.Background(), f.Admin, form.ID.Hex(), models.PaginationParams{})
	require.NoError(t, err)
	// matching is exact, so "good" is not the "Good" option
	assert.Equal(t, 0, result.Questions[0].OptionCounts["Good"])
	assert.Equal(t, []string{"good"}, result.Questions[0].FreeText)
	assert.Equal(t, []string{"  spaced  "}, result.Questions[1].FreeText)
}

func TestAggregateAuthorization(t *testing.T) {
	f := test.NewFixture(t)
	svc := feedbacks.NewService(f.Store)
	form, _ := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())
	ctx := context.Background()

	_, err := svc.Aggregate(ctx, f.OtherInstructor, form.ID.Hex(), models.PaginationParams{})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.Aggregate(ctx, f.Student, form.ID.Hex(), models.PaginationParams{})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.Aggregate(ctx, f.Admin, form.ID.Hex(), models.PaginationParams{})
	assert.NoError(t, err)

	_, err = svc.Aggregate(ctx, f.Admin, primitive.NewObjectID().Hex(), models.PaginationParams{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestAggregatePaginatesQuestions(t *testing.T) {
	f := test.NewFixture(t)
	svc := feedbacks.NewService(f.Store)
	form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true,
		test.Question("Q1", "A"), test.Question("Q2", "A"), test.Question("Q3", "A"))
	ctx := context.Background()

	_, err := svc.Submit(ctx, f.Student, form.ID.Hex(), test.Answer(qs, "A", "B", "A"))
	require.NoError(t, err)

	result, err := svc.Aggregate(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "Q3", result.Questions[0].Question)
	require.NotNil(t, result.Pagination)
	assert.Equal(t, int64(3), result.Pagination.Total)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.Len(t, result.PerQuestion, 1)

	// pages far past the end are empty rather than an error
	result, err = svc.Aggregate(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{Page: 1 << 62, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, result.Questions)
	assert.Empty(t, result.PerQuestion)
	assert.Equal(t, models.MaxPage, result.Pagination.Page)
	assert.Equal(t, 1, result.TotalResponses)

	responses, err := svc.ListResponses(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{Page: 1 << 62, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, responses.Data)
	assert.Equal(t, int64(1), responses.Total)
}

func TestListResponses(t *testing.T) {
	f := test.NewFixture(t)
	svc := feedbacks.NewService(f.Store)
	form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		student := f.NewUser(t, models.RoleStudent, models.DepartmentCSE)
		_, err := svc.Submit(ctx, student, form.ID.Hex(), test.Answer(qs, "Good"))
		require.NoError(t, err)
	}

	page, err := svc.ListResponses(ctx, f.Instructor, form.ID.Hex(), models.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Data, 2)

	_, err = svc.ListResponses(ctx, f.OtherInstructor, form.ID.Hex(), models.PaginationParams{})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

// deletedBeforeInsert removes the form and its sets right before the insert,
// the way a form delete running between Submit's load and insert would.
type deletedBeforeInsert struct {
	repository.FeedbackRepository
	forms repository.FormRepository
}

func (d *deletedBeforeInsert) InsertIfAbsent(ctx context.Context, fb *models.Feedback) error {
	if _, err := d.FeedbackRepository.DeleteByForm(ctx, fb.FormID); err != nil {
		return err
	}
	if err := d.forms.Delete(ctx, fb.FormID); err != nil {
		return err
	}
	return d.FeedbackRepository.InsertIfAbsent(ctx, fb)
}

func TestSubmitDuringFormDeleteLeavesNoOrphan(t *testing.T) {
	f := test.NewFixture(t)
	inner := f.Store.Feedbacks
	f.Store.Feedbacks = &deletedBeforeInsert{FeedbackRepository: inner, forms: f.Store.Forms}
	svc := feedbacks.NewService(f.Store)
	form, qs := f.SeedForm(t, f.Instructor, models.DepartmentCSE, true, rateCourse())
	ctx := context.Background()

	_, err := svc.Submit(ctx, f.Student, form.ID.Hex(), test.Answer(qs, "Good"))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	left, err := inner.FindByForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
