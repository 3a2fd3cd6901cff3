package feedbacks

import (
	"math/rand"
	"testing"
	"time"

	"Backend-Feedback/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func question(text string, options ...string) models.Question {
	return models.Question{ID: primitive.NewObjectID(), Question: text, Options: options}
}

func formOf(qs ...models.Question) *models.Form {
	form := &models.Form{ID: primitive.NewObjectID(), Title: "Mid-term review", Description: "CSE 2024"}
	for _, q := range qs {
		form.QuestionIDs = append(form.QuestionIDs, q.ID)
	}
	return form
}

func set(answers ...models.Response) models.Feedback {
	return models.Feedback{ID: primitive.NewObjectID(), Responses: answers}
}

func answer(q models.Question, text string) models.Response {
	return models.Response{QuestionID: q.ID, ResponseText: text}
}

func TestTallyFollowsFormOrder(t *testing.T) {
	pace := question("Pace", "Fast", "Slow")
	labs := question("Labs", "Yes", "No")
	form := formOf(labs, pace)

	result, skipped := Tally(form, []models.Question{pace, labs}, nil)
	assert.Zero(t, skipped)
	require.Len(t, result.Questions, 2)
	assert.Equal(t, "Labs", result.Questions[0].Question)
	assert.Equal(t, "Pace", result.Questions[1].Question)
	assert.Equal(t, "Mid-term review", result.FormTitle)
	assert.Equal(t, "CSE 2024", result.FormDescription)
}

func TestTallySkipsUnknownQuestions(t *testing.T) {
	pace := question("Pace", "Fast", "Slow")
	gone := question("Deleted question", "x")
	form := formOf(pace)

	result, skipped := Tally(form, []models.Question{pace}, []models.Feedback{
		set(answer(pace, "Fast"), answer(gone, "x")),
	})
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, result.Questions[0].OptionCounts["Fast"])
	assert.Equal(t, 1, result.Questions[0].TotalResponses)
}

func TestTallyFreeTextKeepsReplayOrder(t *testing.T) {
	comments := question("Comments")
	form := formOf(comments)

	result, _ := Tally(form, []models.Question{comments}, []models.Feedback{
		set(answer(comments, "first")),
		set(answer(comments, "second")),
		set(answer(comments, "third")),
	})
	assert.Equal(t, []string{"first", "second", "third"}, result.Questions[0].FreeText)
	assert.Empty(t, result.Questions[0].OptionCounts)
}

func TestTallyDuplicateQuestionTextsStaySeparate(t *testing.T) {
	a := question("Rate", "1", "2")
	b := question("Rate", "1", "2")
	form := formOf(a, b)

	result, _ := Tally(form, []models.Question{a, b}, []models.Feedback{
		set(answer(a, "1"), answer(b, "2")),
	})
	require.Len(t, result.PerQuestion, 2)
	assert.Equal(t, 1, result.PerQuestion["Rate"]["1"])
	assert.Equal(t, 1, result.PerQuestion["Rate (2)"]["2"])
}

// Every answer lands in exactly one bucket of its question.
func TestTallyConservesAnswers(t *testing.T) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	qs := []models.Question{
		question("Rate", "Good", "Average", "Poor"),
		question("Pace", "Fast", "OK", "Slow"),
		question("Comments"),
	}
	form := formOf(qs...)
	pool := []string{"Good", "good", "Average", "Poor", "Fast", "OK", "Slow", "meh", ""}

	expected := make([]int, len(qs))
	var sets []models.Feedback
	for i := 0; i < 200; i++ {
		var responses []models.Response
		for qi, q := range qs {
			if rng.Intn(4) == 0 {
				continue
			}
			responses = append(responses, answer(q, pool[rng.Intn(len(pool))]))
			expected[qi]++
		}
		sets = append(sets, set(responses...))
	}

	result, skipped := Tally(form, qs, sets)
	require.Zero(t, skipped)
	require.Len(t, result.Questions, len(qs))
	assert.Equal(t, len(sets), result.TotalResponses)
	for i, tally := range result.Questions {
		sum := len(tally.FreeText)
		for _, n := range tally.OptionCounts {
			sum += n
		}
		assert.Equal(t, expected[i], sum, "question %q", tally.Question)
		assert.Equal(t, expected[i], tally.TotalResponses)
	}
}
