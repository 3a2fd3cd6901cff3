package feedbacks

import (
	"context"
	"fmt"
	"log"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Aggregate tallies every response set of a form. Questions and response sets
// are loaded once each, in parallel, so the cost does not grow with the number
// of answers per set. A form without responses yields zero counts.
func (s *Service) Aggregate(ctx context.Context, identity models.Identity, formID string, page models.PaginationParams) (*models.AggregationResult, error) {
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !models.CanViewResults(identity.Role, identity.Owns(form.CreatedBy)) {
		return nil, apperror.Forbidden("only the form owner or an admin can view results")
	}

	var (
		questions []models.Question
		feedbacks []models.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.store.Questions.FindByForm(gctx, form.ID)
		return err
	})
	g.Go(func() error {
		var err error
		feedbacks, err = s.store.Feedbacks.FindByForm(gctx, form.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, utils.StoreError(err, "form not found")
	}

	result, skipped := Tally(form, questions, feedbacks)
	if skipped > 0 {
		log.Printf("[aggregate] form=%s skipped %d answers to unknown questions", form.ID.Hex(), skipped)
	}
	if page.Limit > 0 {
		page = page.Normalize()
		meta := models.NewPageMeta(int64(len(result.Questions)), page)
		result.Questions = pageOf(result.Questions, page)
		result.PerQuestion = perQuestion(result.Questions)
		result.Pagination = &meta
	}
	return result, nil
}

// Tally is the pure part of Aggregate. There is one entry per question in form
// order. An answer counts towards an option only when it equals the option
// exactly, case included; anything else is kept verbatim as free text in
// replay order. Answers to questions that are not part of the form are
// skipped and counted in the second return value.
func Tally(form *models.Form, questions []models.Question, feedbacks []models.Feedback) (*models.AggregationResult, int) {
	ordered := models.OrderQuestions(form.QuestionIDs, questions)

	tallies := make([]models.QuestionTally, len(ordered))
	index := make(map[primitive.ObjectID]int, len(ordered))
	for i, q := range ordered {
		counts := make(map[string]int, len(q.Options))
		for _, opt := range q.Options {
			counts[opt] = 0
		}
		tallies[i] = models.QuestionTally{
			QuestionID:   q.ID,
			Question:     q.Question,
			Options:      append([]string{}, q.Options...),
			OptionCounts: counts,
			FreeText:     []string{},
		}
		index[q.ID] = i
	}

	skipped := 0
	for _, fb := range feedbacks {
		for _, resp := range fb.Responses {
			i, ok := index[resp.QuestionID]
			if !ok {
				skipped++
				continue
			}
			t := &tallies[i]
			t.TotalResponses++
			if _, isOption := t.OptionCounts[resp.ResponseText]; isOption {
				t.OptionCounts[resp.ResponseText]++
			} else {
				t.FreeText = append(t.FreeText, resp.ResponseText)
			}
		}
	}

	return &models.AggregationResult{
		FormID:          form.ID,
		FormTitle:       form.Title,
		FormDescription: form.Description,
		TotalResponses:  len(feedbacks),
		Questions:       tallies,
		PerQuestion:     perQuestion(tallies),
	}, skipped
}

// perQuestion builds the map keyed by question text. Repeated question texts
// get a " (n)" suffix so no tally is lost.
func perQuestion(tallies []models.QuestionTally) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(tallies))
	for _, t := range tallies {
		entry := make(map[string]interface{}, len(t.OptionCounts)+1)
		for opt, n := range t.OptionCounts {
			entry[opt] = n
		}
		entry[models.FreeTextKey] = t.FreeText

		key := t.Question
		for n := 2; ; n++ {
			if _, taken := out[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s (%d)", t.Question, n)
		}
		out[key] = entry
	}
	return out
}

func pageOf(tallies []models.QuestionTally, page models.PaginationParams) []models.QuestionTally {
	start := int(page.GetSkip())
	if start < 0 || start >= len(tallies) {
		return []models.QuestionTally{}
	}
	end := start + page.Limit
	if end < start || end > len(tallies) {
		end = len(tallies)
	}
	return tallies[start:end]
}
