package forms

import (
	"context"
	"log"

	"Backend-Feedback/src/repository"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purger removes a form and everything hanging off it. Each step is a
// delete-many by form id, so running it again after a partial failure is safe.
// The background form:purge task uses the same Purger.
type Purger struct {
	store *repository.Store
}

func NewPurger(store *repository.Store) *Purger {
	return &Purger{store: store}
}

func (p *Purger) Purge(ctx context.Context, formID primitive.ObjectID) error {
	err := p.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		feedbacks, err := p.store.Feedbacks.DeleteByForm(ctx, formID)
		if err != nil {
			return errors.Wrap(err, "delete feedbacks")
		}
		questions, err := p.store.Questions.DeleteByForm(ctx, formID)
		if err != nil {
			return errors.Wrap(err, "delete questions")
		}
		if err := p.store.Forms.Delete(ctx, formID); err != nil && !repository.IsNotFound(err) {
			return errors.Wrap(err, "delete form")
		}
		log.Printf("[form] purge form=%s feedbacks=%d questions=%d", formID.Hex(), feedbacks, questions)
		return nil
	})
	if err != nil {
		return err
	}

	// Sets stored by submissions that loaded the form before it was removed.
	// Submit re-checks the form after inserting, so anything it stores after
	// this sweep is removed by the submitter itself.
	late, err := p.store.Feedbacks.DeleteByForm(ctx, formID)
	if err != nil {
		return errors.Wrap(err, "sweep feedbacks")
	}
	if late > 0 {
		log.Printf("⚠️ [form] purge form=%s removed %d late feedbacks", formID.Hex(), late)
	}
	return nil
}
