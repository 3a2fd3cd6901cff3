package jobs

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormPurger deletes everything that belongs to a form. Every step must be
// safe to repeat.
type FormPurger interface {
	Purge(ctx context.Context, formID primitive.ObjectID) error
}

// BlobDeleter is the slice of blobstore.Store the blob task needs.
type BlobDeleter interface {
	Delete(ctx context.Context, url string) (bool, error)
}

type Handlers struct {
	purger FormPurger
	blobs  BlobDeleter
}

func NewHandlers(purger FormPurger, blobs BlobDeleter) *Handlers {
	return &Handlers{purger: purger, blobs: blobs}
}

// Mux routes every task type this service produces.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePurgeForm, h.HandlePurgeFormTask)
	mux.HandleFunc(TypeDeleteBlob, h.HandleDeleteBlobTask)
	return mux
}

func (h *Handlers) HandlePurgeFormTask(ctx context.Context, t *asynq.Task) error {
	var payload PurgeFormPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Println("❌ Payload decode error:", err)
		return errors.Wrap(asynq.SkipRetry, err.Error())
	}

	formID, err := primitive.ObjectIDFromHex(payload.FormID)
	if err != nil {
		log.Println("❌ Invalid form id in purge task:", payload.FormID)
		return errors.Wrap(asynq.SkipRetry, err.Error())
	}

	if err := h.purger.Purge(ctx, formID); err != nil {
		log.Println("❌ Form purge failed:", formID.Hex(), err)
		return err
	}

	log.Println("✅ Form purged:", formID.Hex())
	return nil
}

func (h *Handlers) HandleDeleteBlobTask(ctx context.Context, t *asynq.Task) error {
	var payload DeleteBlobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Println("❌ Payload decode error:", err)
		return errors.Wrap(asynq.SkipRetry, err.Error())
	}

	deleted, err := h.blobs.Delete(ctx, payload.URL)
	if err != nil {
		log.Println("❌ Blob delete failed:", payload.URL, err)
		return err
	}
	if !deleted {
		log.Println("⚠️ Blob already gone. Skipping:", payload.URL)
		return nil
	}

	log.Println("✅ Blob deleted:", payload.URL)
	return nil
}

// StartWorker runs the asynq server in the background. Call Shutdown on the
// returned server when the process exits.
func StartWorker(redisURI string, handlers *Handlers) (*asynq.Server, error) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisURI},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
		},
	)
	if err := srv.Start(handlers.Mux()); err != nil {
		return nil, errors.Wrap(err, "start asynq worker")
	}
	log.Println("✅ Asynq worker started")
	return srv, nil
}
