package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypePurgeForm  = "form:purge"
	TypeDeleteBlob = "blob:delete"
)

type PurgeFormPayload struct {
	FormID string `json:"form_id"`
}

type DeleteBlobPayload struct {
	URL string `json:"url"`
}

// NewPurgeFormTask finishes a form cascade that failed part way. The task id
// keeps one pending purge per form.
func NewPurgeFormTask(formID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgeFormPayload{FormID: formID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePurgeForm, payload,
		asynq.TaskID(TypePurgeForm+":"+formID),
		asynq.MaxRetry(10),
		asynq.Timeout(time.Minute),
	), nil
}

func NewDeleteBlobTask(url string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeleteBlobPayload{URL: url})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeleteBlob, payload,
		asynq.TaskID(TypeDeleteBlob+":"+url),
		asynq.MaxRetry(10),
		asynq.Timeout(time.Minute),
	), nil
}
