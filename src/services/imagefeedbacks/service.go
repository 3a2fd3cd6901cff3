package imagefeedbacks

import (
	"context"
	"fmt"
	"log"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/blobstore"
	"Backend-Feedback/src/jobs"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/services/saga"
	"Backend-Feedback/src/utils"
)

const blobFolder = "image-feedbacks"

type Service struct {
	store        *repository.Store
	blobs        blobstore.Store
	enqueuer     jobs.Enqueuer
	maxDimension int
}

func NewService(store *repository.Store, blobs blobstore.Store, enqueuer jobs.Enqueuer, maxDimension int) *Service {
	return &Service{store: store, blobs: blobs, enqueuer: enqueuer, maxDimension: maxDimension}
}

func (s *Service) load(ctx context.Context, id string) (*models.ImageFeedback, error) {
	oid, err := utils.ParseObjectID("imageFeedbackId", id)
	if err != nil {
		return nil, err
	}
	fb, err := s.store.ImageFeedbacks.FindByID(ctx, oid)
	if err != nil {
		return nil, utils.StoreError(err, "image feedback not found")
	}
	return fb, nil
}

// prepare validates and re-encodes every upload before anything is stored.
func (s *Service) prepare(uploads []models.ImageUpload) ([]models.ImageUpload, error) {
	if len(uploads) > MaxImagesPerFeedback {
		return nil, apperror.Validation("too many images", fmt.Sprintf("at most %d images are allowed", MaxImagesPerFeedback))
	}
	out := make([]models.ImageUpload, 0, len(uploads))
	for _, up := range uploads {
		normalized, err := normalizeImage(up, s.maxDimension)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

// uploadStep stores every image; its compensation removes whatever was stored.
func (s *Service) uploadStep(images []models.ImageUpload, urls *[]string) saga.Step {
	return saga.Step{
		Name: "upload images",
		Run: func(ctx context.Context) error {
			for _, img := range images {
				url, err := s.blobs.Store(ctx, blobstore.NewObjectName(blobFolder, img.Filename), img.ContentType, img.Data)
				if err != nil {
					return apperror.Dependency("failed to upload image", err)
				}
				*urls = append(*urls, url)
			}
			return nil
		},
		Compensate: func(ctx context.Context) error {
			s.removeBlobs(ctx, *urls)
			return nil
		},
	}
}

// removeBlobs deletes blobs whose record is already gone or updated. A
// failure is handed to the blob:delete task instead of the caller.
func (s *Service) removeBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		_, err := s.blobs.Delete(ctx, url)
		if err == nil {
			continue
		}
		log.Printf("⚠️ [image-feedback] blob delete failed, scheduling retry url=%s: %v", url, err)
		task, err := jobs.NewDeleteBlobTask(url)
		if err == nil {
			err = s.enqueuer.Enqueue(ctx, task)
		}
		if err != nil {
			log.Printf("❌ [image-feedback] could not schedule blob delete url=%s: %v", url, err)
		}
	}
}

func (s *Service) Create(ctx context.Context, identity models.Identity, req models.CreateImageFeedbackRequest, uploads []models.ImageUpload) (*models.ImageFeedback, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperror.Validation("at least one image is required", "images is required")
	}
	images, err := s.prepare(uploads)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	fb := &models.ImageFeedback{
		Title:       req.Title,
		Description: req.Description,
		UserID:      identity.UserID,
		Status:      models.ModerationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var urls []string
	err = saga.New("create image feedback").
		Add(s.uploadStep(images, &urls)).
		Add(saga.Step{
			Name: "insert record",
			Run: func(ctx context.Context) error {
				fb.ImageURLs = urls
				return s.store.ImageFeedbacks.Insert(ctx, fb)
			},
		}).
		Execute(ctx)
	if err != nil {
		log.Printf("[image-feedback] create failed user=%s: %v", identity.UserID.Hex(), err)
		return nil, utils.StoreError(err, "image feedback not found")
	}

	log.Printf("[image-feedback] created id=%s images=%d", fb.ID.Hex(), len(fb.ImageURLs))
	return fb, nil
}

// Edit changes title and description. New images, when given, replace the old
// set: they are uploaded first and the old blobs go only after the record is
// saved. Edited content goes back to pending moderation.
func (s *Service) Edit(ctx context.Context, identity models.Identity, id string, req models.EditImageFeedbackRequest, uploads []models.ImageUpload) (*models.ImageFeedback, error) {
	fb, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanEditImageFeedback(identity.Owns(fb.UserID)) {
		return nil, apperror.Forbidden("only the owner can edit this image feedback")
	}
	if req.Title == nil && req.Description == nil && len(uploads) == 0 {
		return nil, apperror.Validation("nothing to update", "title, description or images is required")
	}

	updated := *fb
	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
		if updated.Title == "" {
			return nil, apperror.Validation("title cannot be blank", "title cannot be blank")
		}
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
		if updated.Description == "" {
			return nil, apperror.Validation("description cannot be blank", "description cannot be blank")
		}
	}
	images, err := s.prepare(uploads)
	if err != nil {
		return nil, err
	}

	var urls []string
	steps := saga.New("edit image feedback")
	if len(images) > 0 {
		steps.Add(s.uploadStep(images, &urls))
	}
	steps.Add(saga.Step{
		Name: "replace record",
		Run: func(ctx context.Context) error {
			if len(images) > 0 {
				updated.ImageURLs = urls
			}
			updated.Status = models.ModerationPending
			updated.UpdatedAt = utils.Now()
			return s.store.ImageFeedbacks.Replace(ctx, &updated)
		},
	})
	if err := steps.Execute(ctx); err != nil {
		log.Printf("[image-feedback] edit failed id=%s: %v", fb.ID.Hex(), err)
		return nil, utils.StoreError(err, "image feedback not found")
	}

	if len(images) > 0 {
		s.removeBlobs(context.WithoutCancel(ctx), fb.ImageURLs)
	}
	log.Printf("[image-feedback] edited id=%s", fb.ID.Hex())
	return &updated, nil
}

// DeleteImage removes one image. The last image cannot be removed; delete the
// whole feedback instead.
func (s *Service) DeleteImage(ctx context.Context, identity models.Identity, id, url string) (*models.ImageFeedback, error) {
	fb, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanEditImageFeedback(identity.Owns(fb.UserID)) {
		return nil, apperror.Forbidden("only the owner can edit this image feedback")
	}
	if strings.TrimSpace(url) == "" {
		return nil, apperror.Validation("image url is required", "url is required")
	}

	remaining := make([]string, 0, len(fb.ImageURLs))
	found := false
	for _, u := range fb.ImageURLs {
		if u == url {
			found = true
			continue
		}
		remaining = append(remaining, u)
	}
	if !found {
		return nil, apperror.NotFound("image not found on this feedback")
	}
	if len(remaining) == 0 {
		return nil, apperror.Validation("cannot remove the last image", "at least one image must remain")
	}

	updated := *fb
	updated.ImageURLs = remaining
	updated.UpdatedAt = utils.Now()
	if err := s.store.ImageFeedbacks.Replace(ctx, &updated); err != nil {
		return nil, utils.StoreError(err, "image feedback not found")
	}
	s.removeBlobs(context.WithoutCancel(ctx), []string{url})

	log.Printf("[image-feedback] removed image id=%s left=%d", fb.ID.Hex(), len(remaining))
	return &updated, nil
}

// Delete removes the record first and then its blobs.
func (s *Service) Delete(ctx context.Context, identity models.Identity, id string) error {
	fb, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanDeleteImageFeedback(identity.Role, identity.Owns(fb.UserID)) {
		return apperror.Forbidden("only the owner or an admin can delete this image feedback")
	}
	if err := s.store.ImageFeedbacks.Delete(ctx, fb.ID); err != nil {
		return utils.StoreError(err, "image feedback not found")
	}
	s.removeBlobs(context.WithoutCancel(ctx), fb.ImageURLs)

	log.Printf("[image-feedback] deleted id=%s", fb.ID.Hex())
	return nil
}

func (s *Service) Get(ctx context.Context, identity models.Identity, id string) (*models.ImageFeedback, error) {
	return s.load(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, identity models.Identity, page models.PaginationParams) (*models.PaginatedResponse, error) {
	page = page.Normalize()
	items, total, err := s.store.ImageFeedbacks.ListByUser(ctx, identity.UserID, page)
	if err != nil {
		return nil, utils.StoreError(err, "image feedback not found")
	}
	return models.NewPaginatedResponse(items, total, page), nil
}

// ListAll is the admin moderation view; an empty status lists everything.
func (s *Service) ListAll(ctx context.Context, identity models.Identity, status models.ModerationStatus, page models.PaginationParams) (*models.PaginatedResponse, error) {
	if !models.CanModerateImageFeedback(identity.Role) {
		return nil, apperror.Forbidden("only admins can list all image feedback")
	}
	switch status {
	case "", models.ModerationPending, models.ModerationApproved, models.ModerationRejected:
	default:
		return nil, apperror.Validation("invalid status", "status must be one of pending, approved, rejected")
	}
	page = page.Normalize()
	items, total, err := s.store.ImageFeedbacks.List(ctx, status, page)
	if err != nil {
		return nil, utils.StoreError(err, "image feedback not found")
	}
	return models.NewPaginatedResponse(items, total, page), nil
}

func (s *Service) Moderate(ctx context.Context, identity models.Identity, id string, req models.ModerateImageFeedbackRequest) (*models.ImageFeedback, error) {
	if !models.CanModerateImageFeedback(identity.Role) {
		return nil, apperror.Forbidden("only admins can moderate image feedback")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	fb, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	fb.Status = req.Status
	fb.UpdatedAt = utils.Now()
	if err := s.store.ImageFeedbacks.Replace(ctx, fb); err != nil {
		return nil, utils.StoreError(err, "image feedback not found")
	}
	log.Printf("[image-feedback] moderated id=%s status=%s", fb.ID.Hex(), fb.Status)
	return fb, nil
}
