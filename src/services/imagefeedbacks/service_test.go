package imagefeedbacks_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/jobs"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/imagefeedbacks"
	"Backend-Feedback/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	args := m.Called(name, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, url string) (bool, error) {
	args := m.Called(url)
	return args.Bool(0), args.Error(1)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, task *asynq.Task) error {
	return m.Called(task.Type(), string(task.Payload())).Error(0)
}

func pngUpload(t *testing.T, name string, w, h int) models.ImageUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.ImageUpload{Filename: name, ContentType: "image/png", Data: buf.Bytes()}
}

func inImageFolder(name string) bool {
	return strings.HasPrefix(name, "image-feedbacks/")
}

func newService(f *test.Fixture) (*imagefeedbacks.Service, *MockBlobStore, *MockEnqueuer) {
	blobs := &MockBlobStore{}
	enq := &MockEnqueuer{}
	return imagefeedbacks.NewService(f.Store, blobs, enq, 1600), blobs, enq
}

var createReq = models.CreateImageFeedbackRequest{Title: "Broken bench", Description: "Lab 3, second row"}

func TestCreateNormalizesAndStores(t *testing.T) {
	f := test.NewFixture(t)
	svc, blobs, enq := newService(f)
	ctx := context.Background()

	blobs.On("Store", mock.MatchedBy(inImageFolder), "image/jpeg", mock.Anything).
		Run(func(args mock.Arguments) {
			name := args.String(0)
			assert.True(t, strings.HasSuffix(name, ".jpg"), name)
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(args.Get(2).([]byte)))
			require.NoError(t, err)
			assert.LessOrEqual(t, cfg.Width, 1600)
			assert.LessOrEqual(t, cfg.Height, 1600)
		}).
		Return("https://cdn.test/a.jpg", nil).Once()
	blobs.On("Store", mock.Anything, "image/jpeg", mock.Anything).
		Return("https://cdn.test/b.jpg", nil).Once()

	fb, err := svc.Create(ctx, f.Student, createReq, []models.ImageUpload{
		pngUpload(t, "wide.png", 3200, 40),
		pngUpload(t, "small.png", 20, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, fb.ImageURLs)
	assert.Equal(t, models.ModerationPending, fb.Status)
	assert.Equal(t, f.Student.UserID, fb.UserID)

	stored, err := svc.Get(ctx, f.Admin, fb.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, fb.ImageURLs, stored.ImageURLs)
	blobs.AssertExpectations(t)
	enq.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestCreateRejectsBadInputBeforeUploading(t *testing.T) {
	f := test.NewFixture(t)
	svc, blobs, _ := newService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.Student, createReq, nil)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, f.Student, createReq, []models.ImageUpload{
		{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, f.Student, models.CreateImageFeedbackRequest{Title: " ", Description: "x"},
		[]models.ImageUpload{pngUpload(t, "a.png", 4, 4)})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	many := make([]models.ImageUpload, imagefeedbacks.MaxImagesPerFeedback+1)
	for i := range many {
		many[i] = pngUpload(t, "a.png", 4, 4)
	}
	_, err = svc.Create(ctx, f.Student, createReq, many)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	blobs.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRemovesUploadedBlobsOnFailure(t *testing.T) {
	f := test.NewFixture(t)
	svc, blobs, _ := newService(f)

	blobs.On("Store", mock.Anything, "image/jpeg", mock.Anything).Return("https://cdn.test/a.jpg", nil).Once()
	blobs.On("Store", mock.Anything, "image/jpeg", mock.Anything).Return("", errors.New("bucket unavailable")).Once()
	blobs.On("Delete", "https://cdn.test/a.jpg").Return(true, nil).Once()

	_, err := svc.Create(context.Background(), f.Student, createReq, []models.ImageUpload{
		pngUpload(t, "a.png", 8, 8), pngUpload(t, "b.png", 8, 8),
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindDependency))
	blobs.AssertExpectations(t)

	mine, err := svc.ListMine(context.Background(), f.Student, models.PaginationParams{})
	require.NoError(t, err)
	assert.Zero(t, mine.Total)
}

func seed(t *testing.T, f *test.Fixture, urls ...string) *models.ImageFeedback {
	t.Helper()
	fb := &models.ImageFeedback{
		Title:       "Leaky roof",
		Description: "Library entrance",
		ImageURLs:   urls,
		UserID:      f.Student.UserID,
		Status:      models.ModerationApproved,
	}
	require.NoError(t, f.Store.ImageFeedbacks.Insert(context.Background(), fb))
	return fb
}

func TestEditReplacesImagesAfterSaving(t *testing.T) {
	f := test.NewFixture(t)
	svc, blobs, _ := newService(f)
	ctx := context.Background()
	fb := seed(t, f, "https://cdn.test/old.jpg")

	blobs.On("Store", mock.Anything, "image/jpeg", mock.Anything).Return("https://cdn.test/new.jpg", nil).Once()
	blobs.On("Delete", "https://cdn.test/old.jpg").Return(true, nil).Once()

	title := " Leaky roof (fixed?) "
	updated, err := svc.Edit(ctx, f.Student, fb.ID.Hex(), models.EditImageFeedbackRequest{Title: &title},
		[]models.ImageUpload{pngUpload(t, "new.png", 10, 10)})
	require.NoError(t, err)
	assert.Equal(t, "Leaky roof (fixed?)", updated.Title)
	assert.Equal(t, []string{"https://cdn.test/new.jpg"}, updated.ImageURLs)
	assert.Equal(t, models.ModerationPending, updated.Status)
	blobs.AssertExpectations(t)

	_, err = svc.Edit(ctx, f.Admin, fb.ID.Hex(), models.EditImageFeedbackRequest{Title: &title}, nil)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.Edit(ctx, f.Student, fb.ID.Hex(), models.EditImageFeedbackRequest{}, nil)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDeleteImage(t *testing.T) {
	f := test.NewFixture(t)
	svc, blobs, _ := newService(f)
	ctx := context.Background()
	fb := seed(t, f, "https://cdn.test/1.jpg", "https://cdn.test/2.jpg")

	blobs.On("Delete", "https://cdn.test/1.jpg").Return(true, nil).Once()

	updated, err := svc.DeleteImage(ctx, f.Student, fb.ID.Hex(), "https://cdn.test/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/2.jpg"}, updated.ImageURLs)

	_, err = svc.DeleteImage(ctx, f.Student, fb.ID.Hex(), "https://cdn.test/2.jpg")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.DeleteImage(ctx, f.Student, fb.ID.Hex(), "https://cdn.test/unknown.jpg")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	blobs.AssertExpectations(t)
}

func TestDeleteSchedulesFailedBlobDeletes(t *testing.T) {
	f := test.NewFixture(t)
	svc, blobs, enq := newService(f)
	ctx := context.Background()
	fb := seed(t, f, "https://cdn.test/1.jpg", "https://cdn.test/2.jpg")

	blobs.On("Delete", "https://cdn.test/1.jpg").Return(true, nil).Once()
	blobs.On("Delete", "https://cdn.test/2.jpg").Return(false, errors.New("timeout")).Once()
	enq.On("Enqueue", jobs.TypeDeleteBlob, `{"url":"https://cdn.test/2.jpg"}`).Return(nil).Once()

	err := svc.Delete(ctx, f.OtherInstructor, fb.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	require.NoError(t, svc.Delete(ctx, f.Student, fb.ID.Hex()))
	_, err = svc.Get(ctx, f.Student, fb.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	blobs.AssertExpectations(t)
	enq.AssertExpectations(t)
}

func TestModerationAndListing(t *testing.T) {
	f := test.NewFixture(t)
	svc, _, _ := newService(f)
	ctx := context.Background()
	first := seed(t, f, "https://cdn.test/1.jpg")
	seed(t, f, "https://cdn.test/2.jpg")

	_, err := svc.Moderate(ctx, f.Student, first.ID.Hex(), models.ModerateImageFeedbackRequest{Status: models.ModerationRejected})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.Moderate(ctx, f.Admin, first.ID.Hex(), models.ModerateImageFeedbackRequest{Status: "deleted"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	moderated, err := svc.Moderate(ctx, f.Admin, first.ID.Hex(), models.ModerateImageFeedbackRequest{Status: models.ModerationRejected})
	require.NoError(t, err)
	assert.Equal(t, models.ModerationRejected, moderated.Status)

	rejected, err := svc.ListAll(ctx, f.Admin, models.ModerationRejected, models.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rejected.Total)

	all, err := svc.ListAll(ctx, f.Admin, "", models.PaginationParams{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 2, all.TotalPages)

	_, err = svc.ListAll(ctx, f.Student, "", models.PaginationParams{})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	mine, err := svc.ListMine(ctx, f.Student, models.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)
}
