package blobstore

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// SupabaseStore talks to the Supabase storage REST API.
type SupabaseStore struct {
	ProjectURL string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

func NewSupabaseStore(projectURL, serviceKey, bucket string) (*SupabaseStore, error) {
	if projectURL == "" || serviceKey == "" {
		return nil, errors.New("SUPABASE_PROJECT_URL or SUPABASE_SERVICE_ROLE_KEY not set")
	}
	return &SupabaseStore{
		ProjectURL: strings.TrimRight(projectURL, "/"),
		ServiceKey: serviceKey,
		Bucket:     bucket,
		Timeout:    30 * time.Second,
	}, nil
}

func (s *SupabaseStore) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.ProjectURL, s.Bucket, escapePath(name))
}

func (s *SupabaseStore) publicPrefix() string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/", s.ProjectURL, s.Bucket)
}

func (s *SupabaseStore) timeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < s.Timeout {
			return left
		}
	}
	return s.Timeout
}

func (s *SupabaseStore) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	agent := fiber.Put(s.objectURL(name))
	agent.Set(fiber.HeaderAuthorization, "Bearer "+s.ServiceKey)
	agent.ContentType(contentType)
	agent.Body(data)
	agent.Timeout(s.timeout(ctx))
	if err := agent.Parse(); err != nil {
		return "", errors.Wrap(err, "build upload request")
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", errors.Wrap(errs[0], "upload blob")
	}
	if code >= http.StatusMultipleChoices {
		return "", errors.Errorf("upload failed with status %d: %s", code, string(body))
	}

	log.Printf("[blob] uploaded %s (%d bytes)", name, len(data))
	return s.publicPrefix() + escapePath(name), nil
}

func (s *SupabaseStore) Delete(ctx context.Context, rawURL string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !strings.HasPrefix(rawURL, s.publicPrefix()) {
		return false, errors.Errorf("url %q is not in bucket %s", rawURL, s.Bucket)
	}
	name, err := url.PathUnescape(strings.TrimPrefix(rawURL, s.publicPrefix()))
	if err != nil {
		return false, errors.Wrap(err, "unescape blob url")
	}

	agent := fiber.Delete(s.objectURL(name))
	agent.Set(fiber.HeaderAuthorization, "Bearer "+s.ServiceKey)
	agent.Timeout(s.timeout(ctx))
	if err := agent.Parse(); err != nil {
		return false, errors.Wrap(err, "build delete request")
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return false, errors.Wrap(errs[0], "delete blob")
	}
	switch {
	case code == http.StatusNotFound:
		return false, nil
	case code >= http.StatusMultipleChoices:
		return false, errors.Errorf("delete failed with status %d: %s", code, string(body))
	}
	return true, nil
}
