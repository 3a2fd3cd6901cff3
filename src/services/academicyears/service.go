package academicyears

import (
	"context"
	"log"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/utils"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Add(ctx context.Context, identity models.Identity, req models.AddAcademicYearRequest) (*models.AcademicYear, error) {
	if !models.CanManageAcademicYears(identity.Role) {
		return nil, apperror.Forbidden("only admins can add academic years")
	}
	req.Year = strings.TrimSpace(req.Year)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	year := &models.AcademicYear{
		Year:      req.Year,
		CreatedBy: identity.UserID,
		CreatedAt: utils.Now(),
	}
	if err := s.store.AcademicYears.Insert(ctx, year); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperror.Conflict("academic year already exists")
		}
		return nil, utils.StoreError(err, "academic year not found")
	}
	log.Printf("[academic-year] added %s id=%s", year.Year, year.ID.Hex())
	return year, nil
}

func (s *Service) List(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.store.AcademicYears.List(ctx)
	if err != nil {
		return nil, utils.StoreError(err, "academic year not found")
	}
	return years, nil
}

// Delete refuses while any form or user still points at the year.
func (s *Service) Delete(ctx context.Context, identity models.Identity, id string) error {
	yearID, err := utils.ParseObjectID("academicYearId", id)
	if err != nil {
		return err
	}
	year, err := s.store.AcademicYears.FindByID(ctx, yearID)
	if err != nil {
		return utils.StoreError(err, "academic year not found")
	}
	if !models.CanDeleteAcademicYear(identity.Role, identity.Owns(year.CreatedBy)) {
		return apperror.Forbidden("only the creator or an admin can delete this academic year")
	}

	var forms, users int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forms, err = s.store.Forms.CountByAcademicYear(gctx, yearID)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.store.Users.CountByAcademicYear(gctx, yearID)
		return err
	})
	if err := g.Wait(); err != nil {
		return utils.StoreError(err, "academic year not found")
	}
	if forms > 0 || users > 0 {
		return apperror.Conflict("academic year is still referenced by forms or users")
	}

	if err := s.store.AcademicYears.Delete(ctx, yearID); err != nil {
		return utils.StoreError(err, "academic year not found")
	}
	log.Printf("[academic-year] deleted id=%s", yearID.Hex())
	return nil
}
