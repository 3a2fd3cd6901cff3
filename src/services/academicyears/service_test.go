package academicyears_test

import (
	"context"
	"testing"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/academicyears"
	"Backend-Feedback/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddAndList(t *testing.T) {
	f := test.NewFixture(t)
	svc := academicyears.NewService(f.Store)
	ctx := context.Background()

	year, err := svc.Add(ctx, f.Admin, models.AddAcademicYearRequest{Year: " 2025-26 "})
	require.NoError(t, err)
	assert.Equal(t, "2025-26", year.Year)
	assert.Equal(t, f.Admin.UserID, year.CreatedBy)

	_, err = svc.Add(ctx, f.Admin, models.AddAcademicYearRequest{Year: "2025-26"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Add(ctx, f.Admin, models.AddAcademicYearRequest{Year: "  "})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Add(ctx, f.Instructor, models.AddAcademicYearRequest{Year: "2026-27"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	years, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, "2025-26", years[0].Year)
}

func TestDelete(t *testing.T) {
	f := test.NewFixture(t)
	svc := academicyears.NewService(f.Store)
	ctx := context.Background()

	spare, err := svc.Add(ctx, f.Admin, models.AddAcademicYearRequest{Year: "2030-31"})
	require.NoError(t, err)

	err = svc.Delete(ctx, f.Instructor, spare.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	require.NoError(t, svc.Delete(ctx, f.Admin, spare.ID.Hex()))
	err = svc.Delete(ctx, f.Admin, spare.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// the fixture student belongs to the seeded year
	err = svc.Delete(ctx, f.Admin, f.Year.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	err = svc.Delete(ctx, f.Admin, "bogus")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	err = svc.Delete(ctx, f.Admin, primitive.NewObjectID().Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteRefusedWhileFormsReferenceYear(t *testing.T) {
	f := test.NewFixture(t)
	svc := academicyears.NewService(f.Store)
	ctx := context.Background()

	year, err := svc.Add(ctx, f.Admin, models.AddAcademicYearRequest{Year: "2031-32"})
	require.NoError(t, err)
	form, _ := f.SeedForm(t, f.Instructor, models.DepartmentCSE, false, test.Question("Q"))
	form.AcademicYear = year.ID
	require.NoError(t, f.Store.Forms.Delete(ctx, form.ID))
	require.NoError(t, f.Store.Forms.Insert(ctx, form))

	err = svc.Delete(ctx, f.Admin, year.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}
