package seeder

import (
	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/academicyears"
	"Backend-Feedback/src/services/forms"
	"Backend-Feedback/src/services/users"
	"context"
	"log"

	"github.com/pkg/errors"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "demo-password"

type Services struct {
	Users         *users.Service
	AcademicYears *academicyears.Service
	Forms         *forms.Service
}

// Demo holds what SeedDemo created.
type Demo struct {
	Admin      *models.User
	Instructor *models.User
	Student    *models.User
	Year       *models.AcademicYear
	Form       *models.FormWithQuestions
}

// SeedDemo creates one account per role, an academic year and a published
// sample form. It returns (nil, nil) when the demo admin already exists.
func SeedDemo(ctx context.Context, svc Services) (*Demo, error) {
	admin, err := svc.Users.Register(ctx, models.RegisterRequest{
		FullName:    "Demo Admin",
		Email:       "admin@example.com",
		Password:    DemoPassword,
		CollegeID:   "JCER001",
		AccountType: models.RoleAdmin,
		Department:  models.DepartmentALL,
	})
	if apperror.Is(err, apperror.KindConflict) {
		log.Println("⚠️ [seeder] demo data already present, skipping")
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "seed admin")
	}

	year, err := svc.AcademicYears.Add(ctx, admin.Identity(), models.AddAcademicYearRequest{Year: "2024-25"})
	if err != nil {
		return nil, errors.Wrap(err, "seed academic year")
	}

	instructor, err := svc.Users.Register(ctx, models.RegisterRequest{
		FullName:    "Demo Instructor",
		Email:       "instructor@example.com",
		Password:    DemoPassword,
		CollegeID:   "INSTCS001",
		AccountType: models.RoleInstructor,
		Department:  models.DepartmentCSE,
	})
	if err != nil {
		return nil, errors.Wrap(err, "seed instructor")
	}

	student, err := svc.Users.Register(ctx, models.RegisterRequest{
		FullName:     "Demo Student",
		Email:        "student@example.com",
		Password:     DemoPassword,
		CollegeID:    "2JR21CS001",
		AccountType:  models.RoleStudent,
		Department:   models.DepartmentCSE,
		AcademicYear: year.ID.Hex(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "seed student")
	}

	// แบบฟอร์มตัวอย่าง
	form, err := svc.Forms.CreateForm(ctx, instructor.Identity(), models.CreateFormRequest{
		Title:        "Course Feedback",
		Description:  "Please share your feedback about the course and the instructor",
		Department:   models.DepartmentCSE,
		AcademicYear: year.ID.Hex(),
		Questions: []models.QuestionRequest{
			{Question: "How would you rate the course difficulty?", Options: []string{"Very Easy", "Easy", "Moderate", "Difficult", "Very Difficult"}},
			{Question: "How clear were the lectures?", Options: []string{"Excellent", "Good", "Average", "Poor"}},
			{Question: "Would you recommend this course?", Options: []string{"Yes", "No"}},
			{Question: "What could be improved?"},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "seed form")
	}
	if _, err := svc.Forms.TogglePublish(ctx, instructor.Identity(), form.ID.Hex()); err != nil {
		return nil, errors.Wrap(err, "publish seeded form")
	}
	form.IsPublished = true

	log.Printf("✅ [seeder] demo data created (form %s)", form.ID.Hex())
	return &Demo{Admin: admin, Instructor: instructor, Student: student, Year: year, Form: form}, nil
}
