package utils

import (
	"reflect"
	"regexp"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag   = "notblank"
	departmentTag = "department"
	roleTag       = "role"
	collegeIDTag  = "collegeid"

	collegeIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^2JR21(EC|CS|ME|CV|AI)\d{3}$`),
		regexp.MustCompile(`^JCER\d{3}$`),
		regexp.MustCompile(`^INST(EC|CS|ME|CV|AI)\d{3}$`),
	}
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// ใช้ชื่อจาก json tag ในข้อความ error
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = Validate.RegisterValidation(departmentTag, departmentValidation)
	_ = Validate.RegisterValidation(roleTag, roleValidation)
	_ = Validate.RegisterValidation(collegeIDTag, collegeIDValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, departmentTag, roleTag, collegeIDTag} {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustomValidationErrs)
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case departmentTag:
		return fe.Field() + " must be one of CSE, ECE, MECH, CIVIL, AIML, ALL"
	case roleTag:
		return fe.Field() + " must be one of student, instructor, admin"
	case collegeIDTag:
		return fe.Field() + " is not a valid college id"
	default:
		return fe.Field() + " is invalid"
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func departmentValidation(fl validator.FieldLevel) bool {
	return models.Department(fl.Field().String()).Valid()
}

func roleValidation(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func collegeIDValidation(fl validator.FieldLevel) bool {
	return ValidCollegeID(fl.Field().String())
}

// ValidCollegeID matches the student, staff and instructor id formats.
func ValidCollegeID(id string) bool {
	for _, re := range collegeIDPatterns {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}

// ValidateStruct runs the struct tags and returns an apperror.Validation
// carrying one translated message per failing field.
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Validation(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Translate(Translator))
	}
	return apperror.Validation("validation failed", fields...)
}
