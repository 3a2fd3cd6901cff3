package models

// Role is the account type a user registers under.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts only the closed set of roles.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Department codes used to scope users and forms. ALL matches every department.
type Department string

const (
	DepartmentCSE   Department = "CSE"
	DepartmentECE   Department = "ECE"
	DepartmentMECH  Department = "MECH"
	DepartmentCIVIL Department = "CIVIL"
	DepartmentAIML  Department = "AIML"
	DepartmentALL   Department = "ALL"
)

var AllDepartments = []Department{
	DepartmentCSE, DepartmentECE, DepartmentMECH, DepartmentCIVIL, DepartmentAIML, DepartmentALL,
}

func (d Department) Valid() bool {
	for _, known := range AllDepartments {
		if d == known {
			return true
		}
	}
	return false
}

// --- capabilities ---

func CanCreateForm(r Role) bool { return r == RoleInstructor }

func CanListOwnForms(r Role) bool { return r == RoleInstructor || r == RoleAdmin }

func CanListAllForms(r Role) bool { return r == RoleAdmin }

// CanEditForm covers title/description edits, question edits and deletion.
func CanEditForm(r Role, isOwner bool) bool {
	return r == RoleAdmin || (r == RoleInstructor && isOwner)
}

func CanPublishForm(r Role, isOwner bool) bool {
	return r == RoleAdmin || (r == RoleInstructor && isOwner)
}

func CanViewResults(r Role, isOwner bool) bool {
	return r == RoleAdmin || (r == RoleInstructor && isOwner)
}

func CanSubmitFeedback(r Role) bool { return r == RoleStudent }

func CanBrowseScopedForms(r Role) bool { return r == RoleStudent }

func CanManageAcademicYears(r Role) bool { return r == RoleAdmin }

func CanDeleteAcademicYear(r Role, isCreator bool) bool {
	return r == RoleAdmin || isCreator
}

func CanEditImageFeedback(isOwner bool) bool { return isOwner }

func CanDeleteImageFeedback(r Role, isOwner bool) bool {
	return r == RoleAdmin || isOwner
}

func CanModerateImageFeedback(r Role) bool { return r == RoleAdmin }
