package model

// Role is one of the fixed department roles. The set is closed: new roles are
// added here, never created at runtime.
type Role string

const (
	RoleDepartmentHead     Role = "department_head"
	RoleCommitteeMember    Role = "committee_member"
	RoleTrainer            Role = "trainer"
	RoleScheduleSupervisor Role = "schedule_supervisor"
	RoleTraineeSupervisor  Role = "trainee_supervisor"
	RoleQualityCommittee   Role = "quality_committee"
	RoleAcademicGuidance   Role = "academic_guidance"
	RoleTalentCommittee    Role = "talent_committee"
	RoleSafetyCommittee    Role = "safety_committee"
)

// AllRoles lists every assignable role.
var AllRoles = []Role{
	RoleDepartmentHead,
	RoleCommitteeMember,
	RoleTrainer,
	RoleScheduleSupervisor,
	RoleTraineeSupervisor,
	RoleQualityCommittee,
	RoleAcademicGuidance,
	RoleTalentCommittee,
	RoleSafetyCommittee,
}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Permission is an atomic capability checked on every protected operation.
type Permission string

const (
	PermManageUsers           Permission = "manage_users"
	PermViewUsers             Permission = "view_users"
	PermGenerateReports       Permission = "generate_reports"
	PermViewReports           Permission = "view_reports"
	PermManageInitiatives     Permission = "manage_initiatives"
	PermViewInitiatives       Permission = "view_initiatives"
	PermManageTraineeBehavior Permission = "manage_trainee_behavior"
	PermViewTraineeBehavior   Permission = "view_trainee_behavior"
	PermManageQuality         Permission = "manage_quality"
	PermViewQuality           Permission = "view_quality"
	PermManageSchedules       Permission = "manage_schedules"
	PermViewSchedules         Permission = "view_schedules"
	PermManageTrainees        Permission = "manage_trainees"
	PermViewTrainees          Permission = "view_trainees"
	PermManageSurveys         Permission = "manage_surveys"
	PermViewSurveys           Permission = "view_surveys"
)

// AllPermissions lists every permission in the system.
var AllPermissions = []Permission{
	PermManageUsers, PermViewUsers,
	PermGenerateReports, PermViewReports,
	PermManageInitiatives, PermViewInitiatives,
	PermManageTraineeBehavior, PermViewTraineeBehavior,
	PermManageQuality, PermViewQuality,
	PermManageSchedules, PermViewSchedules,
	PermManageTrainees, PermViewTrainees,
	PermManageSurveys, PermViewSurveys,
}

func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

func (p Permission) String() string { return string(p) }

// DefaultRolePermissions is the seeded role → permission table. The department
// head holds every permission; the remaining roles get the subset matching
// their responsibility area. Roles missing from the map seed nothing and gain
// access only through direct grants.
var DefaultRolePermissions = map[Role][]Permission{
	RoleDepartmentHead: AllPermissions,
	RoleQualityCommittee: {
		PermViewQuality,
		PermGenerateReports,
		PermViewReports,
		PermViewTrainees,
		PermViewSurveys,
	},
	RoleAcademicGuidance: {
		PermManageTraineeBehavior,
		PermViewTraineeBehavior,
		PermManageTrainees,
		PermViewTrainees,
		PermViewReports,
	},
	RoleTalentCommittee: {
		PermViewTrainees,
		PermManageInitiatives,
		PermViewInitiatives,
		PermViewReports,
	},
	RoleTrainer: {
		PermViewTrainees,
		PermManageTraineeBehavior,
		PermViewTraineeBehavior,
		PermViewSchedules,
		PermViewSurveys,
	},
	RoleScheduleSupervisor: {
		PermManageSchedules,
		PermViewSchedules,
		PermViewTrainees,
		PermViewReports,
	},
	RoleTraineeSupervisor: {
		PermManageTrainees,
		PermViewTrainees,
		PermManageTraineeBehavior,
		PermViewTraineeBehavior,
		PermViewReports,
	},
}
