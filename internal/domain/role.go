package domain

// Role is an account's access level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleViewer:
		return true
	}
	return false
}

// Action is a capability a role may hold. Using a dedicated type keeps
// permission checks on the constants below instead of loose strings.
type Action string

const (
	ActionAddStudent       Action = "add_student"
	ActionRecordAttendance Action = "record_attendance"
	ActionMarkGraduated    Action = "mark_graduated"
	ActionArchiveStudent   Action = "archive_student"
	ActionExportReports    Action = "export_reports"
	ActionViewReports      Action = "view_reports"

	// ActionManageAccounts is enforced by an admin identity check, not the
	// capability table. It exists so permission-denied errors can name it.
	ActionManageAccounts Action = "manage_accounts"
)

// rolePermissions is the static role to capability-set table.
var rolePermissions = map[Role]map[Action]struct{}{
	RoleAdmin: permissionSet(
		ActionAddStudent,
		ActionRecordAttendance,
		ActionMarkGraduated,
		ActionArchiveStudent,
		ActionExportReports,
		ActionViewReports,
		ActionManageAccounts,
	),
	RoleStaff: permissionSet(
		ActionAddStudent,
		ActionRecordAttendance,
		ActionMarkGraduated,
		ActionExportReports,
		ActionViewReports,
	),
	RoleViewer: permissionSet(
		ActionExportReports,
		ActionViewReports,
	),
}

func permissionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Allows reports whether the role holds the given capability. Unknown roles
// hold nothing.
func (r Role) Allows(a Action) bool {
	_, ok := rolePermissions[r][a]
	return ok
}
