package rbac

// Capability identifies one guarded operation. The set is closed: handlers
// reference these constants, never free-form strings.
type Capability string

const (
	CapGroupView    Capability = "GROUP_VIEW"
	CapGroupAdd     Capability = "GROUP_ADD"
	CapGroupEdit    Capability = "GROUP_EDIT"
	CapGroupDisable Capability = "GROUP_DISABLE"
	CapGroupEnable  Capability = "GROUP_ENABLE"
	CapGroupDel     Capability = "GROUP_DEL"

	CapPermissionView    Capability = "PERMISSION_VIEW"
	CapPermissionAdd     Capability = "PERMISSION_ADD"
	CapPermissionEdit    Capability = "PERMISSION_EDIT"
	CapPermissionDisable Capability = "PERMISSION_DISABLE"
	CapPermissionEnable  Capability = "PERMISSION_ENABLE"
	CapPermissionDel     Capability = "PERMISSION_DEL"
)

// All lists every capability, in a stable order. Used when seeding the
// default admin.
func All() []Capability {
	return []Capability{
		CapGroupView, CapGroupAdd, CapGroupEdit,
		CapGroupDisable, CapGroupEnable, CapGroupDel,
		CapPermissionView, CapPermissionAdd, CapPermissionEdit,
		CapPermissionDisable, CapPermissionEnable, CapPermissionDel,
	}
}
