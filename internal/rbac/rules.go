package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"learner": {
		"course:view",
		"session:run",
	},
	"author": {
		"course:view",
		"course:upload",
		"course:delete",
		"session:run",
		"extract:run",
	},
	"admin": {
		"*", // everything
	},
}
