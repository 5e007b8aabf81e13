package authz

// ClaimValueTrue is the only claim value the system ever stores or checks.
const ClaimValueTrue = "true"

// Global claims, not tied to a single department.
const (
	ClaimManageAll               = "CanManageAll"
	ClaimViewCA                  = "CanViewCA"
	ClaimViewUA                  = "CanViewUA"
	ClaimManageOwnPosts          = "CanManageOwnPosts"
	ClaimManageSubordinatesPosts = "CanManageSubordinatesPosts"
	ClaimManageGuides            = "CanManageGuides"
	ClaimManageUsers             = "CanManageUsers"
)

// DepartmentPrefixes are the two-letter claim prefixes of the eight
// department sections.
var DepartmentPrefixes = []string{"Cc", "Ne", "Ci", "Op", "Pr", "Sc", "Co", "Pc"}

func CreatePostClaim(prefix string) string { return prefix + "CreatePost" }
func UpdatePostClaim(prefix string) string { return prefix + "UpdatePost" }
func DeletePostClaim(prefix string) string { return prefix + "DeletePost" }

// BuiltinClaimTypes returns every claim type defined in code: the global
// claims plus the create/update/delete triple for each department prefix.
func BuiltinClaimTypes() []string {
	claims := []string{
		ClaimManageAll,
		ClaimViewCA,
		ClaimViewUA,
		ClaimManageOwnPosts,
		ClaimManageSubordinatesPosts,
		ClaimManageGuides,
		ClaimManageUsers,
	}
	for _, prefix := range DepartmentPrefixes {
		claims = append(claims,
			CreatePostClaim(prefix),
			UpdatePostClaim(prefix),
			DeletePostClaim(prefix),
		)
	}
	return claims
}

// RoleDefinition is a role name bound to a tier and a default claim bundle.
// Assigning the role seeds the bundle; Sync re-applies it later.
type RoleDefinition struct {
	Name            string
	Tier            RoleTier
	Claims          []string
	SubordinateTier bool
}

// BuiltinRoles is the fixed role-to-claim table. Custom roles created by
// admins live in the database and extend this set.
var BuiltinRoles = []RoleDefinition{
	{
		Name:   "Administrador",
		Tier:   TierAdmin,
		Claims: []string{ClaimManageAll},
	},
	{
		Name:   "Gerente CA",
		Tier:   TierAdministrativeCenter,
		Claims: []string{ClaimViewCA, ClaimManageSubordinatesPosts, ClaimManageOwnPosts},
	},
	{
		Name:   "Gerente UA",
		Tier:   TierBranch,
		Claims: []string{ClaimViewUA, ClaimManageSubordinatesPosts, ClaimManageOwnPosts},
	},
	{
		Name:            "Colaborador CA",
		Tier:            TierAdministrativeCenter,
		Claims:          []string{ClaimViewCA, ClaimManageOwnPosts},
		SubordinateTier: true,
	},
	{
		Name:            "Colaborador UA",
		Tier:            TierBranch,
		Claims:          []string{ClaimViewUA, ClaimManageOwnPosts},
		SubordinateTier: true,
	},
}

// BuiltinRole looks up a fixed role definition by name.
func BuiltinRole(name string) (RoleDefinition, bool) {
	for _, def := range BuiltinRoles {
		if def.Name == name {
			return def, true
		}
	}
	return RoleDefinition{}, false
}

// IsSubordinateTierRole reports whether any of the given role names marks
// the holder as a subordinate. Collaborator supervisor references are only
// kept while this holds.
func IsSubordinateTierRole(roleNames []string) bool {
	for _, name := range roleNames {
		if def, ok := BuiltinRole(name); ok && def.SubordinateTier {
			return true
		}
	}
	return false
}
