package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed permissions.yml
var permissionsYAML []byte

// permissionsByRole is the static role -> permission table. Permission order
// within a role is stable and follows the source file.
var permissionsByRole map[Role][]string

func init() {
	raw := map[string][]string{}
	if err := yaml.Unmarshal(permissionsYAML, &raw); err != nil {
		panic(fmt.Sprintf("invalid embedded permission table: %v", err))
	}

	permissionsByRole = make(map[Role][]string, len(raw))
	for token, perms := range raw {
		role, err := ParseRole(token)
		if err != nil {
			panic(fmt.Sprintf("invalid role in embedded permission table: %v", err))
		}
		permissionsByRole[role] = perms
	}

	for _, role := range Roles {
		if _, ok := permissionsByRole[role]; !ok {
			panic(fmt.Sprintf("embedded permission table missing role %q", role))
		}
	}
}

// PermissionsForRole returns the ordered permission set for a role.
// The returned slice is a copy; callers may keep or mutate it.
func PermissionsForRole(role Role) []string {
	perms := permissionsByRole[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
