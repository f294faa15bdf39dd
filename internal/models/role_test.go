package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		parsed, err := ParseRole(string(role))
		assert.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	for _, invalid := range []string{"", "superuser", "Admin", "ADMIN", "viewer "} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}
