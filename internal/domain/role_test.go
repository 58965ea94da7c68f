package domain_test

import (
	"testing"

	"go-leavehub/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowed(t *testing.T) {
	assert.True(t, domain.IsAllowed(domain.RoleAdmin, domain.RoleManager, domain.RoleAdmin))
	assert.True(t, domain.IsAllowed(domain.RoleManager, domain.RoleManager, domain.RoleAdmin))
	assert.False(t, domain.IsAllowed(domain.RoleEmployee, domain.RoleManager, domain.RoleAdmin))
	assert.False(t, domain.IsAllowed("", domain.RoleManager))
	assert.False(t, domain.IsAllowed(domain.RoleAdmin))
}

func TestPrivileged(t *testing.T) {
	assert.True(t, domain.Privileged(domain.RoleAdmin))
	assert.True(t, domain.Privileged(domain.RoleManager))
	assert.False(t, domain.Privileged(domain.RoleEmployee))
	assert.False(t, domain.Privileged("superuser"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, domain.ValidRole(domain.RoleEmployee))
	assert.False(t, domain.ValidRole("EMPLOYEE"))
	assert.False(t, domain.ValidRole(""))
}
