package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("owner").Valid())
	assert.Equal(t, RoleDeveloper, DefaultRole)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.com "))
}

func TestProfileOmitsPassword(t *testing.T) {
	u := &User{ID: "u1", Email: "a@x.com", Password: "$2a$hash", FirstName: "A", LastName: "B"}
	p := u.Profile()

	assert.Equal(t, "u1", p.ID)
	assert.NotNil(t, p.Skills)
	assert.Equal(t, "A B", u.FullName())
}

func TestProjectVisibility(t *testing.T) {
	owner := &User{ID: "o", Role: RoleDeveloper}
	member := &User{ID: "m", Role: RoleTester}
	stranger := &User{ID: "s", Role: RoleDesigner}
	admin := &User{ID: "a", Role: RoleAdmin}
	p := &Project{OwnerID: "o", Team: []string{"m"}}

	assert.True(t, p.VisibleTo(owner))
	assert.True(t, p.VisibleTo(member))
	assert.True(t, p.VisibleTo(admin))
	assert.False(t, p.VisibleTo(stranger))
	assert.False(t, p.VisibleTo(nil))

	p.IsPublic = true
	assert.True(t, p.VisibleTo(nil))
}

func TestProjectApplyEndDate(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	p := &Project{Status: ProjectActive, EndDate: &past}
	p.ApplyEndDate(now)
	assert.Equal(t, ProjectCompleted, p.Status)

	future := now.Add(time.Hour)
	p = &Project{Status: ProjectActive, EndDate: &future}
	p.ApplyEndDate(now)
	assert.Equal(t, ProjectActive, p.Status)
}

func TestTaskOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	assert.True(t, (&Task{Status: TaskTodo, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskCompleted, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskTodo}).IsOverdue(now))
}
