package authz

import (
	"testing"

	"github.com/google/uuid"

	"sitebuilder/internal/models"
)

func TestDecide_AssignRole(t *testing.T) {
	staff := identity(models.RoleStaff, false, true)
	super := identity(models.RoleStaff, true, true)
	usuario := identity(models.RoleUsuario, false, false)

	ordinaryUser := &models.Account{ID: uuid.New()}
	otherStaff := &models.Account{ID: uuid.New(), IsStaff: true}
	superTarget := &models.Account{ID: uuid.New(), IsSuperuser: true, IsStaff: true}

	tests := []struct {
		name   string
		id     *models.Identity
		target *models.Account
		role   string
		want   bool
	}{
		{name: "superuser assigns staff", id: super, target: ordinaryUser, role: models.RoleStaff, want: true},
		{name: "superuser changes staff", id: super, target: otherStaff, role: models.RoleUsuario, want: true},
		{name: "superuser changes self", id: super, target: &super.Account, role: models.RoleUsuario, want: true},
		{name: "staff assigns usuario", id: staff, target: ordinaryUser, role: models.RoleUsuario, want: true},
		{name: "staff assigns ingresante", id: staff, target: ordinaryUser, role: models.RoleIngresante, want: true},
		{name: "staff assigns staff", id: staff, target: ordinaryUser, role: models.RoleStaff},
		{name: "staff changes self", id: staff, target: &staff.Account, role: models.RoleUsuario},
		{name: "staff changes other staff", id: staff, target: otherStaff, role: models.RoleUsuario},
		{name: "staff changes superuser", id: staff, target: superTarget, role: models.RoleUsuario},
		{name: "usuario assigns", id: usuario, target: ordinaryUser, role: models.RoleUsuario},
		{name: "anonymous", id: nil, target: ordinaryUser, role: models.RoleUsuario},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.id, OpAssignRole, Target{Entity: EntityAccount, Account: tt.target, Role: tt.role})
			if d.Allowed != tt.want {
				t.Errorf("Decide() = %+v, want allowed %v", d, tt.want)
			}
		})
	}
}

func TestDecide_Accounts(t *testing.T) {
	staff := identity(models.RoleStaff, false, true)
	super := identity(models.RoleStaff, true, true)
	ordinaryUser := &models.Account{ID: uuid.New()}
	otherStaff := &models.Account{ID: uuid.New(), IsStaff: true}

	tests := []struct {
		name   string
		id     *models.Identity
		op     Operation
		target *models.Account
		want   bool
	}{
		{name: "staff views", id: staff, op: OpView, want: true},
		{name: "usuario views", id: identity(models.RoleUsuario, false, false), op: OpView},
		{name: "staff adds", id: staff, op: OpAdd},
		{name: "staff deletes", id: staff, op: OpDelete, target: ordinaryUser},
		{name: "superuser adds", id: super, op: OpAdd, want: true},
		{name: "superuser deletes", id: super, op: OpDelete, target: otherStaff, want: true},
		{name: "staff edits self", id: staff, op: OpChange, target: &staff.Account, want: true},
		{name: "staff edits ordinary", id: staff, op: OpChange, target: ordinaryUser, want: true},
		{name: "staff edits staff", id: staff, op: OpChange, target: otherStaff},
		{name: "staff sets flags", id: staff, op: OpSetFlags, target: ordinaryUser},
		{name: "superuser sets flags", id: super, op: OpSetFlags, target: ordinaryUser, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.id, tt.op, Target{Entity: EntityAccount, Account: tt.target})
			if d.Allowed != tt.want {
				t.Errorf("Decide() = %+v, want allowed %v", d, tt.want)
			}
		})
	}
}

func TestDecide_Entities(t *testing.T) {
	usuario := identity(models.RoleUsuario, false, false)
	super := identity("", true, true)
	pending := identity("", false, false)

	tests := []struct {
		name   string
		id     *models.Identity
		op     Operation
		entity string
		want   bool
	}{
		{name: "usuario adds page", id: usuario, op: OpAdd, entity: EntityPage, want: true},
		{name: "usuario deletes article", id: usuario, op: OpDelete, entity: EntityArticle, want: true},
		{name: "pending views category", id: pending, op: OpView, entity: EntityCategory},
		{name: "usuario changes layout", id: usuario, op: OpChange, entity: EntityLayout, want: true},
		{name: "usuario adds layout", id: usuario, op: OpAdd, entity: EntityLayout},
		{name: "superuser deletes layout", id: super, op: OpDelete, entity: EntityLayout},
		{name: "usuario views roles", id: usuario, op: OpView, entity: EntityRole},
		{name: "staff views roles", id: identity(models.RoleStaff, false, true), op: OpView, entity: EntityRole},
		{name: "superuser edits roles", id: super, op: OpChange, entity: EntityRole, want: true},
		{name: "unknown entity", id: super, op: OpView, entity: "plugin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.id, tt.op, Target{Entity: tt.entity})
			if d.Allowed != tt.want {
				t.Errorf("Decide() = %+v, want allowed %v", d, tt.want)
			}
			if !d.Allowed && d.Message == "" {
				t.Error("denial without message")
			}
		})
	}
}

func TestAssignableRoles(t *testing.T) {
	roles := []models.Role{{Name: models.RoleIngresante}, {Name: models.RoleUsuario}, {Name: models.RoleStaff}}
	if got := AssignableRoles(identity("", true, true), roles); len(got) != 3 {
		t.Errorf("superuser roles = %v", got)
	}
	got := AssignableRoles(identity(models.RoleStaff, false, true), roles)
	if len(got) != 2 || got[0].Name != models.RoleIngresante || got[1].Name != models.RoleUsuario {
		t.Errorf("staff roles = %v", got)
	}
	if got := AssignableRoles(identity(models.RoleUsuario, false, false), roles); len(got) != 0 {
		t.Errorf("usuario roles = %v", got)
	}
}
