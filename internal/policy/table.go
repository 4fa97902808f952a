// Package policy is the single source of truth for what each role may see.
//
// The role-to-field mapping is one total lookup table validated exhaustively
// at construction: a missing (role, category) pair fails startup instead of
// silently falling through at resolution time. Runtime lookups of pairs the
// table somehow does not know resolve to Hidden.
package policy

import (
	"fmt"

	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
)

// VisibilityMode is the resolved treatment of a field for a role.
type VisibilityMode string

const (
	// ModeFull passes the value through (decrypting first when it is sealed).
	ModeFull VisibilityMode = "full"
	// ModeMasked delegates to the anonymization engine's display masks.
	ModeMasked VisibilityMode = "masked"
	// ModeEncrypted decrypts for roles that hold the key; everyone else gets
	// Hidden.
	ModeEncrypted VisibilityMode = "encrypted"
	// ModeHidden omits the field from output entirely. Not blanked: absence
	// must not leak the field's existence or length.
	ModeHidden VisibilityMode = "hidden"
)

// Table maps (role, field category) to a visibility mode and records which
// roles are authorized to hold the decryption key. Fixed after construction.
type Table struct {
	modes      map[id.Role]map[id.FieldCategory]VisibilityMode
	keyHolders map[id.Role]bool
}

// NewTable validates totality over every supported role and category. Any gap
// is a construction error, so a misconfigured policy can never reach a
// resolution path.
func NewTable(modes map[id.Role]map[id.FieldCategory]VisibilityMode, keyHolders map[id.Role]bool) (*Table, error) {
	for _, role := range id.Roles {
		row, ok := modes[role]
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("policy table has no row for role %q", role))
		}
		for _, category := range id.Categories {
			if _, ok := row[category]; !ok {
				return nil, dErrors.New(dErrors.CodeInvalidInput,
					fmt.Sprintf("policy table has no entry for (%s, %s)", role, category))
			}
		}
	}
	copied := make(map[id.Role]map[id.FieldCategory]VisibilityMode, len(modes))
	for role, row := range modes {
		rowCopy := make(map[id.FieldCategory]VisibilityMode, len(row))
		for category, mode := range row {
			rowCopy[category] = mode
		}
		copied[role] = rowCopy
	}
	holders := make(map[id.Role]bool, len(keyHolders))
	for role, holds := range keyHolders {
		holders[role] = holds
	}
	return &Table{modes: copied, keyHolders: holders}, nil
}

// Default returns the deployment policy: admins see everything, clinicians
// work on pseudonymized identities with decrypted medical data, front desk
// staff handle contact details but never medical content.
func Default() *Table {
	full := func() map[id.FieldCategory]VisibilityMode {
		row := make(map[id.FieldCategory]VisibilityMode, len(id.Categories))
		for _, category := range id.Categories {
			row[category] = ModeFull
		}
		return row
	}

	clinician := full()
	clinician[id.CategoryIdentity] = ModeMasked
	clinician[id.CategoryContact] = ModeMasked
	clinician[id.CategoryEmail] = ModeMasked
	clinician[id.CategoryAddress] = ModeMasked
	clinician[id.CategoryMedical] = ModeEncrypted

	frontdesk := full()
	frontdesk[id.CategoryAddress] = ModeMasked
	frontdesk[id.CategoryMedical] = ModeHidden

	table, err := NewTable(
		map[id.Role]map[id.FieldCategory]VisibilityMode{
			id.RoleAdmin:     full(),
			id.RoleClinician: clinician,
			id.RoleFrontdesk: frontdesk,
		},
		map[id.Role]bool{
			id.RoleAdmin:     true,
			id.RoleClinician: true,
		},
	)
	if err != nil {
		// The default table covers the closed sets by construction.
		panic(err)
	}
	return table
}

// Mode resolves the visibility for a (role, category) pair. Unknown pairs
// fail closed to Hidden.
func (t *Table) Mode(role id.Role, category id.FieldCategory) VisibilityMode {
	row, ok := t.modes[role]
	if !ok {
		return ModeHidden
	}
	mode, ok := row[category]
	if !ok {
		return ModeHidden
	}
	return mode
}

// HoldsKey reports whether the role is authorized to hold the decryption key.
func (t *Table) HoldsKey(role id.Role) bool {
	return t.keyHolders[role]
}
