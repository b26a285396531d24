package domain

// CanViewList reports whether actor may list all accounts.
func CanViewList(actor Actor) bool {
	return actor.Authenticated() && actor.Admin
}

// CanDelete reports whether actor may delete accounts.
func CanDelete(actor Actor) bool {
	return actor.Authenticated() && actor.Admin
}

// CanEditOrView reports whether actor may see or change target's editable fields.
func CanEditOrView(actor Actor, target AccountID) bool {
	if !actor.Authenticated() {
		return false
	}
	return actor.ID == target || actor.Admin
}
