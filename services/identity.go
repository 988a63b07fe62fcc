package services

// Identity is the per-request view of who is calling. The zero value is an
// anonymous caller.
type Identity struct {
	LoggedIn bool
	UserID   int
	Name     string
	IsAdmin  bool
}

// Anonymous is the identity of a caller without a valid session.
var Anonymous = Identity{}

// CanView reports whether the identity may read data owned by ownerID.
func (i Identity) CanView(ownerID int) bool {
	if !i.LoggedIn {
		return false
	}
	return i.IsAdmin || i.UserID == ownerID
}
