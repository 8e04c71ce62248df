package models

// ViewerKind tags the capability set of whoever is calling.
type ViewerKind string

const (
	ViewerAnonymous ViewerKind = "anonymous"
	ViewerMember    ViewerKind = "member"
	ViewerAdmin     ViewerKind = "admin"
)

// Actor identifies the caller of a core operation. The zero value is anonymous.
type Actor struct {
	ID    string
	Email string
	Admin bool
}

// Anonymous is the actor used for unauthenticated requests.
var Anonymous = Actor{}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// Kind returns the viewer variant.
func (a Actor) Kind() ViewerKind {
	switch {
	case !a.Authenticated():
		return ViewerAnonymous
	case a.Admin:
		return ViewerAdmin
	default:
		return ViewerMember
	}
}

// Owns reports whether the actor submitted the listing.
func (a Actor) Owns(l *Listing) bool {
	return a.Authenticated() && l != nil && l.UserID == a.ID
}
