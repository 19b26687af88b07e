package models

// Identity is the authenticated subject of a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// IsAnonymous reports whether no user is attached.
func (i Identity) IsAnonymous() bool {
	return i.ID == ""
}
