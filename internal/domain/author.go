package domain

// Author represents a person with books in the catalog.
// Books hold a non-owning reference to their author; an author with
// at least one book cannot be deleted.
type Author struct {
	Entity
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// FullName returns "Name Surname" for display and logging.
func (a *Author) FullName() string {
	return a.Name + " " + a.Surname
}
