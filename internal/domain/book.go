package domain

// Book represents a title the library holds copies of.
//
// Quantity is the total number of copies owned. Available is never
// stored: the store derives it on every read as Quantity minus the
// number of open loans on the book (floored at zero), so it cannot
// drift from the loan table.
type Book struct {
	Entity
	Title    string `json:"title"`
	AuthorID string `json:"author_id"`
	Quantity int    `json:"quantity"`

	// Available is populated by the store on reads.
	Available int `json:"available"`
}

// HasAvailableCopy reports whether at least one copy can be borrowed.
func (b *Book) HasAvailableCopy() bool {
	return b.Available > 0
}
