package domain

import (
	"errors"
	"time"
)

// Specialization is the registration kind of a reader. A reader is
// exactly one of plain, parent, or child; the kinds are mutually
// exclusive and Validate rejects mixed shapes.
type Specialization string

const (
	// SpecPlain is a reader with no specialization.
	SpecPlain Specialization = "plain"
	// SpecParent is a reader registered with contact details who can
	// act as legal guardian for child readers.
	SpecParent Specialization = "parent"
	// SpecChild is a reader registered under a parent reader.
	SpecChild Specialization = "child"
)

// IsValid checks if the specialization is a recognized value.
func (s Specialization) IsValid() bool {
	switch s {
	case SpecPlain, SpecParent, SpecChild:
		return true
	default:
		return false
	}
}

// Reader represents a registered library member.
//
// Address and Phone are only set for parents; ParentID is only set for
// children and must reference an existing parent reader. CurrentLoans
// and LifetimeLoans are derived from the loan table on every read and
// never stored.
type Reader struct {
	Entity
	Name      string         `json:"name"`
	Surname   string         `json:"surname"`
	BirthDate time.Time      `json:"birth_date"`
	Spec      Specialization `json:"spec"`

	// Parent-only fields.
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`

	// Child-only field.
	ParentID string `json:"parent_id,omitempty"`

	// Derived loan counts, populated by the store on reads.
	CurrentLoans  int `json:"current_loans"`
	LifetimeLoans int `json:"lifetime_loans"`
}

// IsParent reports whether the reader is registered as a parent.
func (r *Reader) IsParent() bool {
	return r.Spec == SpecParent
}

// IsChild reports whether the reader is registered as a child.
func (r *Reader) IsChild() bool {
	return r.Spec == SpecChild
}

// Shape violations reported by Validate.
var (
	ErrUnknownSpecialization = errors.New("unknown reader specialization")
	ErrChildNeedsParent      = errors.New("child reader requires a parent id")
	ErrParentFieldsMisplaced = errors.New("address and phone are parent-only fields")
	ErrParentIDMisplaced     = errors.New("parent id is a child-only field")
)

// Validate checks the specialization shape invariant: parent-only and
// child-only fields may only be set on the matching kind, and a child
// must carry a parent reference.
func (r *Reader) Validate() error {
	if !r.Spec.IsValid() {
		return ErrUnknownSpecialization
	}
	if r.Spec != SpecParent && (r.Address != "" || r.Phone != "") {
		return ErrParentFieldsMisplaced
	}
	if r.Spec != SpecChild && r.ParentID != "" {
		return ErrParentIDMisplaced
	}
	if r.Spec == SpecChild && r.ParentID == "" {
		return ErrChildNeedsParent
	}
	return nil
}

// Age returns the number of full years between birth and on.
// The year count only increments once the birthday has passed, so a
// reader born 2015-06-01 is 9 on 2025-05-31 and 10 on 2025-06-01.
func Age(birth, on time.Time) int {
	years := on.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if on.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
