package models

// Status is the coarse lifecycle flag of an entity row.
type Status int8

const (
	StatusValid   Status = 0
	StatusInvalid Status = 1
)

// SubStatus is the fine-grained reason a row is invalid.
// SubStatusValid only ever pairs with StatusValid. SubStatusDeleted is
// terminal: enable/disable guards never match a deleted row.
type SubStatus int8

const (
	SubStatusValid    SubStatus = 0
	SubStatusDisabled SubStatus = 1
	SubStatusDeleted  SubStatus = 2
)

// Consistent reports whether a status pair satisfies the lifecycle
// invariant: valid rows have a valid sub-status, invalid rows carry a
// disabled or deleted reason.
func Consistent(s Status, ss SubStatus) bool {
	if s == StatusValid {
		return ss == SubStatusValid
	}
	return ss == SubStatusDisabled || ss == SubStatusDeleted
}
