package types

import "strings"

// Address captures a delivery destination. Stored as jsonb on orders so
// the snapshot survives later edits to the customer profile.
type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// StorePickupAddress is the canned placeholder written onto every order
// of a pickup checkout, regardless of what the customer typed.
func StorePickupAddress(fullName, phone string) Address {
	return Address{
		FullName: fullName,
		Phone:    phone,
		Street:   "Store Pickup",
		City:     "Store Pickup",
		State:    "Store Pickup",
		Country:  "ZW",
	}
}

// IsComplete reports whether the fields a courier needs are present.
func (a Address) IsComplete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != ""
}
