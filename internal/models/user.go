package models

// User represents a customer account. Phone is stored in whatever format the
// record was created with; lookups go through the tolerant matching in the
// otp package rather than assuming every row is canonical.
type User struct {
	BaseModel
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        string  `gorm:"uniqueIndex" json:"phone"`
	DisplayName  string  `json:"display_name"`
	PasswordHash string  `json:"-"`
	IsVerified   bool    `json:"is_verified"`
	Orders       []Order `json:"orders,omitempty"`
}
