package models

import "time"

// VerificationSession is an outstanding (or recently verified) OTP challenge.
// At most one row exists per canonical phone: issuing a new code deletes any
// prior session for that phone before inserting.
type VerificationSession struct {
	BaseModel
	Phone     string    `gorm:"index" json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
}
