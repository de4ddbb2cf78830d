package models

import "time"

// TechUser is the slice of the user record the export pipeline needs.
// Credential handling lives outside this service.
type TechUser struct {
	ID        string    `gorm:"type:varchar(64);primary_key" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FirstName string    `gorm:"type:varchar(128)" json:"firstName"`
	LastName  string    `gorm:"type:varchar(128)" json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u TechUser) FullName() string {
	return u.FirstName + " " + u.LastName
}
