// internal/models/directory.go
package models

import "time"

// Person is the applicant directory record. Identity management proper
// lives in a separate system; only the fields the lifecycle needs are kept.
type Person struct {
	BaseModel
	FirstName   string    `json:"first_name" gorm:"size:100;not null"`
	LastName    string    `json:"last_name" gorm:"size:100;not null"`
	BirthDate   time.Time `json:"birth_date" gorm:"not null"`
	NationalID  string    `json:"national_id" gorm:"size:30;uniqueIndex"`
	PhoneNumber string    `json:"phone_number,omitempty" gorm:"size:30"`
	Address     string    `json:"address,omitempty" gorm:"size:255"`
}

// AgeAt returns the person's age in whole years at the given date.
func (p *Person) AgeAt(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	if at.YearDay() < p.BirthDate.YearDay() {
		years--
	}
	return years
}

// Location is an issuing office. Code feeds the application number prefix.
type Location struct {
	BaseModel
	Code     string `json:"code" gorm:"size:10;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:150;not null"`
	Region   string `json:"region,omitempty" gorm:"size:100"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}
