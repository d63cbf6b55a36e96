package model

import (
	"github.com/lib/pq"
)

type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "active"
	PatientStatusDischarged PatientStatus = "discharged"
	PatientStatusDeceased   PatientStatus = "deceased"
)

type Patient struct {
	Base
	Name              string         `db:"name" json:"name"`
	Age               int            `db:"age" json:"age"`
	Gender            string         `db:"gender" json:"gender"`
	Phone             string         `db:"phone" json:"phone"`
	Email             string         `db:"email" json:"email,omitempty"`
	Address           string         `db:"address" json:"address,omitempty"`
	BloodGroup        string         `db:"blood_group" json:"blood_group,omitempty"`
	Allergies         pq.StringArray `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions pq.StringArray `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	Medications       pq.StringArray `db:"medications" json:"medications,omitempty"`
	EmergencyName     string         `db:"emergency_name" json:"emergency_name,omitempty"`
	EmergencyPhone    string         `db:"emergency_phone" json:"emergency_phone,omitempty"`
	Status            PatientStatus  `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	Name              string   `json:"name" binding:"required"`
	Age               int      `json:"age" binding:"required,min=0,max=150"`
	Gender            string   `json:"gender" binding:"required,oneof=male female other"`
	Phone             string   `json:"phone" binding:"required"`
	Email             string   `json:"email" binding:"omitempty,email"`
	Address           string   `json:"address"`
	BloodGroup        string   `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O- unknown"`
	Allergies         []string `json:"allergies"`
	ChronicConditions []string `json:"chronic_conditions"`
	Medications       []string `json:"medications"`
	EmergencyName     string   `json:"emergency_name"`
	EmergencyPhone    string   `json:"emergency_phone"`
}

type UpdatePatientRequest struct {
	Name              *string  `json:"name"`
	Age               *int     `json:"age" binding:"omitempty,min=0,max=150"`
	Gender            *string  `json:"gender" binding:"omitempty,oneof=male female other"`
	Phone             *string  `json:"phone"`
	Email             *string  `json:"email" binding:"omitempty,email"`
	Address           *string  `json:"address"`
	BloodGroup        *string  `json:"blood_group"`
	Allergies         []string `json:"allergies"`
	ChronicConditions []string `json:"chronic_conditions"`
	Medications       []string `json:"medications"`
	EmergencyName     *string  `json:"emergency_name"`
	EmergencyPhone    *string  `json:"emergency_phone"`
	Status            *string  `json:"status" binding:"omitempty,oneof=active discharged deceased"`
}

type PatientFilters struct {
	Pagination
	Search     string        `form:"search"`
	Status     PatientStatus `form:"status"`
	Gender     string        `form:"gender"`
	BloodGroup string        `form:"blood_group"`
	MinAge     int           `form:"min_age"`
	MaxAge     int           `form:"max_age"`
}
