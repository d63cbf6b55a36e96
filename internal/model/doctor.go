package model

import (
	"time"

	"github.com/lib/pq"
)

type DoctorStatus string

const (
	DoctorStatusActive   DoctorStatus = "active"
	DoctorStatusOnLeave  DoctorStatus = "on_leave"
	DoctorStatusInactive DoctorStatus = "inactive"
)

type Doctor struct {
	Base
	Name           string         `db:"name" json:"name"`
	Specialty      string         `db:"specialty" json:"specialty"`
	Phone          string         `db:"phone" json:"phone"`
	Email          string         `db:"email" json:"email"`
	Qualifications pq.StringArray `db:"qualifications" json:"qualifications,omitempty"`
	LicenseNumber  string         `db:"license_number" json:"license_number,omitempty"`
	ExperienceYrs  int            `db:"experience_years" json:"experience_years"`
	WorkingDays    pq.StringArray `db:"working_days" json:"working_days"`
	DayStart       string         `db:"day_start" json:"day_start"`
	DayEnd         string         `db:"day_end" json:"day_end"`
	Status         DoctorStatus   `db:"status" json:"status"`
}

// WorksOn reports whether the doctor accepts appointments on the given weekday.
func (d *Doctor) WorksOn(day time.Weekday) bool {
	for _, wd := range d.WorkingDays {
		if wd == day.String() {
			return true
		}
	}
	return false
}

type CreateDoctorRequest struct {
	Name           string   `json:"name" binding:"required"`
	Specialty      string   `json:"specialty" binding:"required,oneof=cardiology neurology orthopedics pediatrics dermatology oncology psychiatry general_medicine surgery emergency_medicine radiology anesthesiology other"`
	Phone          string   `json:"phone" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Qualifications []string `json:"qualifications"`
	LicenseNumber  string   `json:"license_number"`
	ExperienceYrs  int      `json:"experience_years" binding:"omitempty,min=0"`
	WorkingDays    []string `json:"working_days" binding:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	DayStart       string   `json:"day_start" binding:"required,hhmm"`
	DayEnd         string   `json:"day_end" binding:"required,hhmm"`
}

type UpdateDoctorRequest struct {
	Name           *string  `json:"name"`
	Specialty      *string  `json:"specialty"`
	Phone          *string  `json:"phone"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	Qualifications []string `json:"qualifications"`
	LicenseNumber  *string  `json:"license_number"`
	ExperienceYrs  *int     `json:"experience_years" binding:"omitempty,min=0"`
	WorkingDays    []string `json:"working_days" binding:"omitempty,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	DayStart       *string  `json:"day_start" binding:"omitempty,hhmm"`
	DayEnd         *string  `json:"day_end" binding:"omitempty,hhmm"`
	Status         *string  `json:"status" binding:"omitempty,oneof=active on_leave inactive"`
}

type DoctorFilters struct {
	Pagination
	Search    string       `form:"search"`
	Specialty string       `form:"specialty"`
	Status    DoctorStatus `form:"status"`
}
