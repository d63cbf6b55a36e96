package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// Appointment duration bounds, in minutes.
const (
	MinAppointmentDuration = 15
	MaxAppointmentDuration = 240
	DefaultDuration        = 30
)

// Appointment books a patient with a doctor for a wall-clock slot on a
// calendar day. Date is truncated to midnight; StartTime is "HH:MM" and the
// occupied interval is [StartTime, StartTime+DurationMinutes), half-open.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date            time.Time         `db:"appointment_date" json:"appointment_date"`
	StartTime       string            `db:"start_time" json:"start_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Reason          string            `db:"reason" json:"reason,omitempty"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	CreatedBy       uuid.UUID         `db:"created_by" json:"created_by,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	Date            string    `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	StartTime       string    `json:"start_time" binding:"required,hhmm"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes"`
}

type UpdateAppointmentRequest struct {
	PatientID       *uuid.UUID `json:"patient_id"`
	DoctorID        *uuid.UUID `json:"doctor_id"`
	Date            *string    `json:"appointment_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime       *string    `json:"start_time" binding:"omitempty,hhmm"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	Status          *string    `json:"status" binding:"omitempty,oneof=scheduled confirmed in_progress completed cancelled no_show"`
	Reason          *string    `json:"reason"`
	Notes           *string    `json:"notes"`
}

type AppointmentFilters struct {
	Pagination
	PatientID uuid.UUID         `form:"patient_id"`
	DoctorID  uuid.UUID         `form:"doctor_id"`
	Status    AppointmentStatus `form:"status"`
	Date      time.Time         `form:"date" time_format:"2006-01-02"`
}
