package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "active"
	PrescriptionStatusCompleted PrescriptionStatus = "completed"
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled"
)

type Medication struct {
	Name         string `json:"name" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	Frequency    string `json:"frequency" binding:"required"`
	Duration     string `json:"duration" binding:"required"`
	Instructions string `json:"instructions,omitempty"`
}

// Medications is stored as a JSONB column.
type Medications []Medication

func (m Medications) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Medications) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("unsupported type for medications: %T", src)
	}
}

type Prescription struct {
	Base
	PatientID     uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID         `db:"appointment_id" json:"appointment_id,omitempty"`
	Medications   Medications        `db:"medications" json:"medications"`
	Diagnosis     string             `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes         string             `db:"notes" json:"notes,omitempty"`
	FollowUpDate  *time.Time         `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Status        PrescriptionStatus `db:"status" json:"status"`
}

type CreatePrescriptionRequest struct {
	PatientID     uuid.UUID    `json:"patient_id" binding:"required"`
	DoctorID      uuid.UUID    `json:"doctor_id" binding:"required"`
	AppointmentID *uuid.UUID   `json:"appointment_id"`
	Medications   []Medication `json:"medications" binding:"required,min=1,dive"`
	Diagnosis     string       `json:"diagnosis"`
	Notes         string       `json:"notes"`
	FollowUpDate  *time.Time   `json:"follow_up_date"`
}

type UpdatePrescriptionRequest struct {
	Medications  []Medication `json:"medications" binding:"omitempty,min=1,dive"`
	Diagnosis    *string      `json:"diagnosis"`
	Notes        *string      `json:"notes"`
	FollowUpDate *time.Time   `json:"follow_up_date"`
	Status       *string      `json:"status" binding:"omitempty,oneof=active completed cancelled"`
}

type PrescriptionFilters struct {
	Pagination
	PatientID uuid.UUID          `form:"patient_id"`
	DoctorID  uuid.UUID          `form:"doctor_id"`
	Status    PrescriptionStatus `form:"status"`
}
