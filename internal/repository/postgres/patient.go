package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicore/hospital-api/internal/model"
	apperrors "github.com/medicore/hospital-api/pkg/errors"
)

const patientColumns = `
	id, name, age, gender, phone, email, address, blood_group,
	allergies, chronic_conditions, medications,
	emergency_name, emergency_phone, status, created_at, updated_at
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, age, gender, phone, email, address, blood_group,
			allergies, chronic_conditions, medications,
			emergency_name, emergency_phone, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodGroup,
		patient.Allergies,
		patient.ChronicConditions,
		patient.Medications,
		patient.EmergencyName,
		patient.EmergencyPhone,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, age = $2, gender = $3, phone = $4, email = $5,
			address = $6, blood_group = $7, allergies = $8,
			chronic_conditions = $9, medications = $10,
			emergency_name = $11, emergency_phone = $12, status = $13,
			updated_at = $14
		WHERE id = $15
	`
	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodGroup,
		patient.Allergies,
		patient.ChronicConditions,
		patient.Medications,
		patient.EmergencyName,
		patient.EmergencyPhone,
		patient.Status,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", argCount, argCount, argCount)
		args = append(args, "%"+filters.Search+"%")
		argCount++
	}
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.Gender != "" {
		where += fmt.Sprintf(" AND gender = $%d", argCount)
		args = append(args, filters.Gender)
		argCount++
	}
	if filters.BloodGroup != "" {
		where += fmt.Sprintf(" AND blood_group = $%d", argCount)
		args = append(args, filters.BloodGroup)
		argCount++
	}
	if filters.MinAge > 0 {
		where += fmt.Sprintf(" AND age >= $%d", argCount)
		args = append(args, filters.MinAge)
		argCount++
	}
	if filters.MaxAge > 0 {
		where += fmt.Sprintf(" AND age <= $%d", argCount)
		args = append(args, filters.MaxAge)
		argCount++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM patients"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := "SELECT " + patientColumns + " FROM patients" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset())

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}
