package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

type InspectionStatus string

const (
	InspectionStatusComplete   InspectionStatus = "Complete"
	InspectionStatusInProgress InspectionStatus = "InProgress"
	InspectionStatusPending    InspectionStatus = "Pending"
)

// ParseInspectionStatus coerces free-form cell text to the status enum.
// Unknown values fall back to Pending rather than rejecting the row.
func ParseInspectionStatus(raw string) InspectionStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "complete" || s == "completed" || strings.Contains(s, "완료"):
		return InspectionStatusComplete
	case s == "inprogress" || s == "in progress" || strings.Contains(s, "진행"):
		return InspectionStatusInProgress
	default:
		return InspectionStatusPending
	}
}

func (t InspectionStatus) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *InspectionStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = InspectionStatus(v)
	case []byte:
		*t = InspectionStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into InspectionStatus", value)
	}
	return nil
}

type PhotoKind string

const (
	PhotoKindSite    PhotoKind = "Site"
	PhotoKindThermal PhotoKind = "Thermal"
)

// ParsePhotoKind classifies a bilingual "photo type" cell.
func ParsePhotoKind(raw string) PhotoKind {
	s := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(s, "thermal") || strings.Contains(s, "열화상") {
		return PhotoKindThermal
	}
	return PhotoKindSite
}

type UserRole string

const (
	UserRoleAdmin     UserRole = "A"
	UserRoleInspector UserRole = "I"
)

func (t UserRole) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *UserRole) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = UserRole(v)
	case []byte:
		*t = UserRole(v)
	default:
		return errors.New("user role must be string")
	}
	return nil
}
