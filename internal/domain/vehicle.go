package domain

import "github.com/shopspring/decimal"

// ServiceType is one of the service categories a vehicle can support and a
// contract must belong to (spec §3, GLOSSARY).
type ServiceType string

const (
	ServiceIndividual ServiceType = "INDIVIDUAL"
	ServiceEvents     ServiceType = "EVENTS"
	ServiceEnterprise ServiceType = "ENTERPRISE"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceIndividual, ServiceEvents, ServiceEnterprise:
		return true
	default:
		return false
	}
}

// Vehicle is read-only from the booking core's perspective; the catalog
// (creation, edits, images) is an external collaborator (spec §1).
type Vehicle struct {
	ID                   string
	Make                 string
	Model                string
	Year                 int
	LicensePlate         string
	VIN                  *string
	PricePerDay          decimal.Decimal
	Currency             string
	Available            bool
	IsActive             bool
	SupportedServiceTypes []ServiceType
}

// SupportsServiceType reports whether st is in the vehicle's supported set.
func (v Vehicle) SupportsServiceType(st ServiceType) bool {
	for _, s := range v.SupportedServiceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// Bookable reports whether the vehicle may be bound to a new contract at
// all, independent of date availability (spec §3 invariant).
func (v Vehicle) Bookable() bool {
	return v.IsActive && v.Available
}
