package store

import (
	"context"
	"fmt"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// GetVehicle loads a vehicle by id. The catalog itself (creation, pricing
// edits, images) is owned by an external collaborator (spec §1); the
// booking core only reads it to check availability/supported service
// types.
func (s *Store) GetVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	return getVehicle(ctx, s.conn(), id)
}

func (t *Tx) GetVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	return getVehicle(ctx, t.conn(), id)
}

func getVehicle(ctx context.Context, c conn, id string) (domain.Vehicle, error) {
	var v domain.Vehicle
	var serviceTypes []string
	err := c.QueryRow(ctx, `
		SELECT id, make, model, year, license_plate, vin, price_per_day, currency,
		       available, is_active, supported_service_types
		FROM vehicles WHERE id = $1
	`, id).Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.LicensePlate, &v.VIN, &v.PricePerDay, &v.Currency,
		&v.Available, &v.IsActive, &serviceTypes)
	if err != nil {
		return domain.Vehicle{}, mapErr(err, fmt.Sprintf("get vehicle %s", id))
	}

	v.SupportedServiceTypes = make([]domain.ServiceType, len(serviceTypes))
	for i, st := range serviceTypes {
		v.SupportedServiceTypes[i] = domain.ServiceType(st)
	}
	return v, nil
}
