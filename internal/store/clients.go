package store

import (
	"context"
	"fmt"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// GetClient loads a client by id. Client CRUD is owned by an external
// collaborator (spec §1); the booking core only reads Bookable() standing.
func (s *Store) GetClient(ctx context.Context, id string) (domain.Client, error) {
	return getClient(ctx, s.conn(), id)
}

func (t *Tx) GetClient(ctx context.Context, id string) (domain.Client, error) {
	return getClient(ctx, t.conn(), id)
}

func getClient(ctx context.Context, c conn, id string) (domain.Client, error) {
	var cl domain.Client
	err := c.QueryRow(ctx, `
		SELECT id, nom, prenom, telephone, email, status, is_active
		FROM clients WHERE id = $1
	`, id).Scan(&cl.ID, &cl.Nom, &cl.Prenom, &cl.Telephone, &cl.Email, &cl.Status, &cl.IsActive)
	if err != nil {
		return domain.Client{}, mapErr(err, fmt.Sprintf("get client %s", id))
	}
	return cl, nil
}
