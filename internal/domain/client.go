package domain

// ClientStatus is a client's standing; only ACTIF clients may be bound to
// new contracts (spec §3 invariant).
type ClientStatus string

const (
	ClientActif    ClientStatus = "ACTIF"
	ClientInactif  ClientStatus = "INACTIF"
	ClientSuspendu ClientStatus = "SUSPENDU"
)

// Client is read-only from the booking core's perspective; client CRUD is
// an external collaborator (spec §1). Field names keep the French
// nom/prenom the persisted schema is contractually stuck with (spec §9).
type Client struct {
	ID        string
	Nom       string
	Prenom    string
	Telephone string
	Email     *string
	Status    ClientStatus
	IsActive  bool
}

// FullName renders "Prenom Nom" for conflict summaries and notifications.
func (c Client) FullName() string {
	return c.Prenom + " " + c.Nom
}

// Bookable reports whether this client may be bound to a new contract.
func (c Client) Bookable() bool {
	return c.IsActive && c.Status == ClientActif
}
