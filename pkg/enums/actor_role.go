package enums

// ActorRole identifies the authenticated caller type.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleSupplier ActorRole = "supplier"
	RoleAdmin    ActorRole = "admin"
)

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}
