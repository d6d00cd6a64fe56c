package data

type HasIDGetter interface {
	GetID() string
}

type Spreadable interface {
	// Spread elements, in order.
	Spread() []any
}
type SpreadableAddresses[T any] interface {
	// Returns a pointer to a copy of the value, and then its spread addresses, in order.
	SpreadAddresses() (*T, []any)
}

// Store items are scanned back through their addresses and paginated by their ID.
type Storable[T any] interface {
	HasIDGetter
	SpreadableAddresses[T]
}
