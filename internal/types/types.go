// README: Common value objects shared across modules.
package types

// ID identifies a trip, request, driver, or company row.
type ID string

// Money is an integer amount in the smallest currency unit.
type Money struct {
	Amount   int64
	Currency string
}
