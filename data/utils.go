package data

// Spread helper for filters: absent fields spread as a nil interface so stores can skip them.
func optional[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}
