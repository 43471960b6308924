package types

// ToPointer returns a pointer to a copy of v
func ToPointer[T any](v T) *T {
	return &v
}

// ToValue returns the value v points to, the zero value when v is nil
func ToValue[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
