package util

// GetPtr returns a pointer to v. Handy for literal struct fields.
func GetPtr[T any](v T) *T {
	return &v
}
