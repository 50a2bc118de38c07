package viewctl

// KeySelector extracts the stable identity of a row. Lists pick the field
// that is unique for their row type (a numeric id, a public identifier).
type KeySelector[T any, K comparable] func(T) K

// Keys returns the identity of every row in order.
func Keys[T any, K comparable](items []T, sel KeySelector[T, K]) []K {
	keys := make([]K, len(items))
	for i, it := range items {
		keys[i] = sel(it)
	}
	return keys
}

// IndexOf returns the position of the row whose key equals key, or -1.
func IndexOf[T any, K comparable](items []T, key K, sel KeySelector[T, K]) int {
	for i, it := range items {
		if sel(it) == key {
			return i
		}
	}
	return -1
}
