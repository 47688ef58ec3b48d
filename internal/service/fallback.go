package service

// resolveFirst returns the first non-nil candidate, or nil when every source
// is absent. It replaces the nested "use X, or Y, or the default" chains that
// decide which implemented action a cloned or rescued record starts with.
func resolveFirst[T any](candidates ...*T) *T {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
