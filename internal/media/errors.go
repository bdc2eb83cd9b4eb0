package media

// ValidationError is bad or missing client input, detected before any
// process is spawned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
