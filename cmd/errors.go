package cmd

import "errors"

// validationErr marks an error that must exit 2 (validation error) rather
// than 1 (operational error), per spec.md §6's CLI exit-code contract.
type validationErr struct {
	err error
}

func (v *validationErr) Error() string { return v.err.Error() }
func (v *validationErr) Unwrap() error { return v.err }

func asValidationErr(err error) error {
	if err == nil {
		return nil
	}
	return &validationErr{err: err}
}

func exitCodeFor(err error) int {
	var v *validationErr
	if errors.As(err, &v) {
		return 2
	}
	return 1
}
