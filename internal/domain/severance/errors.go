package severance

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrTerminationBeforeHire = errors.New("termination date is before hire date")
)
