package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrCompanyNotFound is returned when no company matches a customer
	// name, neither exactly nor by fuzzy similarity
	ErrCompanyNotFound = errors.New("company not found")

	// ErrUnknownProjectType is returned when an opportunity code prefix
	// resolves to no milestone plan
	ErrUnknownProjectType = errors.New("unknown project type")

	// ErrOpenTasks is returned when opportunity derivation is attempted
	// on a ticket that still has open tasks
	ErrOpenTasks = errors.New("ticket has open tasks")

	// ErrMissingOwner is returned when a ticket required to carry an
	// owner has none
	ErrMissingOwner = errors.New("ticket has no owner")

	// ErrMissingCustomer is returned when a ticket required to carry a
	// customer name has none
	ErrMissingCustomer = errors.New("ticket has no customer name")

	// ErrServiceInUse is returned when deleting a service that still has
	// open tickets referencing its code
	ErrServiceInUse = errors.New("service has open tickets")
)
