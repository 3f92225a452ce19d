package drone

import "fmt"

type NotFoundError struct {
	Id string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("drone with id '%v' not found", e.Id)
}

type StatusChangeError struct {
	Detail string
}

func (e *StatusChangeError) Error() string {
	return "invalid status change: " + e.Detail
}

type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "drone is invalid: " + e.Detail
}
