package database

import "fmt"

// Namespaces used by the API. Every record lives under one of these; the
// field is the resource id and the value is the resource's JSON document.
const (
	Missions = "missions"
	Drones   = "drones"
)

// Database is the store of missions and drones, in either Redis or a local
// in-memory database. All implementations must behave exactly the same.
// DoTransaction is the only safe way to mutate an existing record: it
// guarantees the read-modify-write is atomic per record, so two concurrent
// lifecycle transitions on the same mission can never both commit.
type Database interface {
	Ping() error
	CreateNamespace(namespace string) error
	Set(namespace string, id string, value string) error
	Get(namespace string, id string) (string, bool)
	Delete(namespace string, id string) bool
	List(namespace string) ([]string, error)
	DoTransaction(transactionFunc func(string) (string, error), namespace string, id string) error
	Health() error
}

type MemoryUsageError struct {
	usage int64
	limit int64
}

func (e *MemoryUsageError) Error() string {
	return fmt.Sprintf("memory usage is above the safe limit: %v out of %v bytes used", e.usage, e.limit)
}

// RecordNotFoundError is returned by DoTransaction when the record does not
// exist. Callers translate it into the resource-specific not-found error.
type RecordNotFoundError struct{}

func (e *RecordNotFoundError) Error() string {
	return "record not found"
}

// TransactionFailedError is returned by DoTransaction when the record was
// modified concurrently. Callers retry or surface a 429.
type TransactionFailedError struct{}

func (e *TransactionFailedError) Error() string {
	return "the record was modified during the transaction"
}
