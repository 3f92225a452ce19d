package database

import (
	"fmt"
	"sync"
)

// LocalDatabase is an in-memory database for development and testing
// purposes only. A single mutex is used per namespace to ensure that record
// updates are transactional. This impacts performance when there are many
// concurrent writers.
type LocalDatabase struct {
	kv  map[string]map[string]string
	mux map[string]*sync.Mutex
}

func NewLocalDatabase() *LocalDatabase {
	d := LocalDatabase{kv: make(map[string]map[string]string), mux: make(map[string]*sync.Mutex)}
	return &d
}

func (d *LocalDatabase) Ping() error {
	return nil
}

func (d *LocalDatabase) CreateNamespace(namespace string) error {
	if _, ok := d.kv[namespace]; ok {
		return nil
	}
	d.kv[namespace] = make(map[string]string)
	d.mux[namespace] = &sync.Mutex{}
	return nil
}

func (d *LocalDatabase) Set(namespace string, id string, value string) error {
	if _, ok := d.kv[namespace]; !ok {
		return fmt.Errorf("namespace '%v' not found", namespace)
	}
	d.mux[namespace].Lock()
	defer d.mux[namespace].Unlock()
	d.kv[namespace][id] = value
	return nil
}

// Get returns the value for the namespace and id specified, along with a
// boolean to say whether the record exists.
func (d *LocalDatabase) Get(namespace string, id string) (string, bool) {
	if _, ok := d.kv[namespace]; !ok {
		return "", ok
	}
	val, ok := d.kv[namespace][id]
	return val, ok
}

// Delete returns true if the record specified was successfully deleted or
// did not exist.
func (d *LocalDatabase) Delete(namespace string, id string) bool {
	if _, ok := d.kv[namespace]; !ok {
		return false
	}
	d.mux[namespace].Lock()
	defer d.mux[namespace].Unlock()
	delete(d.kv[namespace], id)
	return true
}

// List returns the ids of all records in the namespace.
func (d *LocalDatabase) List(namespace string) ([]string, error) {
	if _, ok := d.kv[namespace]; !ok {
		return []string{}, fmt.Errorf("namespace '%v' not found", namespace)
	}
	var idList []string
	for id := range d.kv[namespace] {
		idList = append(idList, id)
	}
	return idList, nil
}

// DoTransaction locks the namespace, reads the record, applies the function,
// and writes the result back. No other update can interleave.
func (d *LocalDatabase) DoTransaction(transactionFunc func(string) (string, error), namespace string, id string) error {
	if _, ok := d.kv[namespace]; !ok {
		return fmt.Errorf("namespace '%v' not found", namespace)
	}
	d.mux[namespace].Lock()
	defer d.mux[namespace].Unlock()

	value, ok := d.kv[namespace][id]
	if !ok {
		return &RecordNotFoundError{}
	}
	value, err := transactionFunc(value)
	if err != nil {
		return err
	}
	d.kv[namespace][id] = value
	return nil
}

func (d *LocalDatabase) Health() error {
	return nil
}
