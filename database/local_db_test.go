package database

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
)

func TestLocalDatabase_SetGetDelete(t *testing.T) {
	db := NewLocalDatabase()
	db.CreateNamespace(Missions)

	if err := db.Set(Missions, "m1", `{"id":"m1"}`); err != nil {
		t.Fatalf(`Could not set record: %v`, err)
	}
	value, ok := db.Get(Missions, "m1")
	if !ok || value != `{"id":"m1"}` {
		t.Fatalf(`Got the wrong record back: %v`, value)
	}

	if _, ok := db.Get(Missions, "m2"); ok {
		t.Fatalf(`Record 'm2' should not exist`)
	}

	db.Delete(Missions, "m1")
	if _, ok := db.Get(Missions, "m1"); ok {
		t.Fatalf(`Record 'm1' should have been deleted`)
	}
}

func TestLocalDatabase_List(t *testing.T) {
	db := NewLocalDatabase()
	db.CreateNamespace(Drones)
	db.Set(Drones, "d1", "{}")
	db.Set(Drones, "d2", "{}")

	ids, err := db.List(Drones)
	if err != nil {
		t.Fatalf(`Could not list records: %v`, err)
	}
	if len(ids) != 2 {
		t.Fatalf(`Expected 2 records, got %v`, len(ids))
	}

	if _, err := db.List("nonexistent"); err == nil {
		t.Fatalf(`Listing an unknown namespace should fail`)
	}
}

func TestLocalDatabase_DoTransaction(t *testing.T) {
	db := NewLocalDatabase()
	db.CreateNamespace(Missions)
	db.Set(Missions, "m1", "0")

	err := db.DoTransaction(func(value string) (string, error) {
		return "1", nil
	}, Missions, "m1")
	if err != nil {
		t.Fatalf(`Transaction failed: %v`, err)
	}
	if value, _ := db.Get(Missions, "m1"); value != "1" {
		t.Fatalf(`Transaction result was not committed, got '%v'`, value)
	}

	err = db.DoTransaction(func(value string) (string, error) {
		return "", nil
	}, Missions, "missing")
	if _, ok := err.(*RecordNotFoundError); !ok {
		t.Fatalf(`Expected RecordNotFoundError, got %T`, err)
	}
}

func TestLocalDatabase_DoTransaction_ErrorLeavesRecord(t *testing.T) {
	db := NewLocalDatabase()
	db.CreateNamespace(Missions)
	db.Set(Missions, "m1", "original")

	err := db.DoTransaction(func(value string) (string, error) {
		return "changed", fmt.Errorf("rejected")
	}, Missions, "m1")
	if err == nil {
		t.Fatalf(`Transaction function error should be returned`)
	}
	if value, _ := db.Get(Missions, "m1"); value != "original" {
		t.Fatalf(`Failed transaction must not modify the record, got '%v'`, value)
	}
}

func TestLocalDatabase_DoTransaction_Concurrent(t *testing.T) {
	db := NewLocalDatabase()
	db.CreateNamespace(Missions)
	db.Set(Missions, "counter", "0")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db.DoTransaction(func(value string) (string, error) {
				n, _ := strconv.Atoi(value)
				return strconv.Itoa(n + 1), nil
			}, Missions, "counter")
		}()
	}
	wg.Wait()

	if value, _ := db.Get(Missions, "counter"); value != "50" {
		t.Fatalf(`Concurrent transactions lost updates: counter is '%v', expected '50'`, value)
	}
}
