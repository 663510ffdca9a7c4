package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/model"
	"github.com/sakif/case-runner/internal/repository"
)

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestCase(t *testing.T, db *DB, owner, title string) *model.Case {
	t.Helper()
	c := &model.Case{
		OwnerID: owner,
		Title:   title,
		Host:    "http://example.test",
		URI:     "/ping",
		Method:  "GET",
	}
	if err := db.Create(context.Background(), c); err != nil {
		t.Fatalf("failed to create test case: %v", err)
	}
	return c
}

func TestCreateCase(t *testing.T) {
	db := newTestDB(t)

	c := createTestCase(t, db, "owner-1", "smoke test")

	if c.ID == "" {
		t.Error("Create() did not set ID")
	}
	if c.Used {
		t.Error("new case must have used=false")
	}
	if c.ResponseCode != nil || c.ResponseBody != nil {
		t.Error("new case must have absent response fields")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestCreateCase_UniqueIDs(t *testing.T) {
	db := newTestDB(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		c := createTestCase(t, db, "owner-1", fmt.Sprintf("case %d", i))
		if seen[c.ID] {
			t.Fatalf("duplicate id %q", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestCreateCase_DuplicateTitle(t *testing.T) {
	db := newTestDB(t)
	createTestCase(t, db, "owner-1", "taken")

	dup := &model.Case{OwnerID: "owner-2", Title: "taken", Host: "http://x", URI: "/"}
	err := db.Create(context.Background(), dup)
	if err == nil {
		t.Fatal("Create() should fail on a duplicate title")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestGetCaseByID_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	created := createTestCase(t, db, "owner-1", "fetch me")

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "fetch me" {
		t.Errorf("Title = %q, want %q", found.Title, "fetch me")
	}
	if found.Host != "http://example.test" || found.URI != "/ping" {
		t.Errorf("Host/URI = %q %q", found.Host, found.URI)
	}
	if found.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want owner-1", found.OwnerID)
	}
}

func TestGetCaseByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListByOwner_ScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)

	var ids []string
	for i := 0; i < 3; i++ {
		c := createTestCase(t, db, "mine", fmt.Sprintf("mine %d", i))
		ids = append(ids, c.ID)
	}
	createTestCase(t, db, "theirs", "not mine")

	cases, err := db.ListByOwner(context.Background(), "mine", repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("got %d cases, want 3", len(cases))
	}
	// xids are time-ordered, so insertion order == id order here.
	for i, c := range cases {
		if c.ID != ids[i] {
			t.Errorf("cases[%d].ID = %q, want %q (ascending id order)", i, c.ID, ids[i])
		}
	}
}

func TestListByOwner_Pagination(t *testing.T) {
	db := newTestDB(t)

	var ids []string
	for i := 0; i < 7; i++ {
		c := createTestCase(t, db, "owner-1", fmt.Sprintf("case %02d", i))
		ids = append(ids, c.ID)
	}

	// page=2, limit=5 → offset 5 → records 6 and 7.
	cases, err := db.ListByOwner(context.Background(), "owner-1",
		repository.ListOptions{Limit: 5, Offset: 5})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	if cases[0].ID != ids[5] || cases[1].ID != ids[6] {
		t.Errorf("page 2 = [%s %s], want [%s %s]", cases[0].ID, cases[1].ID, ids[5], ids[6])
	}
}

func TestListByOwner_Empty(t *testing.T) {
	db := newTestDB(t)

	cases, err := db.ListByOwner(context.Background(), "nobody", repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("got %d cases, want 0", len(cases))
	}
}

func TestUpdateCase(t *testing.T) {
	db := newTestDB(t)
	c := createTestCase(t, db, "owner-1", "before")

	c.Title = "after"
	c.Method = "POST"
	c.Used = true
	if err := db.Update(context.Background(), c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, _ := db.GetByID(context.Background(), c.ID)
	if found.Title != "after" || found.Method != "POST" || !found.Used {
		t.Errorf("update not persisted: %+v", found)
	}
}

func TestUpdateCase_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.Case{ID: "ghost", Title: "x", Host: "h", URI: "/"}
	err := db.Update(context.Background(), ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateResponse_SetsAndOverwrites(t *testing.T) {
	db := newTestDB(t)
	c := createTestCase(t, db, "owner-1", "dispatched")

	if err := db.UpdateResponse(context.Background(), c.ID, "200 OK", "pong"); err != nil {
		t.Fatalf("UpdateResponse() error = %v", err)
	}

	found, _ := db.GetByID(context.Background(), c.ID)
	if found.ResponseCode == nil || *found.ResponseCode != "200 OK" {
		t.Errorf("ResponseCode = %v, want 200 OK", found.ResponseCode)
	}
	if found.ResponseBody == nil || *found.ResponseBody != "pong" {
		t.Errorf("ResponseBody = %v, want pong", found.ResponseBody)
	}
	if found.Used {
		t.Error("UpdateResponse must not flip the used flag")
	}

	// Second dispatch overwrites, never appends.
	if err := db.UpdateResponse(context.Background(), c.ID, "500 Internal Server Error", "boom"); err != nil {
		t.Fatalf("UpdateResponse() error = %v", err)
	}
	found, _ = db.GetByID(context.Background(), c.ID)
	if *found.ResponseCode != "500 Internal Server Error" || *found.ResponseBody != "boom" {
		t.Errorf("second dispatch did not overwrite: %v %v", *found.ResponseCode, *found.ResponseBody)
	}
}

func TestUpdateResponse_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateResponse(context.Background(), "ghost", "200 OK", "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCase(t *testing.T) {
	db := newTestDB(t)
	c := createTestCase(t, db, "owner-1", "doomed")

	if err := db.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.GetByID(context.Background(), c.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}

	// Deleting twice: second call also NotFound.
	if err := db.Delete(context.Background(), c.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteCase_NotFound(t *testing.T) {
	db := newTestDB(t)

	if err := db.Delete(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
