package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

func TestUsers(t *testing.T) {
	credit := 12.5
	users := []types.User{
		{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: "admin", Credit: &credit,
			CreatedAt: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{ID: "u2", Email: "bob@example.com", Fine: 3},
	}

	var buf bytes.Buffer
	if err := Users(&buf, users); err != nil {
		t.Fatalf("Users() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(UsersSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][3] != "Email" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Ann" || rows[1][6] != "12.5" || rows[1][8] != "2025-03-04" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][3] != "bob@example.com" || rows[2][7] != "3" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestUsersEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Users(&buf, nil); err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(UsersSheet)
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}
