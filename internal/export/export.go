// Package export writes list pages as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

// ContentType is the MIME type of the files written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UsersSheet is the sheet name of a user export.
const UsersSheet = "Users"

var userHeader = []any{"ID", "Name", "Username", "Email", "Phone", "Role", "Credit", "Fine", "Joined"}

// Users writes one row per user, under a header row, as an XLSX workbook.
func Users(w io.Writer, users []types.User) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", UsersSheet); err != nil {
		return fmt.Errorf("export.Users: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(UsersSheet, "A1", &userHeader); err != nil {
		return fmt.Errorf("export.Users: header: %w", err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export.Users: cell: %w", err)
		}

		var credit any
		if u.Credit != nil {
			credit = *u.Credit
		}
		joined := ""
		if !u.CreatedAt.IsZero() {
			joined = u.CreatedAt.Format("2006-01-02")
		}

		row := []any{u.ID, u.Name, u.Username, u.Email, u.Phone, u.Role, credit, u.Fine, joined}
		if err := f.SetSheetRow(UsersSheet, cell, &row); err != nil {
			return fmt.Errorf("export.Users: row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(UsersSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export.Users: freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export.Users: write: %w", err)
	}
	return nil
}

// Filename names a user export after the page it came from.
func Filename(page, limit int) string {
	return fmt.Sprintf("users-page-%d-limit-%d.xlsx", page, limit)
}
