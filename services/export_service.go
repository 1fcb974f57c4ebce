package services

import (
	"fmt"

	"gnoa_membership_go/models"

	"github.com/xuri/excelize/v2"
)

// exportColumns defines the spreadsheet layout for the member export
var exportColumns = []struct {
	Header string
	Width  float64
	Value  func(a *models.MemberApplication) string
}{
	{"Name in Full", 30, func(a *models.MemberApplication) string { return a.NameInFull }},
	{"NIC Number", 15, func(a *models.MemberApplication) string { return a.NICNumber }},
	{"Email", 28, func(a *models.MemberApplication) string { return a.Email }},
	{"Phone (Personal)", 16, func(a *models.MemberApplication) string { return a.PhoneNumberPersonal }},
	{"WhatsApp", 16, func(a *models.MemberApplication) string { return a.WhatsappNumber }},
	{"Gender", 10, func(a *models.MemberApplication) string { return a.Gender }},
	{"Date of Birth", 14, func(a *models.MemberApplication) string { return a.DOB }},
	{"Category", 20, func(a *models.MemberApplication) string { return a.Category }},
	{"Designation", 24, func(a *models.MemberApplication) string { return a.Designation }},
	{"Province", 15, func(a *models.MemberApplication) string { return a.ProvinceWorkPlace }},
	{"District", 15, func(a *models.MemberApplication) string { return a.DistrictWorkPlace }},
	{"RDHS", 15, func(a *models.MemberApplication) string { return a.RDHS }},
	{"Institution", 28, func(a *models.MemberApplication) string { return a.Institution }},
	{"First Appointment", 16, func(a *models.MemberApplication) string { return a.FirstAppointmentDate }},
	{"Employment Number", 18, func(a *models.MemberApplication) string { return a.EmploymentNumber }},
	{"Nursing Council Reg.", 18, func(a *models.MemberApplication) string { return a.NursingCouncilRegistration }},
	{"Status", 10, func(a *models.MemberApplication) string { return a.Status }},
	{"Submitted", 18, func(a *models.MemberApplication) string { return a.CreatedAt.Format("2006-01-02 15:04") }},
}

// ExportApplicationsExcel builds an xlsx workbook from a filtered member
// list. The byte slice is ready to serve as a download.
func ExportApplicationsExcel(applications []models.MemberApplication) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Members"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, colName, colName, col.Width)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportColumns))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for rowIdx := range applications {
		app := &applications[rowIdx]
		for colIdx, col := range exportColumns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, col.Value(app)); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
			}
		}
	}

	// Freeze the header row
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
