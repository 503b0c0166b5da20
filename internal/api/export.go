package api

import (
	"fmt"
	"net/http"
	"time"

	"foodhub/internal/metrics"
	"foodhub/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reservations"

// handleExport streams the reservation book as an xlsx workbook.
// Cancelled rows are included unless filtered out via the same
// include_cancelled switch the list endpoint uses.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_export")

	includeCancelled := r.URL.Query().Get("include_cancelled") != "0"
	reservations, err := s.reservations.List(r.Context(), includeCancelled)
	if err != nil {
		s.respondError(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		s.respondError(w, err)
		return
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Name", "Email", "Phone", "Date", "Time", "People",
		"Occasion", "Meal", "Mode", "Payment Mode", "Payment Status",
		"Status", "Created At",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, res := range reservations {
		row := i + 2
		values := []any{
			res.ID, res.Name, res.Email, res.Phone, res.Date, res.Time, res.People,
			res.Occasion, res.MealType, res.DeliveryOption, res.PaymentMode, res.PaymentStatus,
			res.Status, res.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "D", 24)
	_ = f.SetColWidth(exportSheet, "E", "F", 12)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s.xlsx", time.Now().Format(models.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream export")
	}
}
