package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"magasin-api/internal/model"
	"magasin-api/internal/service"

	"github.com/xuri/excelize/v2"
)

// ExportHandler produces stock report downloads.
type ExportHandler struct {
	catalog *service.CatalogService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(catalog *service.CatalogService) *ExportHandler {
	return &ExportHandler{catalog: catalog}
}

var exportHeaders = []string{
	"Code IMO", "Nom Testeur", "Nom Equipement", "Designation",
	"Arborescence", "Categorie", "Nombre", "Mise En Marche", "Garantie",
}

func exportRow(e model.Equipement) []string {
	marche, garantie := "", ""
	if e.DateMiseEnMarche != nil {
		marche = e.DateMiseEnMarche.Format("2006-01-02")
	}
	if e.DateGarantie != nil {
		garantie = e.DateGarantie.Format("2006-01-02")
	}
	return []string{
		e.CodeIMO, e.NomTesteur, e.NomEquipement, e.Designation,
		e.Arborescence, e.Categorie, strconv.FormatInt(e.Nombre, 10),
		marche, garantie,
	}
}

// Equipements handles GET /api/v1/export/equipements?format=csv|xlsx
func (h *ExportHandler) Equipements(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	equipements, err := h.catalog.ListEquipements(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := make([][]string, 0, len(equipements))
	for _, e := range equipements {
		data = append(data, exportRow(e))
	}

	if format == "xlsx" {
		writeExcel(w, "Equipements", exportHeaders, data)
	} else {
		writeCSV(w, "equipements.csv", exportHeaders, data)
	}
}

// writeCSV writes the report as a CSV attachment.
func writeCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		http.Error(w, "Failed to write CSV headers", http.StatusInternalServerError)
		return
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			http.Error(w, "Failed to write CSV row", http.StatusInternalServerError)
			return
		}
	}
}

// writeExcel writes the report as an xlsx attachment.
func writeExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "Failed to create Excel sheet", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "Failed to create header style", http.StatusInternalServerError)
		return
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", sheetName))

	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}
}
