package api

import (
	"net/http"

	"contractor-lookup-go/api/websocket"
	"contractor-lookup-go/scrapers"
)

const maxImportRecords = 5000

type bulkImportRequest struct {
	Records []scrapers.LicenseRecord `json:"records"`
}

type bulkImportResponse struct {
	Received int `json:"received"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// handleBulkImport seeds the local store with previously collected records.
// Rows without a contractor name or license number are skipped.
func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	var req bulkImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Records) == 0 {
		jsonError(w, "no records", http.StatusBadRequest)
		return
	}
	if len(req.Records) > maxImportRecords {
		jsonError(w, "too many records", http.StatusRequestEntityTooLarge)
		return
	}

	imported, err := s.store.UpsertLicenses(r.Context(), req.Records)
	if err != nil {
		s.log.WithError(err).Error("Bulk import failed")
		jsonError(w, "import failed", http.StatusInternalServerError)
		return
	}

	s.log.WithField("imported", imported).Info("Bulk import complete")

	if s.hub != nil {
		s.hub.Publish(websocket.NewEvent(websocket.EventLicensesImported, websocket.LicensesImportedData{
			Received: len(req.Records),
			Imported: imported,
		}))
	}

	jsonOK(w, bulkImportResponse{
		Received: len(req.Records),
		Imported: imported,
		Skipped:  len(req.Records) - imported,
	})
}
