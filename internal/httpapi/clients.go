package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/txengine/internal/csvio"
	"github.com/tinoosan/txengine/internal/errs"
	"github.com/tinoosan/txengine/internal/ledger"
)

// listClients handles GET /v1/clients. Rows are always sorted by client id.
func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	snap := s.reader.Snapshot(true)
	resp := listClientsResponse{Items: make([]balanceResponse, 0, len(snap))}
	for _, b := range snap {
		resp.Items = append(resp.Items, toBalanceResponse(b))
	}
	toJSON(w, http.StatusOK, resp)
}

// getClient handles GET /v1/clients/{id}.
func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 16)
	if err != nil {
		badRequest(w, "invalid client id")
		return
	}
	acc, err := s.reader.Account(ledger.ClientID(id))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w)
		} else {
			internalError(w, "failed to load client")
		}
		return
	}
	toJSON(w, http.StatusOK, toClientResponse(acc))
}

// reportCSV handles GET /v1/report.csv with the same output the CLI prints.
func (s *Server) reportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := csvio.WriteReport(w, s.reader.Snapshot(true)); err != nil {
		s.log.Error("write report", "err", err)
	}
}
