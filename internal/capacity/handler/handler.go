// Package handler exposes the capacity ledger's read projection.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opptak/internal/capacity"
	id "opptak/pkg/domain"
	"opptak/pkg/platform/httputil"
	"opptak/pkg/platform/sentinel"
)

type Handler struct {
	ledger *capacity.Ledger
	logger *slog.Logger
}

func New(ledger *capacity.Ledger, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/kindergartens/{kindergartenID}/availability", h.Availability)
}

// AvailabilityResponse reports capacity per age band for one kindergarten.
type AvailabilityResponse struct {
	KindergartenID string             `json:"kindergarten_id"`
	Bands          []BandAvailability `json:"bands"`
}

type BandAvailability struct {
	AgeBand     string `json:"age_band"`
	Capacity    int    `json:"capacity"`
	Occupied    int    `json:"occupied"`
	Available   int    `json:"available"`
	WaitingList int    `json:"waiting_list"`
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kgID, err := id.ParseKindergartenID(chi.URLParam(r, "kindergartenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := AvailabilityResponse{KindergartenID: kgID.String()}
	for _, band := range []id.AgeBand{id.BandToddler, id.BandPreschool} {
		avail, err := h.ledger.Availability(ctx, kgID, band)
		if err != nil {
			// A kindergarten may only run one of the two bands.
			continue
		}
		resp.Bands = append(resp.Bands, BandAvailability{
			AgeBand:     band.String(),
			Capacity:    avail.Capacity,
			Occupied:    avail.Occupied,
			Available:   avail.Available,
			WaitingList: avail.WaitingList,
		})
	}
	if len(resp.Bands) == 0 {
		httputil.WriteError(w, sentinel.ErrNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
