package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/autovault-agents/internal/passport"
	"github.com/xavierca1/autovault-agents/internal/usecase"
)

const minModelYear = 1950

type PassportHandler struct {
	Now func() time.Time
}

func NewPassportHandler() *PassportHandler {
	return &PassportHandler{Now: time.Now}
}

type PassportResponse struct {
	passport.Report
	GradeColor string `json:"gradeColor"`
	GradeLabel string `json:"gradeLabel"`
}

// Get handles GET /vehicles/{vehicleId}/passport.
func (h *PassportHandler) Get(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	in, err := parsePassportInput(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Code, err.Message)
		return
	}

	report := passport.GenerateAt(in, now)
	writeJSON(w, http.StatusOK, PassportResponse{
		Report:     report,
		GradeColor: passport.GradeColor(report.Grade),
		GradeLabel: passport.GradeLabel(report.Grade),
	})
}

func parsePassportInput(r *http.Request, now time.Time) (passport.Input, *usecase.DomainError) {
	q := r.URL.Query()
	in := passport.Input{
		VehicleID: chi.URLParam(r, "vehicleId"),
		Owner:     q.Get("owner"),
		Name:      q.Get("name"),
		Fuel:      q.Get("fuel"),
	}
	if strings.TrimSpace(in.VehicleID) == "" {
		return in, &usecase.DomainError{Code: "INVALID_VEHICLE", Message: "vehicleId is required"}
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < minModelYear || year > now.Year()+1 {
		return in, &usecase.DomainError{Code: "INVALID_YEAR", Message: "year must be a valid model year"}
	}
	in.Year = year

	if raw := q.Get("km"); raw != "" {
		km, err := strconv.Atoi(raw)
		if err != nil || km < 0 {
			return in, &usecase.DomainError{Code: "INVALID_KM", Message: "km must be a non-negative integer"}
		}
		in.KM = km
	}
	return in, nil
}
