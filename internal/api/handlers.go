package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/starford/metron/internal/account"
	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/calculator"
	"github.com/starford/metron/internal/checksum"
	"github.com/starford/metron/internal/conversionservice"
	"github.com/starford/metron/internal/parser"
	"github.com/starford/metron/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	conv     *conversionservice.Service
	accounts *account.Service
	events   *sse.Broker

	catalogOnce sync.Once
	catalogBody []byte
	catalogETag string
}

// NewHandler creates a new Handler. accounts and events may be nil, which
// disables the routes that need them.
func NewHandler(conv *conversionservice.Service, accounts *account.Service, events *sse.Broker) *Handler {
	return &Handler{conv: conv, accounts: accounts, events: events}
}

func (h *Handler) catalogPayload() ([]byte, string) {
	h.catalogOnce.Do(func() {
		body, _ := json.Marshal(CategoriesResponse{Categories: h.conv.Categories()})
		h.catalogBody = append(body, '\n')
		h.catalogETag = checksum.ETag(body)
	})
	return h.catalogBody, h.catalogETag
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories with their ordered units
//	@Tags			catalog
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"ETag from a previous response"
//	@Success		200	{object}	CategoriesResponse
//	@Success		304	"Catalog unchanged"
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	body, etag := h.catalogPayload()
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if match := r.Header.Get("If-None-Match"); match != "" && checksum.Matches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListUnits handles GET /api/categories/{category}/units.
//
//	@Summary		List the units of a category in display order
//	@Tags			catalog
//	@Produce		json
//	@Param			category	path		string	true	"Category id"
//	@Success		200			{object}	UnitsResponse
//	@Failure		404			{object}	errResponse
//	@Router			/categories/{category}/units [get]
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	units, err := h.conv.Units(category)
	if err != nil {
		if errors.Is(err, apperr.ErrUnrecognizedCategory) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
			return
		}
		writeError(w, r, "list units", err)
		return
	}
	writeJSON(w, http.StatusOK, UnitsResponse{Category: strings.ToLower(strings.TrimSpace(category)), Units: units})
}

// Convert handles POST /api/convert.
//
//	@Summary		Convert a value between two units
//	@Tags			convert
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConvertRequest	true	"Conversion"
//	@Success		200		{object}	ConvertResponse
//	@Failure		400		{object}	errResponse
//	@Router			/convert [post]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "convert", err)
		return
	}
	res, err := h.conv.Convert(r.Context(), req.engineRequest())
	if err != nil {
		writeError(w, r, "convert", err)
		return
	}
	writeJSON(w, http.StatusOK, newConvertResponse(res))
}

// ConvertQuery handles GET /api/convert.
//
//	@Summary		Convert a value given as query parameters
//	@Tags			convert
//	@Produce		json
//	@Param			category	query		string	true	"Category id"
//	@Param			from		query		string	true	"Source unit id"
//	@Param			to			query		string	true	"Target unit id"
//	@Param			value		query		string	false	"Value; junk reads as 0"
//	@Param			swap		query		bool	false	"Swap from and to"
//	@Success		200			{object}	ConvertResponse
//	@Failure		400			{object}	errResponse
//	@Router			/convert [get]
func (h *Handler) ConvertQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ConvertRequest{
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Value:    Value(parser.ParseValue(q.Get("value"))),
	}
	req.Swap, _ = strconv.ParseBool(q.Get("swap"))
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	res, err := h.conv.Convert(r.Context(), req.engineRequest())
	if err != nil {
		writeError(w, r, "convert", err)
		return
	}
	writeJSON(w, http.StatusOK, newConvertResponse(res))
}

// Calculate handles POST /api/calculator.
//
//	@Summary		Evaluate a calculator operation or key sequence
//	@Tags			calculator
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CalculatorRequest	true	"Operation or keys"
//	@Success		200		{object}	CalculatorResponse
//	@Failure		400		{object}	errResponse
//	@Router			/calculator [post]
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculatorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "calculate", err)
		return
	}

	if len(req.Keys) > 0 {
		display, err := calculator.NewKeypad().Run(req.Keys)
		if err != nil {
			writeError(w, r, "calculate", err)
			return
		}
		writeJSON(w, http.StatusOK, CalculatorResponse{Display: display})
		return
	}

	v, err := evaluate(req)
	if err != nil {
		writeError(w, r, "calculate", err)
		return
	}
	writeJSON(w, http.StatusOK, newCalculatorResponse(v))
}

func evaluate(req CalculatorRequest) (float64, error) {
	if calculator.IsBinary(req.Op) {
		return calculator.Binary(req.Op, req.X, req.Y), nil
	}
	if c, ok := calculator.Constant(req.Op); ok {
		return c, nil
	}
	angle, err := calculator.ParseAngle(req.Angle)
	if err != nil {
		return 0, err
	}
	return calculator.Unary(req.Op, req.X, angle)
}
