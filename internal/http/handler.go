package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/profile"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/stats"
)

// StatsReader serves the admin dashboard.
type StatsReader interface {
	Overview(ctx context.Context, day time.Time, topN int) (stats.Overview, error)
}

type Handler struct {
	svc     *session.Service
	catalog *catalog.Catalog
	stats   StatsReader
	logger  *log.Logger
	now     func() time.Time
}

func NewHandler(svc *session.Service, cat *catalog.Catalog, st StatsReader, logger *log.Logger) *Handler {
	return &Handler{
		svc:     svc,
		catalog: cat,
		stats:   st,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type productRequest struct {
	ProductID int `json:"productId"`
}

func decodeProductID(r *http.Request) (int, error) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		return 0, err
	}
	if req.ProductID <= 0 {
		return 0, fmt.Errorf("%w: productId is required", errBadRequest)
	}
	return req.ProductID, nil
}

func pathProductID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid productId", errBadRequest)
	}
	return id, nil
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionId")
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Start(r.Context())
	h.respond(w, r, http.StatusCreated, sess, err)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, sess, err)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profile.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.svc.UpdateProfile(r.Context(), sessionID(r), in)
	h.respond(w, r, http.StatusOK, sess, err)
}

func (h *Handler) ToggleAccessibility(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ToggleAccessibility(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, sess, err)
}

type stageRequest struct {
	Stage session.Stage `json:"stage"`
}

func (h *Handler) SetStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.svc.SetStage(r.Context(), sessionID(r), req.Stage)
	h.respond(w, r, http.StatusOK, sess, err)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, products, err)
}

func (h *Handler) SelectProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := decodeProductID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.svc.SelectProduct(r.Context(), sessionID(r), productID)
	h.respond(w, r, http.StatusOK, sess, err)
}

func (h *Handler) GetTrial(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Trial(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *Handler) Consent(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Consent(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, sess, err)
}

func (h *Handler) StartScan(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.StartScan(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusAccepted, sess, err)
}

func (h *Handler) TryItem(w http.ResponseWriter, r *http.Request) {
	productID, err := decodeProductID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.svc.TryItem(r.Context(), sessionID(r), productID); err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Trial(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Cart(r.Context(), sessionID(r))
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, err := decodeProductID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.svc.AddToCart(r.Context(), sessionID(r), productID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.GetCart(w, r)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, err := pathProductID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.svc.RemoveFromCart(r.Context(), sessionID(r), productID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.GetCart(w, r)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in session.CheckoutInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.svc.Checkout(r.Context(), sessionID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Order)
}

func (h *Handler) CatalogProducts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("gender")
	if raw == "" {
		writeJSON(w, http.StatusOK, h.catalog.All())
		return
	}
	g, err := profile.ParseGender(raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.ForGender(profile.Profile{Gender: g}.CatalogGender()))
}

func (h *Handler) CatalogProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathProductID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, ok := h.catalog.ByID(id)
	if !ok {
		h.fail(w, r, session.ErrProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AdminStats serves the dashboard for ?day=YYYY-MM-DD (default today) with
// the ?top most tried items.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	day := h.now()
	if raw := q.Get("day"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: invalid day %q", errBadRequest, raw))
			return
		}
		day = d
	}

	top := stats.DefaultTopItems
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(w, r, fmt.Errorf("%w: invalid top %q", errBadRequest, raw))
			return
		}
		top = n
	}

	overview, err := h.stats.Overview(r.Context(), day, top)
	h.respond(w, r, http.StatusOK, overview, err)
}
