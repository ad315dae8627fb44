package catalog

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

const maxCreateBody = 1 << 20

type Server struct {
	Service *Service
	Log     *zap.Logger

	// CreateLimiter throttles POST /api/items when set.
	CreateLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "Server is running"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.list)
		r.Get("/items/{id}", s.get)
		if s.CreateLimiter != nil {
			r.With(s.CreateLimiter.Middleware).Post("/items", s.create)
		} else {
			r.Post("/items", s.create)
		}
		r.Get("/stats", s.stats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "route not found", kit.PathDetails(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.Service.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid id parameter", kit.IDDetails(raw))
		return
	}

	it, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	n, err := decodeNewItem(w, r)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.writeError(w, r, err)
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", kit.CauseDetails(err))
		return
	}

	it, err := s.Service.Create(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, it)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Service.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, snap)
}

// createReq keeps fields untyped so a wrong JSON type is reported against
// the field rather than as a decode failure.
type createReq struct {
	Name     any `json:"name"`
	Category any `json:"category"`
	Price    any `json:"price"`
}

func decodeNewItem(w http.ResponseWriter, r *http.Request) (NewItem, error) {
	var req createReq
	if err := kit.DecodeStrict(w, r, maxCreateBody, &req); err != nil {
		return NewItem{}, err
	}

	// Wrong types fall through to Validate as empty or NaN values.
	name, _ := req.Name.(string)
	category, _ := req.Category.(string)
	price, isNum := req.Price.(float64)
	if !isNum {
		price = math.NaN()
	}

	n := NewItem{Name: name, Category: category, Price: price}
	return n, n.Validate()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *ValidationError
		nf *NotFoundError
	)

	switch {
	case errors.As(err, &ve):
		kit.WriteError(w, r, http.StatusBadRequest, ve.Error(), kit.FieldDetails(ve.Field))
	case errors.As(err, &nf):
		kit.WriteError(w, r, http.StatusNotFound, nf.Error(), kit.IDDetails(nf.ID))
	default:
		s.logger().Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
