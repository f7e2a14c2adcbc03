package cart

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"NepKart/internal/catalog"
	"NepKart/pkg/kit"
)

// Server exposes the cart store over HTTP. Every handler responds with the
// full cart view so clients can re-render without a second round trip.
type Server struct {
	Store   *Store
	Catalog catalog.Store
	Log     *zap.Logger
}

type View struct {
	Items      []Item `json:"items"`
	IsOpen     bool   `json:"is_open"`
	TotalPrice int64  `json:"total_price"`
	TotalItems int    `json:"total_items"`
}

func (s *Server) ViewHandler() http.HandlerFunc   { return s.view }
func (s *Server) AddHandler() http.HandlerFunc    { return s.add }
func (s *Server) UpdateHandler() http.HandlerFunc { return s.update }
func (s *Server) RemoveHandler() http.HandlerFunc { return s.remove }
func (s *Server) ClearHandler() http.HandlerFunc  { return s.clear }
func (s *Server) ToggleHandler() http.HandlerFunc { return s.toggle }

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.currentView())
}

type addReq struct {
	ProductID int64 `json:"product_id"`
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	p, ok, err := s.Catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("catalog lookup failed", zap.Error(err), zap.Int64("product_id", req.ProductID))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "unknown product", map[string]any{"product_id": req.ProductID})
		return
	}

	s.Store.Dispatch(Add{Product: p})
	kit.WriteJSON(w, http.StatusOK, s.currentView())
}

type updateReq struct {
	Quantity int `json:"quantity"`
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", nil)
		return
	}

	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	s.Store.Dispatch(SetQuantity{ProductID: id, Quantity: req.Quantity})
	kit.WriteJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", nil)
		return
	}

	s.Store.Dispatch(Remove{ProductID: id})
	kit.WriteJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.Store.Dispatch(Clear{})
	kit.WriteJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	s.Store.Dispatch(Toggle{})
	kit.WriteJSON(w, http.StatusOK, s.currentView())
}

func (s *Server) currentView() View {
	st := s.Store.Snapshot()
	items := st.Items
	if items == nil {
		items = []Item{}
	}
	return View{
		Items:      items,
		IsOpen:     st.Open,
		TotalPrice: st.TotalPrice(),
		TotalItems: st.TotalItems(),
	}
}
