package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"

	"github.com/gorilla/mux"
)

// OpsHandler serves the internal operations endpoints on a separate port:
// health, leadership status, and a manual status recalculation for when an
// operator cannot wait for the next tick.
type OpsHandler struct {
	auctionRepo    domain.AuctionRepository
	leaderElection domain.LeaderElection
	instanceID     string
	log            logger.Logger
}

func NewOpsHandler(auctionRepo domain.AuctionRepository, leaderElection domain.LeaderElection,
	instanceID string, log logger.Logger) *OpsHandler {
	return &OpsHandler{
		auctionRepo:    auctionRepo,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		log:            log,
	}
}

func (h *OpsHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ops/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ops/leader", h.Leader).Methods(http.MethodGet)
	r.HandleFunc("/ops/recalculate", h.Recalculate).Methods(http.MethodPost)
	return r
}

func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "auction-service",
		"instance":  h.instanceID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *OpsHandler) Leader(w http.ResponseWriter, r *http.Request) {
	isLeader, err := h.leaderElection.IsLeader(r.Context(), h.instanceID)
	if err != nil {
		h.log.Error("Leadership check failed", "error", err)
		http.Error(w, "leadership check failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"instance":  h.instanceID,
		"is_leader": isLeader,
	})
}

func (h *OpsHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	rows, err := h.auctionRepo.RecalculateStatuses(r.Context())
	if err != nil {
		h.log.Error("Manual status recalculation failed", "error", err)
		http.Error(w, "recalculation failed", http.StatusInternalServerError)
		return
	}

	h.log.Info("Manual status recalculation", "rows_changed", rows)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows_changed": rows,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
