// internal/handler/table_handler.go
package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/service"
)

// StatsReader is the read side the handlers depend on
type StatsReader interface {
	ListTables(ctx context.Context) ([]service.TableInfo, error)
	GetTable(ctx context.Context, name string) (*model.Table, error)
	GetCampaignDetailsWithStats(ctx context.Context, campaignID int) (*service.CampaignDetails, error)
}

// TableHandler serves the persisted tables
type TableHandler struct {
	Stats  StatsReader
	Logger *zap.Logger
}

// ListTables returns every persisted table with its row count
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Stats.ListTables(r.Context())
	if err != nil {
		h.Logger.Error("failed to list tables", zap.Error(err))
		http.Error(w, "failed to list tables: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if tables == nil {
		tables = []service.TableInfo{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": tables,
	})
}

// GetTable streams one table as CSV
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := h.Stats.GetTable(r.Context(), name)
	if err != nil {
		var nf *appErrors.ErrTableNotFound
		if errors.As(err, &nf) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.Logger.Error("failed to load table", zap.String("table", name), zap.Error(err))
		http.Error(w, "failed to load table: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+t.Name+`.csv"`)
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		h.Logger.Warn("failed to write table", zap.String("table", name), zap.Error(err))
		return
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		h.Logger.Warn("failed to write table", zap.String("table", name), zap.Error(err))
	}
}
