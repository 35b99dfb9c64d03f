package handlers

import (
	"net/http"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

// StatsSummary reports how many requests sit in each lifecycle state.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	items, err := a.Requests.GetAllRequests(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	counts := map[domain.GenerationStatus]int{
		domain.StatusPending:    0,
		domain.StatusProcessing: 0,
		domain.StatusCompleted:  0,
		domain.StatusFailed:     0,
	}
	for _, item := range items {
		counts[item.Status]++
	}
	a.json(w, http.StatusOK, map[string]any{
		"total":      len(items),
		"pending":    counts[domain.StatusPending],
		"processing": counts[domain.StatusProcessing],
		"completed":  counts[domain.StatusCompleted],
		"failed":     counts[domain.StatusFailed],
	})
}
