package handlers

import (
	"context"
	"net/http"
	"time"
)

func (a *App) HealthStatus(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"message":   "Application is healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *App) HealthDB(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)
	if a.DB == nil {
		a.json(w, http.StatusInternalServerError, map[string]string{"status": "Database connection is not healthy", "timestamp": now})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := a.DB.Ping(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("database health check failed")
		a.json(w, http.StatusInternalServerError, map[string]string{"status": "Database connection is not healthy", "timestamp": now})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "Database connection is healthy", "timestamp": now})
}

func (a *App) Greet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"message": "Hello from Paint-by-Numbers API!"})
}
