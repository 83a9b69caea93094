package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"logship/internal/api/handlers"
)

type Dependencies struct {
	IngestHandler *handlers.IngestHandler
	HealthHandler *handlers.HealthHandler
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.POST("/api/logs", wrap(deps.IngestHandler.Handle))
	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	return router
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}
