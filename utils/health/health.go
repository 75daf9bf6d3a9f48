package health

import (
	"log"
	"net/http"

	"github.com/kacperborowieckb/gen-csv/utils/json"
)

type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// Handler reports "ok" for the named service if the server is running.
func Handler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{Status: "ok", Service: service}

		if err := json.WriteJSON(w, http.StatusOK, status); err != nil {
			log.Printf("Error writing health check response: %v", err)
		}
	}
}
