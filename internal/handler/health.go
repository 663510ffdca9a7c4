package handler

import "net/http"

// HandleHealthcheck is the liveness probe: a static success payload, no
// auth, no dependencies.
//
// HTTP: GET /api/healthchecker
func HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "API case runner is up",
	})
}
