package main

import (
	"encoding/json"
	"net/http"
)

type health struct {
	Status  string `json:"status"`
	CaseID  string `json:"case_id"`
	Players int    `json:"players"`
}

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health{
		Status:  "ok",
		CaseID:  app.caseFile.ID(),
		Players: app.games.len(),
	})
}
