package main

import (
	"net/http"

	"github.com/juniorleague/api-server/internals/players"
)

func (app *App) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	found, err := app.Players.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: found})
}

func (app *App) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.CreatePlayerRequest
	if err := getBody(r, &req); err != nil {
		app.sendError(w, err)
		return
	}

	player, err := app.Players.Create(r.Context(), req)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: player})
}

func (app *App) UpsertProjection(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "id")
	if err != nil {
		app.sendError(w, err)
		return
	}

	var req players.ProjectionRequest
	if err := getBody(r, &req); err != nil {
		app.sendError(w, err)
		return
	}

	stats, err := app.Players.UpsertProjection(r.Context(), playerID, req)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: stats})
}
