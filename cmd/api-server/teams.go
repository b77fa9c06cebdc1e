package main

import (
	"net/http"

	"github.com/juniorleague/api-server/internals/roster"
)

func (app *App) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := app.Roster.ListTeams(r.Context())
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: teams})
}

func (app *App) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	var req roster.RegisterTeamRequest
	if err := getBody(r, &req); err != nil {
		app.sendError(w, err)
		return
	}

	team, err := app.Roster.RegisterTeam(r.Context(), req)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: map[string]interface{}{"message": roster.TeamAddedMessage, "team": team}})
}

func (app *App) GetTeamInfo(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlID(r, "id")
	if err != nil {
		app.sendError(w, err)
		return
	}

	info, err := app.Roster.TeamInfo(r.Context(), teamID)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: info})
}

func (app *App) GetBudget(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlID(r, "id")
	if err != nil {
		app.sendError(w, err)
		return
	}

	budget, err := app.Roster.RemainingBudget(r.Context(), teamID)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: budget})
}

func (app *App) GetTimeline(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlID(r, "id")
	if err != nil {
		app.sendError(w, err)
		return
	}

	timeline, err := app.Roster.ContractTimeline(r.Context(), teamID)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: timeline})
}

func (app *App) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req roster.CreateContractRequest
	if err := getBody(r, &req); err != nil {
		app.sendError(w, err)
		return
	}

	contract, err := app.Roster.CreateContract(r.Context(), req)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: contract})
}
