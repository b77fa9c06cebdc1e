package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/juniorleague/api-server/internals/history"
)

func (app *App) importer() *history.Importer {
	return history.New(app.DB, app.Log, app.Auction)
}

// ImportHistory takes the season spreadsheet as the raw CSV body.
func (app *App) ImportHistory(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		app.sendError(w, fmt.Errorf("%w: year query parameter is required", history.ErrNoYear))
		return
	}

	sheet, err := history.ParseWideCSV(r.Body, year)
	if err != nil {
		app.sendError(w, fmt.Errorf("%w: %v", ErrCouldNotParseBody, err))
		return
	}

	stats, err := app.importer().Import(r.Context(), sheet, year)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: stats})
}

func (app *App) GetKeeperCandidates(w http.ResponseWriter, r *http.Request) {
	keepers, err := app.importer().KeeperCandidates(r.Context())
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: keepers})
}

func (app *App) GetDuplicateNames(w http.ResponseWriter, r *http.Request) {
	names, err := app.importer().DuplicateNames(r.Context())
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: names})
}

func (app *App) GetTeamSpending(w http.ResponseWriter, r *http.Request) {
	seasons, err := app.importer().TeamSpending(r.Context())
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: seasons})
}

// GetSalaryChanges accepts an optional ?limit=.
func (app *App) GetSalaryChanges(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			app.sendError(w, fmt.Errorf("%w: invalid limit %q", ErrCouldNotParseBody, raw))
			return
		}
		limit = n
	}

	changes, err := app.importer().SalaryChanges(r.Context())
	if err != nil {
		app.sendError(w, err)
		return
	}
	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: changes})
}
