package main

import (
	"net/http"
	"time"

	"github.com/juniorleague/api-server/internals/livebid"
)

func (app *App) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := app.Auction.Recommend(r.Context(), r.URL.Query().Get("player_name"))
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: rec})
}

func (app *App) SubmitBid(w http.ResponseWriter, r *http.Request) {
	var req livebid.SubmitBidRequest
	if err := getBody(r, &req); err != nil {
		app.sendError(w, err)
		return
	}

	ack, err := app.LiveBid.Submit(r.Context(), req)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: ack})
}

func (app *App) GetBidHistory(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		app.sendError(w, err)
		return
	}

	bids, err := app.LiveBid.History(r.Context(), playerID)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: bids})
}

func (app *App) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := app.LiveBid.Board(r.Context())
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: board})
}

type awardRequest struct {
	Year int `json:"year"`
}

// AwardPlayer closes bidding on a player. The body is optional and defaults
// to the current season.
func (app *App) AwardPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := urlID(r, "playerID")
	if err != nil {
		app.sendError(w, err)
		return
	}

	req := awardRequest{}
	if r.ContentLength > 0 {
		if err := getBody(r, &req); err != nil {
			app.sendError(w, err)
			return
		}
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	contract, err := app.LiveBid.Award(r.Context(), playerID, req.Year)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusCreated, Data: contract})
}
