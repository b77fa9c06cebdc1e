package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/juniorleague/api-server/internals/auction"
	"github.com/juniorleague/api-server/internals/auth"
	"github.com/juniorleague/api-server/internals/history"
	"github.com/juniorleague/api-server/internals/livebid"
	"github.com/juniorleague/api-server/internals/players"
	"github.com/juniorleague/api-server/internals/roster"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	ErrCouldNotParseBody = errors.New("could not parse request body")
	ErrCouldNotReadBody  = errors.New("could not read request body")
	ErrInvalidID         = errors.New("invalid id")
)

type httpResp struct {
	Status  int         `json:"status"`
	IsError bool        `json:"is_error"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func getBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ErrCouldNotReadBody
	}
	err = json.Unmarshal(body, v)
	if err != nil {
		return ErrCouldNotParseBody
	}
	return nil
}

func sendResponse(rw http.ResponseWriter, resp httpResp) {
	out, err := json.Marshal(resp)
	if err != nil {
		rw.Header().Set("Content-Type", "application/json; charset=utf-8")
		rw.WriteHeader(http.StatusInternalServerError)
		rw.Write([]byte(`{"status": 500, "is_error": true, "error": "could not marshal response"}`))
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(resp.Status)
	rw.Write(out)
}

func sendMessage(rw http.ResponseWriter, status int, message string) {
	sendResponse(rw, httpResp{Status: status, Data: map[string]interface{}{"message": message}})
}

var badRequest = []error{
	ErrCouldNotParseBody,
	ErrCouldNotReadBody,
	ErrInvalidID,
	auction.ErrPlayerNameRequired,
	auth.ErrMissingFields,
	players.ErrNameRequired,
	players.ErrYearRequired,
	players.ErrNothingToProject,
	roster.ErrTeamFieldsRequired,
	roster.ErrInvalidContractType,
	roster.ErrInvalidSalary,
	roster.ErrYearRequired,
	livebid.ErrBidAmountRequired,
	livebid.ErrInvalidBidAmount,
	livebid.ErrPlayerRequired,
	livebid.ErrTeamRequired,
	history.ErrNoYear,
}

var notFound = []error{
	auction.ErrPlayerNotFound,
	players.ErrPlayerNotFound,
	roster.ErrTeamNotFound,
	roster.ErrPlayerNotFound,
	livebid.ErrPlayerNotFound,
	livebid.ErrTeamNotFound,
	livebid.ErrNoWinningBid,
}

var conflict = []error{
	auction.ErrAmbiguousPlayer,
	auth.ErrUserExists,
	roster.ErrTeamExists,
	livebid.ErrBidTooLow,
	livebid.ErrPlayerRostered,
}

var unprocessable = []error{
	roster.ErrRosterViolation,
	livebid.ErrOverBudget,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func statusFor(err error) int {
	switch {
	case isAny(err, badRequest):
		return http.StatusBadRequest
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, conflict):
		return http.StatusConflict
	case isAny(err, unprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// sendError maps a service error to its status. Ambiguous players and roster
// violations also carry the candidates or reasons as data.
func (app *App) sendError(rw http.ResponseWriter, err error) {
	resp := httpResp{Status: statusFor(err), IsError: true, Error: err.Error()}

	var ambiguous *auction.AmbiguousPlayerError
	var violation *roster.RosterViolationError
	switch {
	case errors.As(err, &ambiguous):
		resp.Data = map[string]interface{}{"candidates": ambiguous.Candidates}
	case errors.As(err, &violation):
		resp.Data = map[string]interface{}{"reasons": violation.Reasons}
	}

	if resp.Status == http.StatusInternalServerError {
		app.Log.Error("Request failed", zap.Error(err))
		resp.Error = "internal server error"
	}
	sendResponse(rw, resp)
}

func urlID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}
