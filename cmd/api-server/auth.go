package main

import (
	"net/http"

	"github.com/juniorleague/api-server/internals/auth"
)

func (app *App) Login(w http.ResponseWriter, r *http.Request) {
	var loginDetails auth.LoginRequestBody
	if err := getBody(r, &loginDetails); err != nil {
		app.sendError(w, err)
		return
	}

	token, err := app.Auth.Login(loginDetails)
	if err != nil {
		app.sendError(w, err)
		return
	}

	sendResponse(w, httpResp{Status: http.StatusOK, Data: map[string]interface{}{"data": token, "message": "Logged in successfully"}})
}

func (app *App) SignUp(w http.ResponseWriter, r *http.Request) {
	var signupDetails auth.SignUpRequestBody
	if err := getBody(r, &signupDetails); err != nil {
		app.sendError(w, err)
		return
	}

	if _, err := app.Auth.SignUp(signupDetails); err != nil {
		app.sendError(w, err)
		return
	}

	sendMessage(w, http.StatusCreated, "User created successfully")
}

func (app *App) Logout(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int)
	token := r.Context().Value(tokenKey).(string)

	if err := app.Auth.Logout(userID, token); err != nil {
		app.sendError(w, err)
		return
	}

	sendMessage(w, http.StatusOK, "Logged out successfully")
}
