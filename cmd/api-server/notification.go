package main

import (
	"net/http"
)

func (app *App) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlID(r, "id")
	if err != nil {
		app.sendError(w, err)
		return
	}

	notifications, err := app.Notifications.List(r.Context(), teamID)
	if err != nil {
		app.sendError(w, err)
		return
	}
	sendResponse(w, httpResp{Status: http.StatusOK, Data: notifications})
}

func (app *App) HandleUpdateNotificationStatus(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlID(r, "id")
	if err != nil {
		app.sendError(w, err)
		return
	}

	if err := app.Notifications.MarkSeen(r.Context(), teamID); err != nil {
		app.sendError(w, err)
		return
	}
	sendMessage(w, http.StatusOK, "Notification status of this team updated successfully")
}
