package main

import (
	"net/http"
)

func (app *App) initHandlers() {
	app.R.Get("/ws", app.handleWebSocket)

	app.R.Post("/auth/login", app.Login)
	app.R.Post("/auth/signup", app.SignUp)
	app.R.Post("/auth/logout", app.Middleware(http.HandlerFunc(app.Logout)))

	app.R.Get("/players", app.SearchPlayers)
	app.R.Post("/players", app.Middleware(http.HandlerFunc(app.CreatePlayer)))
	app.R.Put("/players/{id}/projection", app.Middleware(http.HandlerFunc(app.UpsertProjection)))

	app.R.Get("/auction/recommendation", app.GetRecommendation)
	app.R.Get("/auction/board", app.GetBoard)
	app.R.Post("/auction/bids", app.Middleware(http.HandlerFunc(app.SubmitBid)))
	app.R.Get("/auction/bids/{playerID}", app.GetBidHistory)
	app.R.Post("/auction/bids/{playerID}/award", app.Middleware(http.HandlerFunc(app.AwardPlayer)))

	app.R.Get("/teams", app.ListTeams)
	app.R.Post("/teams", app.Middleware(http.HandlerFunc(app.RegisterTeam)))
	app.R.Get("/teams/{id}", app.GetTeamInfo)
	app.R.Get("/teams/{id}/budget", app.GetBudget)
	app.R.Get("/teams/{id}/timeline", app.GetTimeline)
	app.R.Get("/teams/{id}/notifications", app.Middleware(http.HandlerFunc(app.HandleGetNotifications)))
	app.R.Post("/teams/{id}/notifications/seen", app.Middleware(http.HandlerFunc(app.HandleUpdateNotificationStatus)))

	app.R.Post("/contracts", app.Middleware(http.HandlerFunc(app.CreateContract)))

	app.R.Post("/history/import", app.Middleware(http.HandlerFunc(app.ImportHistory)))
	app.R.Get("/history/keepers", app.GetKeeperCandidates)
	app.R.Get("/history/duplicates", app.GetDuplicateNames)
	app.R.Get("/history/spending", app.GetTeamSpending)
	app.R.Get("/history/salary-changes", app.GetSalaryChanges)

	app.R.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("I am Healthy"))
	})
}
