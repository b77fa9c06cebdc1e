package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/internals/history"
	"github.com/juniorleague/api-server/internals/livebid"
	"github.com/juniorleague/api-server/internals/testutil"
	"github.com/juniorleague/api-server/pkg/conf"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	IsError bool            `json:"is_error"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := conf.Load(t.TempDir())
	require.NoError(t, err)
	return newApp(cfg, testutil.Logger(), testutil.DB(t), testutil.KV(t))
}

func do(t *testing.T, app *App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.R.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func login(t *testing.T, app *App) string {
	t.Helper()
	code, _ := do(t, app, http.MethodPost, "/auth/signup", "", map[string]string{
		"user_name": "commish", "mail_id": "commish@league.test", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"user_name": "commish", "password": "pw",
	})
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Data
}

func message(t *testing.T, env envelope) string {
	t.Helper()
	var data struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Message
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.R.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I am Healthy", rec.Body.String())
}

func TestRegisterTeam(t *testing.T) {
	app := newTestApp(t)

	code, _ := do(t, app, http.MethodPost, "/teams", "", map[string]string{"name": "Aces", "owner": "Alice"})
	assert.Equal(t, http.StatusUnauthorized, code)

	token := login(t, app)

	code, env := do(t, app, http.MethodPost, "/teams", token, map[string]string{"name": "Aces", "owner": "Alice"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Team added successfully!", message(t, env))

	code, env = do(t, app, http.MethodPost, "/teams", token, map[string]string{"name": "aces", "owner": "Bob"})
	assert.Equal(t, http.StatusConflict, code)
	assert.True(t, env.IsError)

	code, env = do(t, app, http.MethodPost, "/teams", token, map[string]string{"name": "Bombers", "owner": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please fill in both fields", env.Error)

	code, env = do(t, app, http.MethodGet, "/teams", "", nil)
	require.Equal(t, http.StatusOK, code)
	var teams []db.Team
	require.NoError(t, json.Unmarshal(env.Data, &teams))
	require.Len(t, teams, 1)
	assert.Equal(t, "Alice", teams[0].Owner)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	code, _ := do(t, app, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, http.MethodPost, "/teams", token, map[string]string{"name": "Aces", "owner": "Alice"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRecommendation(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodGet, "/auction/recommendation?player_name=", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please enter a player name", env.Error)

	code, _ = do(t, app, http.MethodGet, "/auction/recommendation?player_name=Nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	team := testutil.Team(t, app.DB, "Aces", "Alice")
	judge := testutil.Player(t, app.DB, "Aaron Judge", "OF")
	for year, salary := range map[int]int{2022: 40, 2023: 44, 2024: 48} {
		require.NoError(t, app.DB.Create(&db.HistoricalAuction{
			PlayerID: judge.ID, TeamID: team.ID, Year: year, Salary: salary, ContractType: db.ContractAuction,
		}).Error)
	}

	code, env = do(t, app, http.MethodGet, "/auction/recommendation?player_name=aaron%20judge", "", nil)
	require.Equal(t, http.StatusOK, code)

	var rec struct {
		RecommendedBid int    `json:"recommended_bid"`
		Confidence     string `json:"confidence"`
		SampleSize     int    `json:"sample_size"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, 44, rec.RecommendedBid)
	assert.Equal(t, "high", rec.Confidence)
	assert.Equal(t, 3, rec.SampleSize)

	testutil.Player(t, app.DB, "Aaron Nola", "SP")
	testutil.Player(t, app.DB, "Aaron Civale", "SP")
	code, env = do(t, app, http.MethodGet, "/auction/recommendation?player_name=aaron", "", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, string(env.Data), "candidates")
}

func TestSubmitBid(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	aces := testutil.Team(t, app.DB, "Aces", "Alice")
	bombers := testutil.Team(t, app.DB, "Bombers", "Bob")
	judge := testutil.Player(t, app.DB, "Aaron Judge", "OF")

	code, env := do(t, app, http.MethodPost, "/auction/bids", token, map[string]interface{}{
		"player_id": judge.ID, "team_id": aces.ID, "bid_amount": "",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please enter a bid amount", env.Error)

	code, env = do(t, app, http.MethodPost, "/auction/bids", token, map[string]interface{}{
		"player_id": judge.ID, "team_id": aces.ID, "bid_amount": 25,
	})
	require.Equal(t, http.StatusCreated, code)
	var ack livebid.Ack
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	assert.Equal(t, "Bid of $25 recorded!", ack.Message)

	code, _ = do(t, app, http.MethodPost, "/auction/bids", token, map[string]interface{}{
		"player_id": judge.ID, "team_id": bombers.ID, "bid_amount": "25",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, app, http.MethodPost, "/auction/bids", token, map[string]interface{}{
		"player_id": judge.ID, "team_id": bombers.ID, "bid_amount": 500,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = do(t, app, http.MethodGet, "/auction/bids/"+uintStr(judge.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	var bids []livebid.BidView
	require.NoError(t, json.Unmarshal(env.Data, &bids))
	require.Len(t, bids, 1)
	assert.Equal(t, "Aces", bids[0].TeamName)

	code, env = do(t, app, http.MethodPost, "/auction/bids/"+uintStr(judge.ID)+"/award", token, map[string]int{"year": 2025})
	require.Equal(t, http.StatusCreated, code)
	var contract db.Contract
	require.NoError(t, json.Unmarshal(env.Data, &contract))
	assert.Equal(t, 25, contract.Salary)
	assert.Equal(t, aces.ID, contract.TeamID)

	code, env = do(t, app, http.MethodGet, "/teams/"+uintStr(aces.ID)+"/budget", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"remaining_budget":255`)
}

func TestBadID(t *testing.T) {
	app := newTestApp(t)
	code, _ := do(t, app, http.MethodGet, "/teams/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodGet, "/teams/42", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestImportHistory(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	sheet := "Aces,,\nPosition,Player,$\nOF,Aaron Judge,45\n"
	code, _ := do(t, app, http.MethodPost, "/history/import", token, sheet)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, app, http.MethodPost, "/history/import?year=2024", token, sheet)
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(env.Data), `"created_auctions":1`)

	code, env = do(t, app, http.MethodGet, "/history/keepers", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHistoryReports(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	for _, season := range []struct{ year, price int }{{2023, 30}, {2024, 45}} {
		sheet := fmt.Sprintf("Aces,,\nPosition,Player,$\nOF,Aaron Judge,%d\nC,Will Smith,8\n", season.price)
		code, _ := do(t, app, http.MethodPost, "/history/import?year="+strconv.Itoa(season.year), token, sheet)
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := do(t, app, http.MethodGet, "/history/spending", "", nil)
	require.Equal(t, http.StatusOK, code)
	var seasons []history.TeamSeason
	require.NoError(t, json.Unmarshal(env.Data, &seasons))
	require.Len(t, seasons, 2)
	assert.Equal(t, 38, seasons[0].Total)
	assert.Equal(t, 53, seasons[1].Total)

	code, env = do(t, app, http.MethodGet, "/history/salary-changes?limit=5", "", nil)
	require.Equal(t, http.StatusOK, code)
	var changes []history.SalaryChange
	require.NoError(t, json.Unmarshal(env.Data, &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, "Aaron Judge", changes[0].PlayerName)
	assert.Equal(t, 15, changes[0].Change)

	code, _ = do(t, app, http.MethodGet, "/history/salary-changes?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWebSocketReceivesBids(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.R)
	defer srv.Close()

	aces := testutil.Team(t, app.DB, "Aces", "Alice")
	judge := testutil.Player(t, app.DB, "Aaron Judge", "OF")
	soto := testutil.Player(t, app.DB, "Juan Soto", "OF")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?player_id=" + uintStr(judge.ID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		app.ClientsM.Lock()
		defer app.ClientsM.Unlock()
		return len(app.WS) == 1
	}, time.Second, 10*time.Millisecond)

	token := login(t, app)
	code, _ := do(t, app, http.MethodPost, "/auction/bids", token, map[string]interface{}{
		"player_id": soto.ID, "team_id": aces.ID, "bid_amount": 10,
	})
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, app, http.MethodPost, "/auction/bids", token, map[string]interface{}{
		"player_id": judge.ID, "team_id": aces.ID, "bid_amount": 30,
	})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event livebid.BidEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, judge.ID, event.PlayerID)
	assert.Equal(t, 30, event.BidAmount)
	assert.Equal(t, "Aces", event.TeamName)
}

func TestStalledWebSocketClientDoesNotBlockBids(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.R)
	defer srv.Close()

	aces := testutil.Team(t, app.DB, "Aces", "Alice")
	judge := testutil.Player(t, app.DB, "Aaron Judge", "OF")

	// Never read from this connection.
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		app.ClientsM.Lock()
		defer app.ClientsM.Unlock()
		return len(app.WS) == 1
	}, time.Second, 10*time.Millisecond)

	big, err := json.Marshal(livebid.BidEvent{PlayerID: judge.ID, PlayerName: strings.Repeat("x", 1<<20)})
	require.NoError(t, err)

	flooded := make(chan struct{})
	go func() {
		defer close(flooded)
		for i := 0; i < 128; i++ {
			app.BidPicker(big)
		}
	}()
	select {
	case <-flooded:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcasting to a stalled client blocked")
	}

	app.ClientsM.Lock()
	remaining := len(app.WS)
	app.ClientsM.Unlock()
	assert.Equal(t, 0, remaining)

	token := login(t, app)
	type result struct{ code int }
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/auction/bids", strings.NewReader(
			`{"player_id":`+uintStr(judge.ID)+`,"team_id":`+uintStr(aces.ID)+`,"bid_amount":10}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.R.ServeHTTP(rec, req)
		done <- result{rec.Code}
	}()
	select {
	case res := <-done:
		assert.Equal(t, http.StatusCreated, res.code)
	case <-time.After(5 * time.Second):
		t.Fatal("bid blocked behind a stalled websocket client")
	}
}
