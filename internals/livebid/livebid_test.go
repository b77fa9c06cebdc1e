package livebid

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/internals/notification"
	"github.com/juniorleague/api-server/internals/roster"
	"github.com/juniorleague/api-server/internals/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	svc    *LiveBidService
	logs   *observer.ObservedLogs
	events []BidEvent
	mu     sync.Mutex
	player db.Player
	foo    db.Team
	bar    db.Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.DB(t)
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	f := &fixture{logs: logs}
	pub := PublisherFunc(func(_ context.Context, e BidEvent) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
		return nil
	})

	rs := roster.New(gdb, log, 280)
	f.svc = New(gdb, testutil.KV(t), log, rs, notification.New(gdb), pub, Options{MinimumBid: 1, MinimumIncrement: 1})
	f.player = testutil.Player(t, gdb, "Aaron Judge", "OF")
	f.foo = testutil.Team(t, gdb, "Foo", "Bar")
	f.bar = testutil.Team(t, gdb, "Baz", "Qux")
	return f
}

func (f *fixture) bid(t *testing.T, team db.Team, amount Amount) (*Ack, error) {
	t.Helper()
	return f.svc.Submit(context.Background(), SubmitBidRequest{PlayerID: f.player.ID, TeamID: team.ID, BidAmount: amount})
}

func TestAmount_UnmarshalNumberOrString(t *testing.T) {
	var req SubmitBidRequest
	require.NoError(t, json.Unmarshal([]byte(`{"player_id":1,"bid_amount":25}`), &req))
	assert.Equal(t, Amount("25"), req.BidAmount)

	require.NoError(t, json.Unmarshal([]byte(`{"player_id":1,"bid_amount":"25"}`), &req))
	assert.Equal(t, Amount("25"), req.BidAmount)

	require.NoError(t, json.Unmarshal([]byte(`{"player_id":1,"bid_amount":""}`), &req))
	assert.Equal(t, Amount(""), req.BidAmount)

	req.BidAmount = "7"
	require.NoError(t, json.Unmarshal([]byte(`{"player_id":1,"bid_amount":null}`), &req))
	assert.Equal(t, Amount(""), req.BidAmount)
}

func TestSubmit_RecordsBidAndAcknowledges(t *testing.T) {
	f := newFixture(t)

	ack, err := f.bid(t, f.foo, "25")
	require.NoError(t, err)
	assert.Equal(t, "Bid of $25 recorded!", ack.Message)
	assert.Equal(t, 25, ack.BidAmount)

	entries := f.logs.FilterMessage("Submitting bid").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, uint64(f.player.ID), fields["player_id"])
	assert.Equal(t, "25", fields["bid_amount"])

	winning, err := f.svc.Winning(context.Background(), f.player.ID)
	require.NoError(t, err)
	assert.Equal(t, ack.BidID, winning.ID)

	require.Len(t, f.events, 1)
	assert.Equal(t, EventBid, f.events[0].Type)
	assert.Equal(t, "Aaron Judge", f.events[0].PlayerName)
	assert.Equal(t, "Foo", f.events[0].TeamName)
	assert.NotEmpty(t, f.events[0].EventID)
}

func TestSubmit_EmptyAmountDoesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.bid(t, f.foo, "  ")
	require.ErrorIs(t, err, ErrBidAmountRequired)
	assert.Equal(t, "Please enter a bid amount", err.Error())

	assert.Zero(t, f.logs.Len())
	assert.Empty(t, f.events)
	history, err := f.svc.History(context.Background(), f.player.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bid(t, f.foo, "twenty")
	assert.ErrorIs(t, err, ErrInvalidBidAmount)

	_, err = f.bid(t, f.foo, "0")
	assert.ErrorIs(t, err, ErrBidTooLow)

	_, err = f.svc.Submit(ctx, SubmitBidRequest{TeamID: f.foo.ID, BidAmount: "5"})
	assert.ErrorIs(t, err, ErrPlayerRequired)

	_, err = f.svc.Submit(ctx, SubmitBidRequest{PlayerID: f.player.ID, BidAmount: "5"})
	assert.ErrorIs(t, err, ErrTeamRequired)

	_, err = f.svc.Submit(ctx, SubmitBidRequest{PlayerID: 999, TeamID: f.foo.ID, BidAmount: "5"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = f.svc.Submit(ctx, SubmitBidRequest{PlayerID: f.player.ID, TeamID: 999, BidAmount: "5"})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = f.bid(t, f.foo, "281")
	assert.ErrorIs(t, err, ErrOverBudget)

	ack, err := f.bid(t, f.foo, "$12")
	require.NoError(t, err)
	assert.Equal(t, 12, ack.BidAmount)
}

func TestSubmit_OutbidMovesWinnerAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bid(t, f.foo, "20")
	require.NoError(t, err)

	_, err = f.bid(t, f.bar, "20")
	require.ErrorIs(t, err, ErrBidTooLow)
	assert.Equal(t, "bid must be at least $21", err.Error())

	second, err := f.bid(t, f.bar, "21")
	require.NoError(t, err)

	history, err := f.svc.History(ctx, f.player.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].IsWinning)
	assert.True(t, history[1].IsWinning)
	assert.Equal(t, "Baz", history[1].TeamName)

	winning, err := f.svc.Winning(ctx, f.player.ID)
	require.NoError(t, err)
	assert.Equal(t, second.BidID, winning.ID)

	notes, err := notification.New(f.svc.DB).List(ctx, f.foo.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Your bid of $20 on Aaron Judge was outbid by Baz ($21)", notes[0].Description)

	require.Len(t, f.events, 2)
	assert.Equal(t, f.foo.ID, f.events[1].PreviousTeamID)

	board, err := f.svc.Board(ctx)
	require.NoError(t, err)
	assert.Equal(t, []BoardEntry{{PlayerID: f.player.ID, TeamID: f.bar.ID, BidAmount: 21}}, board)
}

func TestSubmit_RaisingOwnBidDoesNotNotify(t *testing.T) {
	f := newFixture(t)

	_, err := f.bid(t, f.foo, "10")
	require.NoError(t, err)
	_, err = f.bid(t, f.foo, "15")
	require.NoError(t, err)

	notes, err := notification.New(f.svc.DB).List(context.Background(), f.foo.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestSubmit_ConcurrentBidsKeepOneWinner(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(amount int) {
			defer wg.Done()
			team := f.foo
			if amount%2 == 0 {
				team = f.bar
			}
			_, _ = f.svc.Submit(context.Background(), SubmitBidRequest{
				PlayerID:  f.player.ID,
				TeamID:    team.ID,
				BidAmount: Amount(strconv.Itoa(amount)),
			})
		}(i)
	}
	wg.Wait()

	var winners int64
	require.NoError(t, f.svc.DB.Model(&db.AuctionBid{}).Where("player_id = ? AND is_winning = ?", f.player.ID, true).Count(&winners).Error)
	assert.Equal(t, int64(1), winners)
}

func TestAward_SignsWinningTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Award(ctx, f.player.ID, 2025)
	assert.ErrorIs(t, err, ErrNoWinningBid)

	_, err = f.bid(t, f.foo, "30")
	require.NoError(t, err)

	contract, err := f.svc.Award(ctx, f.player.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 30, contract.Salary)
	assert.Equal(t, f.foo.ID, contract.TeamID)
	assert.Equal(t, db.ContractAuction, contract.ContractType)

	budget, err := f.svc.Roster.RemainingBudget(ctx, f.foo.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, budget.RemainingBudget)

	board, err := f.svc.Board(ctx)
	require.NoError(t, err)
	assert.Empty(t, board)

	_, err = f.bid(t, f.bar, "40")
	assert.ErrorIs(t, err, ErrPlayerRostered)

	last := f.events[len(f.events)-1]
	assert.Equal(t, EventAward, last.Type)
	assert.Equal(t, 30, last.BidAmount)
}

func TestPublish_RunsWithPlayerUnlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var unlocked []bool
	f.svc.Events = PublisherFunc(func(_ context.Context, e BidEvent) error {
		f.svc.mu.Lock()
		l := f.svc.locks[e.PlayerID]
		f.svc.mu.Unlock()

		free := l.TryLock()
		if free {
			l.Unlock()
		}
		unlocked = append(unlocked, free)
		return nil
	})

	_, err := f.bid(t, f.foo, "25")
	require.NoError(t, err)
	_, err = f.svc.Award(ctx, f.player.ID, 2025)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, unlocked)
}
