package players

import (
	"context"
	"testing"

	"github.com/juniorleague/api-server/internals/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	ids []uint
}

func (r *recordingInvalidator) InvalidatePlayer(id uint) error {
	r.ids = append(r.ids, id)
	return nil
}

func newService(t *testing.T) (*PlayerService, *recordingInvalidator) {
	t.Helper()
	inv := &recordingInvalidator{}
	return New(testutil.DB(t), testutil.Logger(), inv), inv
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCreate_RequiresName(t *testing.T) {
	ps, _ := newService(t)

	_, err := ps.Create(context.Background(), CreatePlayerRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	ps, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Aaron Judge", "Julio Rodriguez", "Jose Ramirez"} {
		_, err := ps.Create(ctx, CreatePlayerRequest{Name: name})
		require.NoError(t, err)
	}

	found, err := ps.Search(ctx, "JUD")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Aaron Judge", found[0].Name)

	found, err = ps.Search(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, found, 3)

	all, err := ps.Search(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Aaron Judge", all[0].Name)
	assert.Equal(t, "Julio Rodriguez", all[2].Name)
}

func TestSearch_WildcardsAreLiteral(t *testing.T) {
	ps, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Aaron Judge", "Ka_Boom"} {
		_, err := ps.Create(ctx, CreatePlayerRequest{Name: name})
		require.NoError(t, err)
	}

	found, err := ps.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = ps.Search(ctx, "a_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ka_Boom", found[0].Name)
}

func TestGet_NotFound(t *testing.T) {
	ps, _ := newService(t)

	_, err := ps.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestUpsertProjection_DerivesHitterValue(t *testing.T) {
	ps, inv := newService(t)
	ctx := context.Background()
	player, err := ps.Create(ctx, CreatePlayerRequest{Name: "Aaron Judge", Position: "OF"})
	require.NoError(t, err)

	proj, err := ps.UpsertProjection(ctx, player.ID, ProjectionRequest{
		Year:        2025,
		BattingAvg:  floatPtr(0.300),
		HomeRuns:    intPtr(30),
		RBIs:        intPtr(100),
		StolenBases: intPtr(10),
	})
	require.NoError(t, err)
	require.NotNil(t, proj.ProjectedValue)
	assert.Equal(t, 51.0, *proj.ProjectedValue)
	assert.Equal(t, []uint{player.ID}, inv.ids)
}

func TestUpsertProjection_DerivesPitcherValue(t *testing.T) {
	ps, _ := newService(t)
	ctx := context.Background()
	player, err := ps.Create(ctx, CreatePlayerRequest{Name: "Tarik Skubal", Position: "SP"})
	require.NoError(t, err)

	proj, err := ps.UpsertProjection(ctx, player.ID, ProjectionRequest{
		Year:       2025,
		Wins:       intPtr(15),
		ERA:        floatPtr(3.00),
		Strikeouts: intPtr(200),
	})
	require.NoError(t, err)
	assert.Equal(t, 17.0, *proj.ProjectedValue)
}

func TestUpsertProjection_ReplacesSameSeason(t *testing.T) {
	ps, _ := newService(t)
	ctx := context.Background()
	player, err := ps.Create(ctx, CreatePlayerRequest{Name: "Gunnar Henderson"})
	require.NoError(t, err)

	_, err = ps.UpsertProjection(ctx, player.ID, ProjectionRequest{Year: 2025, ProjectedValue: floatPtr(20)})
	require.NoError(t, err)
	_, err = ps.UpsertProjection(ctx, player.ID, ProjectionRequest{Year: 2025, ProjectedValue: floatPtr(24), Source: "steamer"})
	require.NoError(t, err)

	var values []float64
	require.NoError(t, ps.DB.Table("projected_stats").Where("player_id = ?", player.ID).Pluck("projected_value", &values).Error)
	assert.Equal(t, []float64{24}, values)
}

func TestUpsertProjection_Validation(t *testing.T) {
	ps, _ := newService(t)
	ctx := context.Background()
	player, err := ps.Create(ctx, CreatePlayerRequest{Name: "Empty Stats"})
	require.NoError(t, err)

	_, err = ps.UpsertProjection(ctx, player.ID, ProjectionRequest{})
	assert.ErrorIs(t, err, ErrYearRequired)

	_, err = ps.UpsertProjection(ctx, player.ID, ProjectionRequest{Year: 2025})
	assert.ErrorIs(t, err, ErrNothingToProject)

	_, err = ps.UpsertProjection(ctx, player.ID+100, ProjectionRequest{Year: 2025, ProjectedValue: floatPtr(5)})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
