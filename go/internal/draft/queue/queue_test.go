package queue

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	entries map[uuid.UUID]models.QueueEntry
	drafted map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: map[uuid.UUID]models.QueueEntry{}, drafted: map[uuid.UUID]bool{}}
}

func (f *fakeRepo) ListQueue(_ context.Context, draftID, memberID uuid.UUID) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	for _, e := range f.entries {
		if e.DraftID == draftID && e.MemberID == memberID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeRepo) InsertQueueEntry(_ context.Context, e *models.QueueEntry) error {
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeRepo) DeleteQueueEntry(_ context.Context, id uuid.UUID) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeRepo) UpdateQueueRanks(_ context.Context, entries []models.QueueEntry) error {
	for _, e := range entries {
		cur := f.entries[e.ID]
		cur.Rank = e.Rank
		f.entries[e.ID] = cur
	}
	return nil
}

func (f *fakeRepo) DeletePlayerFromQueues(_ context.Context, draftID, playerID uuid.UUID) ([]uuid.UUID, error) {
	var members []uuid.UUID
	for id, e := range f.entries {
		if e.DraftID == draftID && e.PlayerID == playerID {
			delete(f.entries, id)
			members = append(members, e.MemberID)
		}
	}
	return members, nil
}

func (f *fakeRepo) IsPlayerDrafted(_ context.Context, _, playerID uuid.UUID) (bool, error) {
	return f.drafted[playerID], nil
}

func playerIDs(entries []models.QueueEntry) []uuid.UUID {
	out := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		out[i] = e.PlayerID
	}
	return out
}

func ranks(entries []models.QueueEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Rank
	}
	return out
}

func setup(t *testing.T, n int) (*App, *fakeRepo, *models.Draft, uuid.UUID, []uuid.UUID) {
	t.Helper()
	repo := newFakeRepo()
	app := NewApp(repo, clockwork.NewFakeClock())
	d := &models.Draft{ID: uuid.New(), LeagueID: uuid.New()}
	member := uuid.New()
	players := make([]uuid.UUID, n)
	for i := range players {
		players[i] = uuid.New()
		_, err := app.Add(context.Background(), d, member, players[i])
		require.NoError(t, err)
	}
	return app, repo, d, member, players
}

func TestAddAppends(t *testing.T) {
	app, repo, d, member, players := setup(t, 3)
	ctx := context.Background()

	list, err := app.List(ctx, d.ID, member)
	require.NoError(t, err)
	assert.Equal(t, players, playerIDs(list))
	assert.Equal(t, []int{1, 2, 3}, ranks(list))

	_, err = app.Add(ctx, d, member, players[1])
	assert.ErrorIs(t, err, drafterr.ErrAlreadyQueued)

	taken := uuid.New()
	repo.drafted[taken] = true
	_, err = app.Add(ctx, d, member, taken)
	assert.ErrorIs(t, err, drafterr.ErrAlreadyDrafted)
}

func TestRemoveKeepsRanksDense(t *testing.T) {
	app, _, d, member, players := setup(t, 4)
	ctx := context.Background()

	list, _ := app.List(ctx, d.ID, member)
	require.NoError(t, app.Remove(ctx, d.ID, member, list[1].ID))

	list, _ = app.List(ctx, d.ID, member)
	assert.Equal(t, []uuid.UUID{players[0], players[2], players[3]}, playerIDs(list))
	assert.Equal(t, []int{1, 2, 3}, ranks(list))

	err := app.Remove(ctx, d.ID, member, uuid.New())
	assert.ErrorIs(t, err, drafterr.ErrQueueEntryMissing)
}

func TestReorder(t *testing.T) {
	cases := []struct {
		name    string
		from    int
		newRank int
		want    []int
	}{
		{"down", 0, 3, []int{1, 2, 0, 3}},
		{"up", 3, 1, []int{3, 0, 1, 2}},
		{"same", 1, 2, []int{0, 1, 2, 3}},
		{"past end clamps", 0, 99, []int{1, 2, 3, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _, d, member, players := setup(t, 4)
			ctx := context.Background()
			list, _ := app.List(ctx, d.ID, member)

			_, err := app.Reorder(ctx, d.ID, member, list[tc.from].ID, tc.newRank)
			require.NoError(t, err)

			list, _ = app.List(ctx, d.ID, member)
			want := make([]uuid.UUID, len(tc.want))
			for i, idx := range tc.want {
				want[i] = players[idx]
			}
			assert.Equal(t, want, playerIDs(list))
			assert.Equal(t, []int{1, 2, 3, 4}, ranks(list))
		})
	}
}

func TestReorderRejectsBadRank(t *testing.T) {
	app, _, d, member, _ := setup(t, 2)
	list, _ := app.List(context.Background(), d.ID, member)

	_, err := app.Reorder(context.Background(), d.ID, member, list[0].ID, 0)
	assert.Equal(t, drafterr.KindInvalidArgument, drafterr.KindOf(err))
}

func TestNextAvailableSkipsDrafted(t *testing.T) {
	app, repo, d, member, players := setup(t, 3)
	ctx := context.Background()

	repo.drafted[players[1]] = true

	next, err := app.NextAvailable(ctx, d.ID, member)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, players[0], next.PlayerID)

	repo.drafted[players[0]] = true
	next, err = app.NextAvailable(ctx, d.ID, member)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, players[2], next.PlayerID)

	repo.drafted[players[2]] = true
	next, err = app.NextAvailable(ctx, d.ID, member)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestPurgePlayerAcrossMembers(t *testing.T) {
	app, _, d, memberX, players := setup(t, 3)
	ctx := context.Background()

	memberY := uuid.New()
	_, err := app.Add(ctx, d, memberY, players[1])
	require.NoError(t, err)
	_, err = app.Add(ctx, d, memberY, players[2])
	require.NoError(t, err)

	affected, err := app.PurgePlayer(ctx, d.ID, players[1])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{memberX, memberY}, affected)

	x, _ := app.List(ctx, d.ID, memberX)
	assert.Equal(t, []uuid.UUID{players[0], players[2]}, playerIDs(x))
	assert.Equal(t, []int{1, 2}, ranks(x))

	y, _ := app.List(ctx, d.ID, memberY)
	assert.Equal(t, []uuid.UUID{players[2]}, playerIDs(y))
	assert.Equal(t, []int{1}, ranks(y))
}
