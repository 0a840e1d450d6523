package meme

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/memequiz-backend/internal/data/repos/testutil"
	types "github.com/yungbote/memequiz-backend/internal/domain"
	pkgerrors "github.com/yungbote/memequiz-backend/internal/pkg/errors"
)

func TestGenerationRepoRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewGenerationRepo(db, testutil.Logger(t))

	gen := &types.MemeGeneration{
		InputType:             "topic",
		Topic:                 "kubernetes",
		MemeType:              "video",
		NumMemes:              2,
		TotalGenerated:        2,
		SuccessfulGenerations: 1,
		FailedGenerations:     1,
		Memes: []types.GeneratedMeme{
			{URL: "https://media.tenor.com/a.mp4", MemeType: "video", Source: "tenor", Note: "AI generation unavailable"},
		},
	}
	_, err := repo.Create(ctx, tx, gen)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, tx, gen.ID)
	require.NoError(t, err)
	require.Len(t, got.Memes, 1)
	assert.Equal(t, "tenor", got.Memes[0].Source)
	assert.Equal(t, 1, got.FailedGenerations)

	_, err = repo.GetByID(ctx, tx, uuid.New())
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

	_, err = repo.Create(ctx, tx, nil)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}

func TestGenerationRepoCountersAndTrending(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewGenerationRepo(db, testutil.Logger(t))

	userID := uuid.New()
	quiet := testutil.SeedMemeGeneration(t, ctx, tx, nil)
	loud := testutil.SeedMemeGeneration(t, ctx, tx, &userID)

	require.NoError(t, repo.IncrementCounter(ctx, tx, quiet.ID, "view_count"))
	require.NoError(t, repo.IncrementCounter(ctx, tx, quiet.ID, "view_count"))
	require.NoError(t, repo.IncrementCounter(ctx, tx, loud.ID, "share_count"))
	assert.ErrorIs(t, repo.IncrementCounter(ctx, tx, loud.ID, "topic"), pkgerrors.ErrInvalidArgument)
	assert.ErrorIs(t, repo.IncrementCounter(ctx, tx, uuid.New(), "share_count"), pkgerrors.ErrNotFound)

	ranked, err := repo.Trending(ctx, tx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, loud.ID, ranked[0].ID)
	assert.Equal(t, 1, ranked[0].ShareCount)
	assert.Equal(t, 2, ranked[1].ViewCount)

	owned, err := repo.ListRecentOwned(ctx, tx, 20)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, loud.ID, owned[0].ID)
	require.Len(t, owned[0].Memes, 1)

	require.NoError(t, tx.Model(quiet).Update("category", "Programming").Error)
	byCat, err := repo.ListByCategory(ctx, tx, "Programming", 5)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, quiet.ID, byCat[0].ID)
}
