package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *repositories.TranscriptRepository {
	t.Helper()
	return repositories.NewTranscriptRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
}

func TestTranscriptRepository_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.StartSession(ctx, "game-1", "mansion_murder_01"))
	// Starting twice keeps the original row.
	require.NoError(t, repo.StartSession(ctx, "game-1", "mansion_murder_01"))
	require.NoError(t, repo.RecordExchange(ctx, "game-1", "s1", 1,
		models.Exchange{Question: "Where were you at 23:15?", Answer: "In my room."}, false))
	require.NoError(t, repo.RecordExchange(ctx, "game-1", "s2", 1,
		models.Exchange{Question: "Did you see Lydia?", Answer: "I cannot say."}, true))
	require.NoError(t, repo.RecordExchange(ctx, "game-1", "s1", 2,
		models.Exchange{Question: "Who inherits?", Answer: "I do."}, false))

	record, err := repo.Get(ctx, "game-1")
	require.NoError(t, err)
	require.Equal(t, "game-1", record.ID)
	require.Equal(t, "mansion_murder_01", record.CaseID)
	require.NotEmpty(t, record.Started)
	require.Equal(t, 3, record.ExchangeCount)
	require.Nil(t, record.Score)
	require.Nil(t, record.Verdict)
	require.Equal(t, []models.RecordedExchange{
		{SuspectID: "s1", Order: 1, Exchange: models.Exchange{Question: "Where were you at 23:15?", Answer: "In my room."}},
		{SuspectID: "s2", Order: 1, Revised: true, Exchange: models.Exchange{Question: "Did you see Lydia?", Answer: "I cannot say."}},
		{SuspectID: "s1", Order: 2, Exchange: models.Exchange{Question: "Who inherits?", Answer: "I do."}},
	}, record.Exchanges)

	verdict := models.Verdict{
		Accusation:     models.Accusation{SuspectID: "s1", Weapon: "brass candlestick", Motive: "inheritance"},
		CorrectSuspect: true,
		CorrectWeapon:  true,
		CorrectMotive:  true,
		Score:          100,
		TotalTurns:     3,
		Narrative:      "Case closed.",
	}
	require.NoError(t, repo.RecordVerdict(ctx, "game-1", verdict))

	record, err = repo.Get(ctx, "game-1")
	require.NoError(t, err)
	require.NotNil(t, record.Score)
	require.Equal(t, 100, *record.Score)
	require.Equal(t, &verdict, record.Verdict)
}

func TestTranscriptRepository_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "exchange for unknown session",
			run: func() error {
				return repo.RecordExchange(ctx, "missing", "s1", 1, models.Exchange{Question: "q", Answer: "a"}, false)
			},
		},
		{
			name: "verdict for unknown session",
			run: func() error {
				return repo.RecordVerdict(ctx, "missing", models.Verdict{Score: 10})
			},
		},
		{
			name: "duplicate exchange order",
			run: func() error {
				if err := repo.StartSession(ctx, "dup", "c"); err != nil {
					return err
				}
				exchange := models.Exchange{Question: "q", Answer: "a"}
				if err := repo.RecordExchange(ctx, "dup", "s1", 1, exchange, false); err != nil {
					return err
				}
				return repo.RecordExchange(ctx, "dup", "s1", 1, exchange, false)
			},
		},
		{
			name: "zero order",
			run: func() error {
				if err := repo.StartSession(ctx, "zero", "c"); err != nil {
					return err
				}
				return repo.RecordExchange(ctx, "zero", "s1", 0, models.Exchange{Question: "q", Answer: "a"}, false)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.run())
		})
	}

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestTranscriptRepository_ListSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)

	sessions, err := repo.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, sessions)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.StartSession(ctx, id, "mansion_murder_01"))
	}
	require.NoError(t, repo.RecordExchange(ctx, "b", "s3", 1, models.Exchange{Question: "q", Answer: "a"}, false))

	sessions, err = repo.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	sessions, err = repo.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	counts := map[string]int{}
	for _, s := range sessions {
		counts[s.ID] = s.ExchangeCount
	}
	require.Equal(t, map[string]int{"a": 0, "b": 1, "c": 0}, counts)
}
