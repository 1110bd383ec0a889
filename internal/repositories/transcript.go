package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/sqlite"
)

var ErrSessionNotFound = errors.NewSentinel("session not found")

// TranscriptRepository stores interrogation transcripts and verdicts.
type TranscriptRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewTranscriptRepository(db *sqlite.Database, logger *slog.Logger) *TranscriptRepository {
	return &TranscriptRepository{
		db:     db,
		logger: logger.With(slog.String("source", "TranscriptRepository")),
	}
}

// StartSession registers a game session. Starting an existing session is a no-op.
func (r *TranscriptRepository) StartSession(ctx context.Context, sessionID, caseID string) error {
	stmt := `INSERT INTO game_sessions (id, case_id) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, sessionID, caseID); err != nil {
		return errors.Wrap(err, "insert game session", slog.String("session_id", sessionID))
	}
	return nil
}

func (r *TranscriptRepository) RecordExchange(
	ctx context.Context,
	sessionID, suspectID string,
	order int,
	exchange models.Exchange,
	revised bool,
) error {
	stmt := `INSERT INTO exchanges (session_id, suspect_id, "order", question, answer, revised)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		sessionID, suspectID, order, exchange.Question, exchange.Answer, revised); err != nil {
		return errors.Wrap(err, "insert exchange",
			slog.String("session_id", sessionID),
			slog.String("suspect_id", suspectID),
			slog.Int("order", order))
	}
	return nil
}

func (r *TranscriptRepository) RecordVerdict(ctx context.Context, sessionID string, verdict models.Verdict) error {
	stmt := `INSERT INTO verdicts (session_id, suspect_id, weapon, motive, correct_suspect, correct_weapon,
                      correct_motive, score, total_turns, narrative)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	a := verdict.Accusation
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		sessionID, a.SuspectID, a.Weapon, a.Motive,
		verdict.CorrectSuspect, verdict.CorrectWeapon, verdict.CorrectMotive,
		verdict.Score, verdict.TotalTurns, verdict.Narrative); err != nil {
		return errors.Wrap(err, "insert verdict", slog.String("session_id", sessionID))
	}
	return nil
}

type verdictRow struct {
	SuspectID      string `db:"suspect_id"`
	Weapon         string `db:"weapon"`
	Motive         string `db:"motive"`
	CorrectSuspect bool   `db:"correct_suspect"`
	CorrectWeapon  bool   `db:"correct_weapon"`
	CorrectMotive  bool   `db:"correct_motive"`
	Score          int    `db:"score"`
	TotalTurns     int    `db:"total_turns"`
	Narrative      string `db:"narrative"`
}

// Get returns the journal of a session with exchanges ordered by suspect and turn.
func (r *TranscriptRepository) Get(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	var record models.SessionRecord

	stmt := `SELECT s.id, s.case_id, s.started, COUNT(e.id) AS exchange_count, v.score
FROM game_sessions s
         LEFT JOIN exchanges e ON e.session_id = s.id
         LEFT JOIN verdicts v ON v.session_id = s.id
WHERE s.id = ?
GROUP BY s.id`
	if err := r.db.ReadOnly.GetContext(ctx, &record.SessionSummary, stmt, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrSessionNotFound, "get session", slog.String("session_id", sessionID))
		}
		return nil, errors.Wrap(err, "get session", slog.String("session_id", sessionID))
	}

	stmt = `SELECT suspect_id, "order", question, answer, revised
FROM exchanges
WHERE session_id = ?
ORDER BY id`
	if err := r.db.ReadOnly.SelectContext(ctx, &record.Exchanges, stmt, sessionID); err != nil {
		return nil, errors.Wrap(err, "select exchanges", slog.String("session_id", sessionID))
	}

	var row verdictRow
	stmt = `SELECT suspect_id, weapon, motive, correct_suspect, correct_weapon, correct_motive, score, total_turns,
       narrative
FROM verdicts
WHERE session_id = ?`
	err := r.db.ReadOnly.GetContext(ctx, &row, stmt, sessionID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, errors.Wrap(err, "get verdict", slog.String("session_id", sessionID))
	default:
		record.Verdict = &models.Verdict{
			Accusation: models.Accusation{
				SuspectID: row.SuspectID,
				Weapon:    row.Weapon,
				Motive:    row.Motive,
			},
			CorrectSuspect: row.CorrectSuspect,
			CorrectWeapon:  row.CorrectWeapon,
			CorrectMotive:  row.CorrectMotive,
			Score:          row.Score,
			TotalTurns:     row.TotalTurns,
			Narrative:      row.Narrative,
		}
	}

	return &record, nil
}

// ListSessions returns the most recently started sessions first.
func (r *TranscriptRepository) ListSessions(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	var sessions []models.SessionSummary
	stmt := `SELECT s.id, s.case_id, s.started, COUNT(e.id) AS exchange_count, v.score
FROM game_sessions s
         LEFT JOIN exchanges e ON e.session_id = s.id
         LEFT JOIN verdicts v ON v.session_id = s.id
GROUP BY s.id
ORDER BY s.started DESC, s.id
LIMIT ?`
	if err := r.db.ReadOnly.SelectContext(ctx, &sessions, stmt, limit); err != nil {
		return nil, errors.Wrap(err, "select sessions")
	}
	return sessions, nil
}
