package models

// RecordedExchange is an Exchange as stored in the journal.
type RecordedExchange struct {
	SuspectID string `db:"suspect_id"`
	Order     int    `db:"order"`
	Revised   bool   `db:"revised"`
	Exchange
}

// SessionSummary describes one stored game session.
type SessionSummary struct {
	ID            string `db:"id"`
	CaseID        string `db:"case_id"`
	Started       string `db:"started"`
	ExchangeCount int    `db:"exchange_count"`
	// Score is nil until an accusation is evaluated.
	Score *int `db:"score"`
}

// SessionRecord is the full journal of one game session.
type SessionRecord struct {
	SessionSummary
	Exchanges []RecordedExchange
	Verdict   *Verdict
}
