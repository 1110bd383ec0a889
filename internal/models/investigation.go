package models

// Exchange is a question and answer pair with one entity.
type Exchange struct {
	Question string `db:"question"`
	Answer   string `db:"answer"`
}

// Accusation names the culprit, weapon and motive.
//
// An Accusation produced from model output has passed validation against the case vocabularies.
type Accusation struct {
	SuspectID string `json:"suspect_id"`
	Weapon    string `json:"weapon"`
	Motive    string `json:"motive"`
	Reasoning string `json:"reasoning"`
}

// Verdict is the outcome of evaluating an accusation against the ground truth.
type Verdict struct {
	Accusation     Accusation
	AccusedName    string
	CorrectSuspect bool
	CorrectWeapon  bool
	CorrectMotive  bool
	Score          int
	TotalTurns     int
	Narrative      string
}

// Won reports whether the culprit was identified.
func (v Verdict) Won() bool {
	return v.CorrectSuspect
}
