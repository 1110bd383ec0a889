package models

// Role is the hidden part an entity plays in the case. It is never shown to the detective.
type Role string

const (
	RoleKiller     Role = "killer"
	RoleAccomplice Role = "accomplice"
	RoleInnocent   Role = "innocent"
)

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleKiller, RoleAccomplice, RoleInnocent:
		return true
	default:
		return false
	}
}

// Label is the neutral description used in prompts and evaluations.
func (r Role) Label() string {
	switch r {
	case RoleKiller:
		return "primary suspect"
	case RoleAccomplice:
		return "accessory"
	case RoleInnocent:
		return "witness"
	default:
		return string(r)
	}
}

// EntityProfile is a role-played party who can be questioned.
//
// Profiles are loaded once at startup and shared read-only by every game.
type EntityProfile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Role        Role     `yaml:"role"`
	Persona     string   `yaml:"persona"`
	PublicStory string   `yaml:"public_story"`
	Secret      string   `yaml:"secret"`
	Redlines    []string `yaml:"redlines"`
	Portrait    string   `yaml:"portrait"`
}

// Victim is the public briefing about the victim.
type Victim struct {
	Name        string `yaml:"name"`
	TimeOfDeath string `yaml:"time_of_death"`
	Location    string `yaml:"location"`
	Cause       string `yaml:"cause"`
}

// GroundTruth is the hidden solution of the case. It is consulted only when evaluating an accusation and,
// through its redlines, by the safety review.
type GroundTruth struct {
	CulpritID string   `yaml:"culprit_id"`
	Weapon    string   `yaml:"weapon"`
	Motive    string   `yaml:"motive"`
	Timeline  []string `yaml:"timeline"`
	Redlines  []string `yaml:"redlines"`
}
