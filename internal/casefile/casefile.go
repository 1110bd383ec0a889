// Package casefile loads the static catalogue of a case: the suspects who can be questioned, the accusation
// vocabulary, the hidden ground truth and the heuristics tuned for the case.
package casefile

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed blackwood.yaml
var blackwood []byte

var ErrInvalidCase = errors.NewSentinel("invalid case file")

// Evidence lists keywords per investigation topic. A topic is considered covered once any of its keywords appears
// in a suspect's answers.
type Evidence struct {
	Weapon   []string `yaml:"weapon"`
	Motive   []string `yaml:"motive"`
	Location []string `yaml:"location"`
	Time     []string `yaml:"time"`
}

type document struct {
	ID                 string                 `yaml:"id"`
	Title              string                 `yaml:"title"`
	Victim             models.Victim          `yaml:"victim"`
	Weapons            []string               `yaml:"weapons"`
	Motives            []string               `yaml:"motives"`
	Truth              models.GroundTruth     `yaml:"truth"`
	Suspects           []models.EntityProfile `yaml:"suspects"`
	Triggers           []string               `yaml:"triggers"`
	Evidence           Evidence               `yaml:"evidence"`
	SuggestedQuestions []string               `yaml:"suggested_questions"`
}

// Case is the immutable registry of one mystery. Accessors return copies so that callers cannot mutate it.
type Case struct {
	doc document
}

// Default returns the embedded Blackwood Mansion case.
func Default() (*Case, error) {
	c, err := Load(bytes.NewReader(blackwood))
	if err != nil {
		return nil, errors.Wrap(err, "load embedded case")
	}
	return c, nil
}

// LoadFile reads a case from a YAML file.
func LoadFile(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open case file", slog.String("path", path))
	}
	defer func() {
		_ = f.Close()
	}()
	c, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, "load case file", slog.String("path", path))
	}
	return c, nil
}

// Load decodes and validates a case from YAML.
func Load(r io.Reader) (*Case, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	for i := range doc.Triggers {
		doc.Triggers[i] = strings.ToLower(doc.Triggers[i])
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &Case{doc: doc}, nil
}

func (d *document) validate() error {
	if d.ID == "" {
		return errors.Wrap(ErrInvalidCase, "missing case id")
	}
	if len(d.Suspects) == 0 {
		return errors.Wrap(ErrInvalidCase, "no suspects", slog.String("case_id", d.ID))
	}
	seen := make(map[string]bool, len(d.Suspects))
	for _, s := range d.Suspects {
		if s.ID == "" || s.Name == "" {
			return errors.Wrap(ErrInvalidCase, "suspect without id or name", slog.String("case_id", d.ID))
		}
		if seen[s.ID] {
			return errors.Wrap(ErrInvalidCase, "duplicate suspect id", slog.String("suspect_id", s.ID))
		}
		seen[s.ID] = true
		if !s.Role.Valid() {
			return errors.Wrap(ErrInvalidCase, "unknown role",
				slog.String("suspect_id", s.ID), slog.String("role", string(s.Role)))
		}
	}
	if !seen[d.Truth.CulpritID] {
		return errors.Wrap(ErrInvalidCase, "culprit is not a suspect", slog.String("culprit_id", d.Truth.CulpritID))
	}
	if !slices.Contains(d.Weapons, d.Truth.Weapon) {
		return errors.Wrap(ErrInvalidCase, "true weapon missing from weapons", slog.String("weapon", d.Truth.Weapon))
	}
	if !slices.Contains(d.Motives, d.Truth.Motive) {
		return errors.Wrap(ErrInvalidCase, "true motive missing from motives", slog.String("motive", d.Truth.Motive))
	}
	return nil
}

// ID identifies the case.
func (c *Case) ID() string { return c.doc.ID }

// Title is the display title of the case.
func (c *Case) Title() string { return c.doc.Title }

// Victim is the public briefing.
func (c *Case) Victim() models.Victim { return c.doc.Victim }

// Suspects returns the suspect profiles in registry order.
func (c *Case) Suspects() []models.EntityProfile {
	out := make([]models.EntityProfile, len(c.doc.Suspects))
	for i, s := range c.doc.Suspects {
		out[i] = copyProfile(s)
	}
	return out
}

// SuspectIDs returns the suspect identifiers in registry order.
func (c *Case) SuspectIDs() []string {
	ids := make([]string, len(c.doc.Suspects))
	for i, s := range c.doc.Suspects {
		ids[i] = s.ID
	}
	return ids
}

// Suspect looks up a suspect by id.
func (c *Case) Suspect(id string) (models.EntityProfile, bool) {
	for _, s := range c.doc.Suspects {
		if s.ID == id {
			return copyProfile(s), true
		}
	}
	return models.EntityProfile{}, false
}

// Weapons is the closed weapon vocabulary.
func (c *Case) Weapons() []string { return slices.Clone(c.doc.Weapons) }

// Motives is the closed motive vocabulary.
func (c *Case) Motives() []string { return slices.Clone(c.doc.Motives) }

// Truth returns the hidden solution.
func (c *Case) Truth() models.GroundTruth {
	t := c.doc.Truth
	t.Timeline = slices.Clone(t.Timeline)
	t.Redlines = slices.Clone(t.Redlines)
	return t
}

// Triggers are lower-case fragments that send an answer through the safety review.
func (c *Case) Triggers() []string { return slices.Clone(c.doc.Triggers) }

// Evidence returns the keywords used to detect investigation gaps.
func (c *Case) Evidence() Evidence {
	e := c.doc.Evidence
	return Evidence{
		Weapon:   slices.Clone(e.Weapon),
		Motive:   slices.Clone(e.Motive),
		Location: slices.Clone(e.Location),
		Time:     slices.Clone(e.Time),
	}
}

// SuggestedQuestions are opening questions offered to human detectives.
func (c *Case) SuggestedQuestions() []string { return slices.Clone(c.doc.SuggestedQuestions) }

func copyProfile(p models.EntityProfile) models.EntityProfile {
	p.Redlines = slices.Clone(p.Redlines)
	return p
}
