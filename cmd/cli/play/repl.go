// Package play runs an interrogation in the terminal.
package play

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/myrjola/whodunit/internal/autopilot"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prompts"
)

const help = `Commands:
  /suspects                        list the suspects
  /suspect <id>                    question another suspect
  /status                          show turns and progress
  /accuse                          show the accusation options
  /accuse <id> <weapon> <motive>   make the final accusation
  /auto                            let the detective finish the case
  /reset                           start a new investigation
  /quit                            leave
Anything else is a question to the current suspect.`

// Session is one terminal session. It reads commands and questions line by line from In.
type Session struct {
	Game   *game.Game
	Config config.Game
	Logger *slog.Logger
	In     io.Reader
	Out    io.Writer

	styles styles
}

// Run reads lines until /quit or the end of input.
func (s *Session) Run(ctx context.Context) error {
	s.styles = newStyles(s.Out)
	s.printBanner()

	scanner := bufio.NewScanner(s.In)
	for {
		s.printPrompt()
		if !scanner.Scan() {
			s.println("")
			return errors.Wrap(scanner.Err(), "read input")
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			s.interrogate(ctx, line)
			continue
		}
		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch command {
		case "/quit", "/exit":
			s.println(s.styles.notice.Render("Case file closed."))
			return nil
		case "/help":
			s.println(help)
		case "/suspects":
			s.printSuspects()
		case "/suspect":
			s.switchSuspect(rest)
		case "/status":
			s.printStatus()
		case "/accuse":
			s.accuse(ctx, rest)
		case "/auto":
			s.runAutopilot(ctx)
		case "/reset":
			s.Game.Reset()
			s.println(s.styles.notice.Render("A new investigation has begun."))
		default:
			s.println(s.styles.failure.Render(fmt.Sprintf("Unknown command %s. Type /help for the commands.", command)))
		}
	}
}

func (s *Session) println(text string) {
	_, _ = fmt.Fprintln(s.Out, text)
}

func (s *Session) printBanner() {
	c := s.Game.Case()
	s.println(s.styles.banner.Render(strings.ToUpper(c.Title())))
	s.println(prompts.Briefing(c))
	s.println("")
	s.println(s.styles.notice.Render("Type /help for the commands."))
}

func (s *Session) printPrompt() {
	status := s.Game.Status()
	prompt := fmt.Sprintf("[%d/%d] [You → %s]: ", status.TotalTurns, status.MaxTurns, s.Game.CurrentSuspect().Name)
	_, _ = fmt.Fprint(s.Out, s.styles.prompt.Render(prompt))
}

func (s *Session) interrogate(ctx context.Context, question string) {
	answer, err := s.Game.Interrogate(ctx, question)
	if err != nil {
		s.Logger.LogAttrs(ctx, slog.LevelError, "interrogation failed", errors.SlogError(err))
		s.println(s.styles.failure.Render("The suspect did not answer. Try again."))
		return
	}
	if answer == game.TimeOutMessage || answer == game.CaseClosedMessage {
		s.println(s.styles.notice.Render(answer))
		return
	}
	s.println(s.styles.speaker.Render(s.Game.CurrentSuspect().Name+":") + " " + answer)
}

func (s *Session) printSuspects() {
	current := s.Game.CurrentSuspect().ID
	for _, st := range s.Game.Status().Suspects {
		profile, _ := s.Game.Case().Suspect(st.ID)
		marker := " "
		if st.ID == current {
			marker = "*"
		}
		s.println(fmt.Sprintf("%s %s: %s (%s), %d questions", marker, st.ID, st.Name, profile.Role.Label(), st.Turns))
	}
}

func (s *Session) switchSuspect(id string) {
	if !s.Game.SwitchSuspect(id) {
		s.println(s.styles.failure.Render(fmt.Sprintf("Unknown suspect %q. Type /suspects for the list.", id)))
		return
	}
	s.println(s.styles.notice.Render("Now questioning " + s.Game.CurrentSuspect().Name + "."))
}

func (s *Session) printStatus() {
	status := s.Game.Status()
	s.println(fmt.Sprintf("Turns: %d/%d, %d remaining", status.TotalTurns, status.MaxTurns, status.TurnsRemaining))
	s.println(fmt.Sprintf("Questioned: %s", strings.Join(status.Engaged, ", ")))
	if status.AccusationMade {
		s.println(fmt.Sprintf("Accusation made, score %d/100.", status.FinalScore))
	}
}

func (s *Session) printAccusationOptions() {
	c := s.Game.Case()
	s.println("Usage: /accuse <suspect id> <weapon> <motive>")
	s.println("Suspects: " + strings.Join(c.SuspectIDs(), ", "))
	s.println("Weapons:  " + strings.Join(c.Weapons(), ", "))
	s.println("Motives:  " + strings.Join(c.Motives(), ", "))
}

// parseAccusation splits "<id> <weapon> <motive>". The weapon may contain spaces, the motive is the last word.
func parseAccusation(args string) (id, weapon, motive string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 3 { //nolint:mnd // id, weapon and motive.
		return "", "", "", false
	}
	return fields[0], strings.Join(fields[1:len(fields)-1], " "), fields[len(fields)-1], true
}

func (s *Session) accuse(ctx context.Context, args string) {
	id, weapon, motive, ok := parseAccusation(args)
	if !ok {
		s.printAccusationOptions()
		return
	}
	verdict, err := s.Game.MakeAccusation(ctx, id, weapon, motive)
	if errors.Is(err, game.ErrAccusationMade) {
		s.println(s.styles.notice.Render(game.CaseClosedMessage))
		return
	}
	if err != nil {
		s.Logger.LogAttrs(ctx, slog.LevelError, "accusation failed", errors.SlogError(err))
		s.println(s.styles.failure.Render("The judge could not be reached. Try again."))
		return
	}
	s.printVerdict(verdict)
}

func (s *Session) printVerdict(v models.Verdict) {
	outcome := "CASE UNSOLVED"
	if v.Won() {
		outcome = "CASE SOLVED"
	}
	check := func(ok bool) string {
		if ok {
			return "correct"
		}
		return "wrong"
	}
	body := strings.Join([]string{
		fmt.Sprintf("%s - score %d/100 after %d turns", outcome, v.Score, v.TotalTurns),
		fmt.Sprintf("Suspect: %s (%s)", v.AccusedName, check(v.CorrectSuspect)),
		fmt.Sprintf("Weapon:  %s (%s)", v.Accusation.Weapon, check(v.CorrectWeapon)),
		fmt.Sprintf("Motive:  %s (%s)", v.Accusation.Motive, check(v.CorrectMotive)),
	}, "\n")
	s.println(s.styles.verdict.Render(body))
	s.println(v.Narrative)
}

func (s *Session) runAutopilot(ctx context.Context) {
	observer := func(e autopilot.Event) {
		switch e.Kind {
		case autopilot.EventPhase:
			s.println(s.styles.banner.Render(e.Phase.String()))
		case autopilot.EventAsked:
			name := e.SuspectID
			if profile, ok := s.Game.Case().Suspect(e.SuspectID); ok {
				name = profile.Name
			}
			s.println(s.styles.speaker.Render("Detective → "+name+":") + " " + e.Question)
			s.println(s.styles.speaker.Render(name+":") + " " + e.Answer)
		case autopilot.EventSkipped:
			s.println(s.styles.notice.Render("No fresh question for " + e.SuspectID + ", moving on."))
		case autopilot.EventDeduced:
			s.println(fmt.Sprintf("Deduction: %s with the %s over %s. %s",
				e.Accusation.SuspectID, e.Accusation.Weapon, e.Accusation.Motive, e.Accusation.Reasoning))
		case autopilot.EventVerdict:
		}
	}
	report, err := autopilot.New(s.Game, s.Config, s.Logger, observer).Run(ctx)
	switch {
	case errors.Is(err, game.ErrAccusationMade):
		s.println(s.styles.notice.Render(game.CaseClosedMessage))
	case errors.Is(err, autopilot.ErrDeductionFailed):
		s.println(s.styles.failure.Render("The detective could not reach a conclusion. Keep asking questions."))
	case err != nil:
		s.Logger.LogAttrs(ctx, slog.LevelError, "autopilot failed", errors.SlogError(err))
		s.println(s.styles.failure.Render("The detective was interrupted. Try again."))
	default:
		s.println(s.styles.notice.Render(fmt.Sprintf("%d questions asked, %d skipped.", report.Asked, report.Skipped)))
		s.printVerdict(report.Verdict)
	}
}
