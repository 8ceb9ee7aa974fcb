package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/helper"
	"docqa/internal/models"
)

// Asker answers questions against an index.
type Asker interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
	AskWithContext(ctx context.Context, question string, history []models.Turn) (*models.Answer, error)
}

// Mode selects between conversational answering and single-shot answering.
type Mode string

const (
	Conversational Mode = config.ModeConversational
	SingleShot     Mode = config.ModeSingleShot
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Conversational, SingleShot:
		return m, nil
	case "":
		return Conversational, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, Conversational, SingleShot)
	}
}

// IsExitCommand reports whether line is one of the exit keywords. The
// comparison is exact: "Exit" or " q" are questions.
func IsExitCommand(line string) bool {
	return slices.Contains(models.ExitKeywords, line)
}

// Session is one interactive question/answer loop.
type Session struct {
	asker   Asker
	history *History
	mode    Mode
	in      *bufio.Reader
	out     io.Writer
	logger  zerolog.Logger
}

func NewSession(asker Asker, history *History, mode Mode, in *bufio.Reader, out io.Writer) *Session {
	logger := log.Logger
	if id, err := helper.GenerateUUID(); err == nil {
		logger = log.With().Str("session", id).Logger()
	}
	return &Session{asker: asker, history: history, mode: mode, in: in, out: out, logger: logger}
}

// History returns the turns the session currently remembers.
func (s *Session) History() []models.Turn {
	return s.history.Turns()
}

// Run reads questions until an exit keyword or end of input. The first
// failed question ends the session with its error.
func (s *Session) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, models.UserPrompt)
		line, err := helper.ReadLine(s.in)
		if errors.Is(err, io.EOF) {
			s.logger.Debug().Msg("Input closed")
			return nil
		}
		if err != nil {
			return err
		}
		if IsExitCommand(line) {
			s.logger.Debug().Str("command", line).Msg("Session ended")
			return nil
		}

		if err := s.turn(ctx, line); err != nil {
			return err
		}
	}
}

func (s *Session) turn(ctx context.Context, question string) error {
	if s.mode == SingleShot {
		answer, err := s.asker.Ask(ctx, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Question:", question)
		fmt.Fprintln(s.out, "Answer:", answer.Content)
		fmt.Fprintln(s.out, models.AnswerSeparator)
		return nil
	}

	answer, err := s.asker.AskWithContext(ctx, question, s.history.Turns())
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Answer:", answer.Content)
	fmt.Fprintln(s.out, models.AnswerSeparator)
	s.history.Record(models.Turn{Question: question, Answer: answer.Content})
	s.logger.Debug().Str("standalone", answer.StandaloneQuestion).Int("sources", len(answer.Sources)).Int("history", len(s.history.turns)).Msg("Answered question")
	return nil
}
