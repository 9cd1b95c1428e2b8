// Package shell is the interactive command surface over a bot: a chat
// loop plus the memory commands (clear, stats, history, purge). It owns
// no memory state; every command maps onto a manager operation.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/neurochat/neurochat/bot"
	"github.com/neurochat/neurochat/memory"
)

const defaultPrompt = "you> "

// Shell drives one user's conversation from a terminal.
type Shell struct {
	bot    *bot.Bot
	userID string
	out    io.Writer
	rl     *readline.Instance

	// confirm asks a yes/no question; replaced in tests.
	confirm func(prompt string) bool

	quit bool
}

// New creates a shell for the given user.
func New(b *bot.Bot, userID string) *Shell {
	s := &Shell{
		bot:    b,
		userID: userID,
		out:    os.Stdout,
	}
	s.confirm = func(prompt string) bool {
		answer, err := s.ask(prompt)
		if err != nil {
			return false
		}
		return isYes(answer)
	}
	return s
}

// ask reads one answer line. While the chat loop is running, readline
// owns the terminal in raw mode, so the question has to go through it;
// outside the loop plain stdin works.
func (s *Shell) ask(question string) (string, error) {
	if s.rl != nil {
		s.rl.SetPrompt(question)
		defer s.rl.SetPrompt(defaultPrompt)
		return s.rl.Readline()
	}
	fmt.Fprint(s.out, question)
	var answer string
	fmt.Fscanln(os.Stdin, &answer)
	return answer, nil
}

func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

// Run reads lines until exit or EOF, dispatching commands and chat
// turns.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          defaultPrompt,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s.rl = rl
	defer func() { s.rl = nil }()

	s.printHeader()
	s.printHelp()

	for !s.quit {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := s.Execute(ctx, line); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	fmt.Fprintln(s.out, "bye")
	return nil
}

// Execute handles one input line: a command, or a chat turn.
func (s *Shell) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch strings.ToLower(line) {
	case "exit", "quit", "bye":
		s.quit = true
		return nil
	case "help", "h", "?":
		s.printHelp()
		return nil
	case "clear", "reset":
		s.bot.Memory().ResetSession(s.userID)
		fmt.Fprintln(s.out, "conversation cleared (long-term memory kept)")
		return nil
	case "stats", "info", "status":
		return s.showStats(ctx)
	case "history", "recent":
		s.showHistory()
		return nil
	case "delete", "purge":
		return s.purge(ctx)
	}

	return s.chat(ctx, line)
}

func (s *Shell) chat(ctx context.Context, message string) error {
	reply, err := s.bot.Chat(ctx, s.userID, message)
	if errors.Is(err, bot.ErrNoGenerator) {
		// No generation backend wired: run the memory flow and show
		// the ranked context instead of a reply.
		return s.inspect(ctx, message)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s> %s\n", s.bot.Character().Name, reply)
	return nil
}

// inspect retrieves and commits like a normal turn but prints the
// context block a generator would have received.
func (s *Shell) inspect(ctx context.Context, message string) error {
	mgr := s.bot.Memory()
	rc, err := mgr.Retrieve(ctx, s.userID, message)
	if err != nil {
		return err
	}
	if rc.Degraded {
		fmt.Fprintln(s.out, "(memory unavailable, continuing without recall)")
	}
	if rc.Empty() {
		fmt.Fprintln(s.out, "(no context yet)")
	} else {
		fmt.Fprintln(s.out, rc.Format())
	}
	if _, warn := mgr.Commit(ctx, s.userID, memory.RoleUser, message); warn != nil {
		fmt.Fprintf(s.out, "warning: %v\n", warn)
	}
	return nil
}

func (s *Shell) showStats(ctx context.Context) error {
	stats, err := s.bot.Memory().Stats(ctx, s.userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "user:            %s\n", stats.UserID)
	fmt.Fprintf(s.out, "conversation:    %s\n", stats.ConversationID)
	fmt.Fprintf(s.out, "short-term turns: %d\n", stats.ShortTerm)
	fmt.Fprintf(s.out, "long-term turns:  %d\n", stats.LongTerm)
	return nil
}

func (s *Shell) showHistory() {
	records := s.bot.Memory().History(s.userID)
	if len(records) == 0 {
		fmt.Fprintln(s.out, "no conversation history")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(s.out, "[%s] %s: %s\n", rec.Timestamp.Format("01/02 15:04"), rec.Role, rec.Text)
	}
}

func (s *Shell) purge(ctx context.Context) error {
	if !s.confirm("this deletes ALL conversation data. really? (yes/no): ") {
		fmt.Fprintln(s.out, "cancelled")
		return nil
	}
	if err := s.bot.Memory().Purge(ctx, s.userID); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "all data deleted")
	return nil
}

func (s *Shell) printHeader() {
	name := s.bot.Character().Name
	fmt.Fprintln(s.out, strings.Repeat("=", 48))
	fmt.Fprintf(s.out, "  %s\n", name)
	fmt.Fprintln(s.out, strings.Repeat("=", 48))
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "commands:")
	fmt.Fprintln(s.out, "  exit, quit, bye   end the chat")
	fmt.Fprintln(s.out, "  clear, reset      clear the conversation (keeps long-term memory)")
	fmt.Fprintln(s.out, "  stats, info       show memory counts")
	fmt.Fprintln(s.out, "  history, recent   show the recent conversation")
	fmt.Fprintln(s.out, "  delete, purge     delete all data for this user")
	fmt.Fprintln(s.out, "  help, h, ?        show this help")
}

// SetOutput redirects shell output; used by tests.
func (s *Shell) SetOutput(w io.Writer) {
	s.out = w
}

// SetConfirm replaces the purge confirmation prompt; used by tests.
func (s *Shell) SetConfirm(fn func(prompt string) bool) {
	s.confirm = fn
}
