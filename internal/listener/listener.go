// Package listener wraps the interactive readline console used by chat.
package listener

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// ErrClosed is returned by ReadLine once the user ends input (Ctrl-D) or
// interrupts an empty line (Ctrl-C).
var ErrClosed = errors.New("console closed")

type Console struct {
	rl *readline.Instance
	mu sync.Mutex
}

type Options struct {
	Prompt      string
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

func New(opts Options) (*Console, error) {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "> "
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     opts.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           opts.Stdin,
		Stdout:          opts.Stdout,
	})
	if err != nil {
		return nil, err
	}
	return &Console{rl: rl}, nil
}

func (c *Console) Close() {
	_ = c.rl.Close()
}

func (c *Console) SetPrompt(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rl.SetPrompt(p)
}

// ReadLine returns the next trimmed line. An interrupt on a non-empty line
// discards it and returns "".
func (c *Console) ReadLine() (string, error) {
	line, err := c.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		if line == "" {
			return "", ErrClosed
		}
		return "", nil
	case errors.Is(err, io.EOF):
		return "", ErrClosed
	case err != nil:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask shows question as a one-off prompt and returns the answer, or def if
// the answer is empty.
func (c *Console) Ask(question, def string) (string, error) {
	c.mu.Lock()
	old := c.rl.Config.Prompt
	label := question
	if def != "" {
		label = fmt.Sprintf("%s [%s]", question, def)
	}
	c.rl.SetPrompt(label + ": ")
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.rl.SetPrompt(old)
		c.mu.Unlock()
	}()

	ans, err := c.ReadLine()
	if err != nil {
		return "", err
	}
	if ans == "" {
		return def, nil
	}
	return ans, nil
}

// Confirm asks a yes/no question until it gets an answer.
func (c *Console) Confirm(question string) (bool, error) {
	for {
		ans, err := c.Ask(question+" [y/n]", "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ans) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.Println("Please answer y/n.")
	}
}

// Println writes s above the prompt without clobbering the line being
// edited.
func (c *Console) Println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.rl.Write([]byte(s + "\n"))
}
