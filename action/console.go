package action

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MaskedValue replaces registered secrets in everything the console writes.
const MaskedValue = "***"

const (
	envOutputFile  = "GITHUB_OUTPUT"
	envRunnerDebug = "RUNNER_DEBUG"
	inputEnvPrefix = "INPUT_"
	delimiterStem  = "ghadelimiter_"
)

// ConsoleConfig configures a Console.
type ConsoleConfig struct {
	// Out defaults to os.Stdout.
	Out io.Writer
	// Getenv defaults to os.Getenv.
	Getenv func(key string) string
}

// Console is the GitHub Actions runner surface for one step: inputs,
// workflow commands, secret masks, outputs and the failure flag.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	getenv  func(string) string
	secrets []string
	failure string
	failed  bool
}

// NewConsole creates a console with cfg defaults applied.
func NewConsole(cfg ConsoleConfig) *Console {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Console{out: out, getenv: getenv}
}

// IsDebug reports whether step debug logging is enabled on the runner.
func (c *Console) IsDebug() bool {
	return c.getenv(envRunnerDebug) == "1"
}

// RegisterSecret masks value in all later runner and console output.
func (c *Console) RegisterSecret(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	values := []string{value}
	if strings.ContainsAny(value, "\r\n") {
		for _, line := range strings.FieldsFunc(value, func(r rune) bool { return r == '\n' || r == '\r' }) {
			if strings.TrimSpace(line) != "" {
				values = append(values, line)
			}
		}
	}
	for _, v := range values {
		if c.hasSecretLocked(v) {
			continue
		}
		c.secrets = append(c.secrets, v)
		issueCommand(c.out, cmdAddMask, nil, v)
	}
	sort.SliceStable(c.secrets, func(i, j int) bool {
		return len(c.secrets[i]) > len(c.secrets[j])
	})
}

func (c *Console) hasSecretLocked(value string) bool {
	for _, existing := range c.secrets {
		if existing == value {
			return true
		}
	}
	return false
}

// Redact replaces every registered secret in s with MaskedValue.
func (c *Console) Redact(s string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redactLocked(s)
}

func (c *Console) redactLocked(s string) string {
	for _, secret := range c.secrets {
		s = strings.ReplaceAll(s, secret, MaskedValue)
	}
	return s
}

// SetOutput publishes a step output. With GITHUB_OUTPUT set it appends a
// heredoc entry to that file; otherwise it falls back to ::set-output.
func (c *Console) SetOutput(name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("action: output name is required")
	}
	if path := c.getenv(envOutputFile); path != "" {
		return appendFileCommand(path, name, value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
	issueCommand(c.out, cmdSetOutput, map[string]string{"name": name}, value)
	return nil
}

func appendFileCommand(path, key, value string) error {
	delimiter := delimiterStem + uuid.NewString()
	if strings.Contains(key, delimiter) {
		return fmt.Errorf("action: unexpected input: name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return fmt.Errorf("action: unexpected input: value should not contain the delimiter %q", delimiter)
	}

	// #nosec G304 -- path is provided by the Actions runner.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("action: open output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter); err != nil {
		return fmt.Errorf("action: write output file: %w", err)
	}
	return nil
}

// SetFailed records the step failure and emits an error annotation.
func (c *Console) SetFailed(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = true
	c.failure = message
	issueCommand(c.out, cmdError, nil, c.redactLocked(message))
}

// Failed returns the failure message and whether SetFailed was called.
func (c *Console) Failed() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure, c.failed
}

// StartGroup opens a collapsible log group.
func (c *Console) StartGroup(title string) {
	c.command(cmdGroup, title)
}

// EndGroup closes the current log group.
func (c *Console) EndGroup() {
	c.command(cmdEndGroup, "")
}

// Debug writes a message shown only with step debug logging.
func (c *Console) Debug(message string) {
	c.command(cmdDebug, message)
}

// Warning writes a warning annotation.
func (c *Console) Warning(message string) {
	c.command(cmdWarning, message)
}

// Error writes an error annotation without failing the step.
func (c *Console) Error(message string) {
	c.command(cmdError, message)
}

// Info writes a plain log line.
func (c *Console) Info(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.redactLocked(message))
}

func (c *Console) command(name, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	issueCommand(c.out, name, nil, c.redactLocked(message))
}

// Writer returns an io.Writer for live process output with secrets redacted.
// Redaction is per write, so a secret split across writes is left to the
// runner's own masking.
func (c *Console) Writer() io.Writer {
	return redactingWriter{console: c}
}

type redactingWriter struct {
	console *Console
}

func (w redactingWriter) Write(p []byte) (int, error) {
	w.console.mu.Lock()
	defer w.console.mu.Unlock()
	if _, err := io.WriteString(w.console.out, w.console.redactLocked(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
