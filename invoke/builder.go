package invoke

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultBinaryName is the executable the pipeline wraps.
	DefaultBinaryName = "oci"
	// RawOutputFlag is stripped from caller commands; output shape is decided here.
	RawOutputFlag = "--raw-output"
	queryFlag     = "--query"
)

// CommandSpec holds the caller inputs for one invocation.
type CommandSpec struct {
	RawCommand string
	Query      string
	Silent     bool
}

// Validate reports whether the spec carries a usable command.
func (s CommandSpec) Validate() error {
	if strings.TrimSpace(s.RawCommand) == "" {
		return newError(ErrorCodeInvalidInput, "Input required and not supplied: command", ErrEmptyCommand)
	}
	return nil
}

// Invocation is the fully assembled command line plus its parts.
type Invocation struct {
	Binary  string
	Query   string
	Command string
	Line    string
}

// Builder assembles invocations for one binary name.
type Builder struct {
	// BinaryName is stripped from the start of caller commands. Defaults to "oci".
	BinaryName string
}

// BuildInvocation assembles an invocation for the default binary name.
func BuildInvocation(spec CommandSpec, binaryPath string) Invocation {
	return Builder{}.Build(spec, binaryPath)
}

// Build assembles `<binaryPath> <queryClause> <command>`. Empty parts are
// skipped so tokens are always separated by exactly one space. Build never
// fails; a blank command yields a line holding only the binary and query.
func (b Builder) Build(spec CommandSpec, binaryPath string) Invocation {
	name := b.BinaryName
	if strings.TrimSpace(name) == "" {
		name = DefaultBinaryName
	}

	inv := Invocation{
		Binary:  strings.TrimSpace(binaryPath),
		Query:   QueryClause(spec.Query),
		Command: SanitizeCommand(spec.RawCommand, name),
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{inv.Binary, inv.Query, inv.Command} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	inv.Line = strings.Join(parts, " ")
	return inv
}

// SanitizeCommand applies the static rules to a caller command, in order:
// strip one leading "<binaryName><whitespace>", remove every RawOutputFlag,
// trim surrounding whitespace.
func SanitizeCommand(raw, binaryName string) string {
	cmd := raw
	if binaryName != "" && strings.HasPrefix(cmd, binaryName) {
		rest := cmd[len(binaryName):]
		r, size := utf8.DecodeRuneInString(rest)
		if size > 0 && unicode.IsSpace(r) {
			cmd = rest[size:]
		}
	}
	// Removal can splice a new occurrence together, e.g. "--raw--raw-output-output".
	for strings.Contains(cmd, RawOutputFlag) {
		cmd = strings.ReplaceAll(cmd, RawOutputFlag, "")
	}
	return strings.TrimSpace(cmd)
}

// QueryClause renders `--query "<query>"` for a non-blank query and "" otherwise.
// Embedded quotes are not escaped.
func QueryClause(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	return fmt.Sprintf(`%s "%s"`, queryFlag, q)
}
