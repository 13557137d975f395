package action

import (
	"fmt"
	"strings"
)

var (
	trueInputs  = []string{"true", "True", "TRUE"}
	falseInputs = []string{"false", "False", "FALSE"}
)

// InputOptions controls how an input is read.
type InputOptions struct {
	Required       bool
	TrimWhitespace *bool
}

// InputEnvName returns the variable the runner uses for input name.
func InputEnvName(name string) string {
	return inputEnvPrefix + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// Input reads a step input. Values are trimmed unless TrimWhitespace is false.
func (c *Console) Input(name string, opts InputOptions) (string, error) {
	value := c.getenv(InputEnvName(name))
	if opts.Required && value == "" {
		return "", fmt.Errorf("Input required and not supplied: %s", name)
	}
	if opts.TrimWhitespace != nil && !*opts.TrimWhitespace {
		return value, nil
	}
	return strings.TrimSpace(value), nil
}

// BoolInput reads a YAML 1.2 core-schema boolean input. An unset input
// returns fallback.
func (c *Console) BoolInput(name string, fallback bool) (bool, error) {
	value, err := c.Input(name, InputOptions{})
	if err != nil {
		return false, err
	}
	if value == "" {
		return fallback, nil
	}
	for _, v := range trueInputs {
		if value == v {
			return true, nil
		}
	}
	for _, v := range falseInputs {
		if value == v {
			return false, nil
		}
	}
	return false, fmt.Errorf(
		"Input does not meet YAML 1.2 \"Core Schema\" specification: %s\n"+
			"Support boolean input list: `true | True | TRUE | false | False | FALSE`",
		name,
	)
}
