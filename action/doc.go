// Package action adapts the GitHub Actions runner to the invoke pipeline.
//
// Console reads step inputs from INPUT_* variables, issues workflow commands
// (masks, groups, annotations), publishes step outputs and records failure.
// Handler renders slog records as workflow commands through a Console.
package action
