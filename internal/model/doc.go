// Package model defines the domain types and value objects for the
// spillctl CLI.
//
// This package contains pure data structures with no external dependencies.
// Provisioning outcomes (StepResult, HostState) are transient values built
// while a run executes; container information is reconstructed from Docker
// API queries at runtime — there are no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
