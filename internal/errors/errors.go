package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/distill/internal/logger"
)

// ExitUsage is the exit status for usage and configuration errors
const ExitUsage = 1

// UsageError reports a malformed command line
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// NewUsageError formats a UsageError
func NewUsageError(format string, args ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports a run configuration that cannot process records,
// such as a missing annotator
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// NewConfigError returns a ConfigError
func NewConfigError(msg string) error {
	return &ConfigError{Msg: msg}
}

// IsUsage reports whether err should be answered with the usage text
func IsUsage(err error) bool {
	var usage *UsageError
	var config *ConfigError
	return stderrors.As(err, &usage) || stderrors.As(err, &config)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// FatalUsage reports a usage or configuration error followed by the usage
// text and exits with ExitUsage. A UsageError without a message, as for
// -h, prints the usage text alone.
func FatalUsage(err error, usage string) {
	if msg := err.Error(); msg != "" {
		logger.Error("Invalid invocation", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	}
	fmt.Fprint(os.Stderr, usage)
	os.Exit(ExitUsage)
}
