package bootstrap

import (
	"log"
	"os"
)

// Observer receives the orchestrator's human-readable progress lines.
// Each phase emits a line before it is attempted and a clear failure
// message naming the phase on abort.
type Observer interface {
	Printf(format string, v ...any)
}

// ConsoleObserver writes progress to standard output.
type ConsoleObserver struct {
	logger *log.Logger
}

// NewConsoleObserver creates an Observer over the standard log package.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{logger: log.New(os.Stdout, "", log.LstdFlags)}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.logger.Printf(format, v...)
}
