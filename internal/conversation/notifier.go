package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier writes result lines through a print function. Urgent lines
// go through the urgent printer when one is set.
type CLINotifier struct {
	log      *logger.Logger
	printFn  PrintFunc
	urgentFn PrintFunc
}

// NewCLINotifier creates a notifier. If printFn is nil, fmt.Printf is used.
// If urgentFn is nil, urgent lines use printFn.
func NewCLINotifier(log *logger.Logger, printFn, urgentFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	if urgentFn == nil {
		urgentFn = printFn
	}
	return &CLINotifier{log: log, printFn: printFn, urgentFn: urgentFn}
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s", message)
	return nil
}

// NotifyUrgent prints an error or warning.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.urgentFn("%s", message)
	return nil
}
