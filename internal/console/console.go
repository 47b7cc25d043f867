// Package console is the line-oriented front desk: one command per line in,
// human-readable replies out.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinic-triage/internal/appointments"
	"github.com/wolfman30/clinic-triage/internal/doctors"
	"github.com/wolfman30/clinic-triage/internal/export"
	"github.com/wolfman30/clinic-triage/internal/medications"
	"github.com/wolfman30/clinic-triage/internal/notes"
	"github.com/wolfman30/clinic-triage/internal/patients"
	"github.com/wolfman30/clinic-triage/internal/triage"
	"github.com/wolfman30/clinic-triage/pkg/logging"
)

// Services are the collaborators the console drives. Desk is required;
// a nil Snapshots, Exporter or Gatherer disables the matching commands.
type Services struct {
	Desk         *triage.Desk
	Patients     patients.Directory
	Appointments appointments.Queue
	Medications  medications.Log
	Doctors      doctors.Directory
	Notes        *notes.History
	Snapshots    *notes.Store
	Exporter     *export.Exporter
	Gatherer     prometheus.Gatherer
}

// Options tune a Console.
type Options struct {
	// Prompt is written before each line is read. Empty disables it.
	Prompt string
	// Timeout bounds each command. Zero means no limit.
	Timeout time.Duration
	Logger  *logging.Logger
}

// Console interprets commands against Services.
type Console struct {
	svc      Services
	out      io.Writer
	opts     Options
	logger   *logging.Logger
	commands map[string]handler
}

type handler func(ctx context.Context, args []string) error

var errUsage = errors.New("usage")

// New creates a console writing replies to out. Missing collaborators get
// in-memory implementations.
func New(svc Services, out io.Writer, opts Options) *Console {
	if svc.Desk == nil {
		panic("console: triage desk required")
	}
	if svc.Patients == nil {
		svc.Patients = patients.NewMemoryDirectory()
	}
	if svc.Appointments == nil {
		svc.Appointments = appointments.NewMemoryQueue()
	}
	if svc.Medications == nil {
		svc.Medications = medications.NewMemoryLog()
	}
	if svc.Doctors == nil {
		svc.Doctors = doctors.NewMemoryDirectory()
	}
	if svc.Notes == nil {
		svc.Notes = notes.NewHistory(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	c := &Console{svc: svc, out: out, opts: opts, logger: logger}
	c.commands = map[string]handler{
		"add":          c.add,
		"serve":        c.serve,
		"next":         c.serve,
		"list":         c.list,
		"arrival":      c.arrival,
		"priority":     c.priority,
		"reprioritize": c.reprioritize,
		"withdraw":     c.withdraw,
		"patient":      c.patient,
		"appt":         c.appt,
		"med":          c.med,
		"doctor":       c.doctor,
		"note":         c.note,
		"export":       c.export,
		"stats":        c.stats,
		"reset":        c.reset,
		"help":         c.help,
	}
	return c
}

// Run reads commands from in until EOF, "quit" or ctx is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		c.prompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := c.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// Execute runs a single command line and reports whether the session should end.
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(fields[0])
	if name == "quit" || name == "exit" {
		c.printf("Goodbye.")
		return true
	}

	h, ok := c.commands[name]
	if !ok {
		c.printf("Unknown command %q. Type \"help\" for a list.", fields[0])
		return false
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	if err := h(ctx, fields[1:]); err != nil {
		if errors.Is(err, errUsage) {
			c.printf("Usage: %s", strings.TrimPrefix(err.Error(), "usage: "))
			return false
		}
		c.logger.Debug("console command failed", "command", name, "error", err)
		c.printf("Error: %s", err)
	}
	return false
}

func (c *Console) prompt() {
	if c.opts.Prompt != "" {
		fmt.Fprint(c.out, c.opts.Prompt)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}
