package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wolfman30/clinic-triage/internal/export"
	"github.com/wolfman30/clinic-triage/internal/observability/metrics"
	"github.com/wolfman30/clinic-triage/internal/triage"
)

const emptyQueue = "No patients in the queue."

func (c *Console) add(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("add <urgency> <name>")
	}
	urgency, err := strconv.Atoi(args[0])
	if err != nil {
		lo, hi := c.svc.Desk.UrgencyRange()
		return fmt.Errorf("urgency must be a number from %d to %d", lo, hi)
	}
	rec, err := c.svc.Desk.Admit(ctx, strings.Join(args[1:], " "), urgency)
	if err != nil {
		return err
	}
	c.printf("Added: %s", rec)
	return nil
}

func (c *Console) serve(ctx context.Context, _ []string) error {
	rec, err := c.svc.Desk.ServeNext(ctx)
	if errors.Is(err, triage.ErrQueueEmpty) {
		c.printf(emptyQueue)
		return nil
	}
	if err != nil {
		return err
	}
	c.printf("Serving %s", rec)
	return nil
}

func (c *Console) list(_ context.Context, _ []string) error {
	waiting := c.svc.Desk.Waiting()
	if len(waiting) == 0 {
		c.printf(emptyQueue)
		return nil
	}
	for _, line := range waiting {
		c.printf("%s", line)
	}
	return nil
}

func (c *Console) arrival(_ context.Context, _ []string) error {
	c.printRecords(c.svc.Desk.ArrivalOrder())
	return nil
}

func (c *Console) priority(_ context.Context, _ []string) error {
	c.printRecords(c.svc.Desk.PriorityOrder())
	return nil
}

func (c *Console) printRecords(records []triage.AdmissionRecord) {
	if len(records) == 0 {
		c.printf(emptyQueue)
		return
	}
	for i, rec := range records {
		c.printf("%d. %s #%d", i+1, rec, rec.ArrivalSequence)
	}
}

func (c *Console) reprioritize(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("reprioritize <seq> <urgency>")
	}
	seq, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	urgency, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("urgency must be a number")
	}
	rec, err := c.svc.Desk.Reprioritize(ctx, seq, urgency)
	if err != nil {
		return err
	}
	c.printf("Updated: %s", rec)
	return nil
}

func (c *Console) withdraw(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("withdraw <seq>")
	}
	seq, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	rec, err := c.svc.Desk.Withdraw(ctx, seq)
	if err != nil {
		return err
	}
	c.printf("Withdrawn: %s", rec)
	return nil
}

func (c *Console) export(ctx context.Context, args []string) error {
	if !c.svc.Exporter.Enabled() {
		return export.ErrDisabled
	}
	order := "priority"
	if len(args) > 0 {
		order = strings.ToLower(args[0])
	}
	var records []triage.AdmissionRecord
	switch order {
	case "priority":
		records = c.svc.Desk.PriorityOrder()
	case "arrival":
		records = c.svc.Desk.ArrivalOrder()
	default:
		return usage("export [priority|arrival]")
	}
	locations, err := c.svc.Exporter.Export(ctx, records)
	if err != nil {
		return err
	}
	for _, loc := range locations {
		c.printf("Exported %d patients to %s", len(records), loc)
	}
	return nil
}

func (c *Console) stats(_ context.Context, _ []string) error {
	if c.svc.Gatherer == nil {
		c.printf("Waiting: %d", c.svc.Desk.Size())
		return nil
	}
	snap, err := metrics.Snapshot(c.svc.Gatherer)
	if err != nil {
		return fmt.Errorf("read metrics: %w", err)
	}
	c.printf("Waiting: %.0f", snap.Waiting)
	c.printf("Admitted: %.0f", snap.Admitted)
	c.printf("Served: %.0f", snap.Served)
	c.printf("Rejected: %.0f", snap.Rejected)
	c.printf("Store errors: %.0f", snap.StoreErrors)
	c.printf("Average wait: %.1fs", snap.AverageWaitSeconds())
	return nil
}

func (c *Console) reset(ctx context.Context, _ []string) error {
	if err := c.svc.Desk.Reset(ctx); err != nil {
		return err
	}
	c.printf("Queue cleared.")
	return nil
}

func parseSeq(s string) (uint64, error) {
	seq, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("arrival number must be a non-negative integer, got %q", s)
	}
	return seq, nil
}
