package console

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

var errNoSnapshots = errors.New("note snapshots need a database")

func (c *Console) note(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("note set|undo|redo|show|save|saved|load")
	}
	h := c.svc.Notes
	switch strings.ToLower(args[0]) {
	case "set":
		h.Record(strings.Join(args[1:], " "))
		c.printf("Note updated.")
	case "undo":
		text, ok := h.Undo()
		if !ok {
			c.printf("Nothing to undo.")
			return nil
		}
		c.printf("Note: %s", text)
	case "redo":
		text, ok := h.Redo()
		if !ok {
			c.printf("Nothing to redo.")
			return nil
		}
		c.printf("Note: %s", text)
	case "show":
		c.printf("Note: %s", h.Current())
	case "save":
		if c.svc.Snapshots == nil {
			return errNoSnapshots
		}
		snap, err := c.svc.Snapshots.Save(ctx, strings.Join(args[1:], " "), h.Current())
		if err != nil {
			return err
		}
		c.printf("Saved note #%d %q.", snap.ID, snap.Title)
	case "saved":
		if c.svc.Snapshots == nil {
			return errNoSnapshots
		}
		snaps, err := c.svc.Snapshots.List(ctx, 0)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			c.printf("No saved notes.")
			return nil
		}
		for _, s := range snaps {
			c.printf("#%d %s (%s)", s.ID, s.Title, s.SavedAt.Format("2006-01-02 15:04"))
		}
	case "load":
		if c.svc.Snapshots == nil {
			return errNoSnapshots
		}
		if len(args) != 2 {
			return usage("note load <id>")
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(args[1], "#"), 10, 64)
		if err != nil {
			return errors.New("note id must be a number")
		}
		body, err := c.svc.Snapshots.Load(ctx, id)
		if err != nil {
			return err
		}
		h.Record(body)
		c.printf("Note: %s", body)
	default:
		return usage("note set|undo|redo|show|save|saved|load")
	}
	return nil
}
