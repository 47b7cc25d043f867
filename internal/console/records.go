package console

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/wolfman30/clinic-triage/internal/doctors"
	"github.com/wolfman30/clinic-triage/internal/medications"
	"github.com/wolfman30/clinic-triage/internal/patients"
)

func (c *Console) patient(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("patient add|find|remove|list")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		// patient add <id> <age> <name...> [-- <condition...>]
		if len(args) < 4 {
			return usage("patient add <id> <age> <name> [-- <condition>]")
		}
		age, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.New("age must be a number")
		}
		name, condition := splitOn(args[3:], "--")
		p := patients.Patient{ID: args[1], Name: name, Age: age, Condition: condition}
		ok, err := c.svc.Patients.Insert(ctx, p)
		if err != nil {
			return err
		}
		if !ok {
			c.printf("Patient %s already exists.", p.ID)
			return nil
		}
		c.printf("Patient added: %s - %s", strings.TrimSpace(p.ID), strings.TrimSpace(p.Name))
	case "find":
		if len(args) != 2 {
			return usage("patient find <id>")
		}
		p, ok, err := c.svc.Patients.Find(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			c.printf("Patient %s not found.", args[1])
			return nil
		}
		c.printf("%s, age %d, %s", p, p.Age, orDash(p.Condition))
	case "remove":
		if len(args) != 2 {
			return usage("patient remove <id>")
		}
		ok, err := c.svc.Patients.Remove(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			c.printf("Patient %s not found.", args[1])
			return nil
		}
		c.printf("Patient %s removed.", args[1])
	case "list":
		all, err := c.svc.Patients.List(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			c.printf("No patients registered.")
			return nil
		}
		for _, p := range all {
			c.printf("%s", p)
		}
	default:
		return usage("patient add|find|remove|list")
	}
	return nil
}

func (c *Console) appt(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("appt add|next|list")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		appt, err := c.svc.Appointments.Enqueue(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		c.printf("Appointment requested: %s", appt)
	case "next":
		appt, ok, err := c.svc.Appointments.Dequeue(ctx)
		if err != nil {
			return err
		}
		if !ok {
			c.printf("No appointments waiting.")
			return nil
		}
		c.printf("Next appointment: %s", appt)
	case "list":
		line, err := c.svc.Appointments.List(ctx)
		if err != nil {
			return err
		}
		if len(line) == 0 {
			c.printf("No appointments waiting.")
			return nil
		}
		for i, appt := range line {
			c.printf("%d. %s", i+1, appt)
		}
	default:
		return usage("appt add|next|list")
	}
	return nil
}

func (c *Console) med(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("med add|list")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			return usage("med add <patient-id> <drug> [dosage]")
		}
		entry, err := c.svc.Medications.Append(ctx, medications.Entry{
			PatientID: args[1],
			Drug:      args[2],
			Dosage:    strings.Join(args[3:], " "),
		})
		if err != nil {
			return err
		}
		c.printf("Recorded %s for %s.", entry.Drug, entry.PatientID)
	case "list":
		if len(args) != 2 {
			return usage("med list <patient-id>")
		}
		history, err := c.svc.Medications.History(ctx, args[1])
		if err != nil {
			return err
		}
		if len(history) == 0 {
			c.printf("No medications recorded for %s.", args[1])
			return nil
		}
		for _, e := range history {
			c.printf("%s", e)
		}
	default:
		return usage("med add|list")
	}
	return nil
}

func (c *Console) doctor(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("doctor add|find|list")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		// doctor add <name...> [-- <room> <specialty,specialty>]
		if len(args) < 2 {
			return usage("doctor add <name> [-- <room> <specialty,...>]")
		}
		name, rest := splitOn(args[1:], "--")
		d := doctors.Doctor{Name: name, Available: true}
		if extra := strings.Fields(rest); len(extra) > 0 {
			d.Room = extra[0]
			if len(extra) > 1 {
				d.Specialties = strings.Split(strings.Join(extra[1:], ""), ",")
			}
		}
		if err := c.svc.Doctors.Add(ctx, d); err != nil {
			return err
		}
		c.printf("Doctor added: %s", strings.TrimSpace(d.Name))
	case "find":
		if len(args) < 2 {
			return usage("doctor find <name>")
		}
		d, err := c.svc.Doctors.Lookup(ctx, strings.Join(args[1:], " "))
		if errors.Is(err, doctors.ErrNotFound) {
			c.printf("Doctor not found.")
			return nil
		}
		if err != nil {
			return err
		}
		c.printf("%s", d)
	case "list":
		all, err := c.svc.Doctors.List(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			c.printf("No doctors registered.")
			return nil
		}
		for _, d := range all {
			c.printf("%s", d)
		}
	default:
		return usage("doctor add|find|list")
	}
	return nil
}

// splitOn joins the tokens before sep and after it separately.
func splitOn(tokens []string, sep string) (string, string) {
	for i, tok := range tokens {
		if tok == sep {
			return strings.Join(tokens[:i], " "), strings.Join(tokens[i+1:], " ")
		}
	}
	return strings.Join(tokens, " "), ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
