package console

import "context"

var helpText = []string{
	"Triage:",
	"  add <urgency> <name>             admit a patient (1 is most urgent)",
	"  serve                            serve the next patient",
	"  list                             waiting patients in heap order",
	"  arrival | priority               waiting patients by arrival or serving order",
	"  reprioritize <seq> <urgency>     change a waiting patient's urgency",
	"  withdraw <seq>                   remove a waiting patient",
	"  export [priority|arrival]        write the queue as CSV",
	"  stats                            counters for this session",
	"  reset                            clear the queue",
	"Records:",
	"  patient add <id> <age> <name> [-- <condition>] | find <id> | remove <id> | list",
	"  appt add <name> | next | list",
	"  med add <patient-id> <drug> [dosage] | list <patient-id>",
	"  doctor add <name> [-- <room> <specialty,...>] | find <name> | list",
	"  note set <text> | undo | redo | show | save <title> | saved | load <id>",
	"  quit",
}

func (c *Console) help(_ context.Context, _ []string) error {
	for _, line := range helpText {
		c.printf("%s", line)
	}
	return nil
}
