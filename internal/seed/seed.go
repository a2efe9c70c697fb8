// Package seed loads a demo workspace: the three-project hardware team
// the digest pipeline was built around, plus a day's worth of templated
// messages. Useful for demos and manual testing without a real chat
// ingest.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pulsedigest/pulse/internal/store"
)

var projects = []store.Project{
	{
		ProjectID: "pcb-redesign",
		Name:      "PCB Redesign",
		Channels:  []string{"#pcb-review", "#electrical"},
		Keywords:  []string{"PCB", "circuit", "layout", "schematic", "capacitor", "trace", "board"},
	},
	{
		ProjectID: "motor-assembly",
		Name:      "Motor Assembly",
		Channels:  []string{"#mechanical", "#motor-debug"},
		Keywords:  []string{"motor", "assembly", "torque", "shaft", "bearing", "gear", "housing"},
	},
	{
		ProjectID: "firmware-update",
		Name:      "Firmware Update",
		Channels:  []string{"#firmware", "#embedded"},
		Keywords:  []string{"firmware", "embedded", "flash", "bootloader", "register", "interrupt", "RTOS"},
	},
}

var users = []store.User{
	{UserID: "alice", Name: "Alice Chen", Role: "electrical_engineer"},
	{UserID: "bob", Name: "Bob Martinez", Role: "electrical_engineer"},
	{UserID: "carol", Name: "Carol Johnson", Role: "electrical_engineer"},
	{UserID: "david", Name: "David Kim", Role: "mechanical_engineer"},
	{UserID: "emma", Name: "Emma Wilson", Role: "mechanical_engineer"},
	{UserID: "frank", Name: "Frank Brown", Role: "mechanical_engineer"},
	{UserID: "grace", Name: "Grace Lee", Role: "firmware_engineer"},
	{UserID: "henry", Name: "Henry Zhang", Role: "firmware_engineer"},
	{UserID: "ivan", Name: "Ivan Patel", Role: "pm"},
	{UserID: "julia", Name: "Julia Santos", Role: "engineering_lead"},
}

// members maps each project to its primary posters.
var members = map[string][]string{
	"pcb-redesign":    {"alice", "bob", "carol"},
	"motor-assembly":  {"david", "emma", "frank"},
	"firmware-update": {"grace", "henry"},
}

type template struct {
	text    string
	urgent  bool
	blocker bool
	mention bool // mention another project member
}

var templates = map[string][]template{
	"pcb-redesign": {
		{text: "Finished rerouting the power traces on rev C, ready for review"},
		{text: "Anyone know why the decoupling capacitor footprint changed in the latest schematic?"},
		{text: "Board house quoted 5 days for the new layout"},
		{text: "The impedance mismatch on the USB traces is still there, can you take a look?", mention: true},
		{text: "URGENT: rev B boards are shorting on the 3.3V rail, stop assembly", urgent: true},
		{text: "Blocked on the connector footprint until mechanical confirms the housing clearance", blocker: true},
		{text: "Pushed the updated schematic, diff is mostly silkscreen"},
		{text: "Thermal relief on the ground pours looks good now"},
	},
	"motor-assembly": {
		{text: "Torque test on the new shaft coupling passed at 120% rated load"},
		{text: "The bearing press fit is tighter than spec, checking tolerances"},
		{text: "CAD updated with the new gear housing, please re-run the clearance check", mention: true},
		{text: "URGENT: assembly line is down, the fixture jig cracked", urgent: true},
		{text: "Blocked on motor samples from the vendor, ETA slipped to Thursday", blocker: true},
		{text: "Backlash measurement on gearbox unit 3 is within tolerance"},
		{text: "Updated the assembly work instructions for the shaft alignment step"},
	},
	"firmware-update": {
		{text: "Bootloader handoff works on the new silicon, flashing from the app partition next"},
		{text: "The watchdog interrupt fires early under load, bisecting now"},
		{text: "Can you review the flash wear-leveling change before I merge?", mention: true},
		{text: "URGENT: units in the field are boot-looping after the OTA push", urgent: true},
		{text: "Blocked on the register map doc for the new sensor", blocker: true},
		{text: "RTOS tick drift fixed, timer tests green again"},
		{text: "Cut the release candidate, running the soak test overnight"},
	},
}

// pm/lead noise posted across all channels.
var crossTeam = []template{
	{text: "Status update thread for this week, drop your top line here"},
	{text: "Can we get the milestone review on the calendar for Friday?"},
	{text: "Nice work unblocking that yesterday, shipping velocity looks good"},
}

// Stats reports what Seed inserted.
type Stats struct {
	Projects int
	Users    int
	Messages int
}

// Seed inserts the demo workspace. Message timestamps spread across the
// 24 hours trailing now; text content is fixed, placement is pseudo-
// random but reproducible.
func Seed(db *store.DB, now time.Time) (Stats, error) {
	rng := rand.New(rand.NewSource(42))

	for _, p := range projects {
		if err := db.UpsertProject(p); err != nil {
			return Stats{}, fmt.Errorf("seed project: %w", err)
		}
	}
	for _, u := range users {
		if err := db.UpsertUser(u); err != nil {
			return Stats{}, fmt.Errorf("seed user: %w", err)
		}
	}

	var msgs []store.Message
	for _, p := range projects {
		team := members[p.ProjectID]
		pool := append(append([]template{}, templates[p.ProjectID]...), crossTeam...)

		for round := 0; round < 3; round++ {
			for i, tpl := range pool {
				sender := team[(round+i)%len(team)]
				if i >= len(templates[p.ProjectID]) {
					// Cross-team templates come from the PM or the lead.
					if i%2 == 0 {
						sender = "ivan"
					} else {
						sender = "julia"
					}
				}

				var mentions []string
				if tpl.mention {
					mentions = []string{team[(round+i+1)%len(team)]}
				}

				hoursAgo := rng.Float64() * 24
				ts := now.Add(-time.Duration(hoursAgo * float64(time.Hour))).UTC()

				msgs = append(msgs, store.Message{
					ID:        uuid.NewString(),
					Channel:   p.Channels[(round+i)%len(p.Channels)],
					Sender:    sender,
					Text:      tpl.text,
					Timestamp: ts.Format(time.RFC3339),
					Mentions:  mentions,
					IsUrgent:  tpl.urgent,
					IsBlocker: tpl.blocker,
				})
			}
		}
	}

	// A couple of DMs so the personal-project fallback has something.
	msgs = append(msgs,
		store.Message{
			ID:        uuid.NewString(),
			Sender:    "julia",
			Text:      "Reminder: your performance review self-assessment is due next week",
			Timestamp: now.Add(-2 * time.Hour).UTC().Format(time.RFC3339),
			Mentions:  []string{"alice"},
			IsDM:      true,
		},
		store.Message{
			ID:        uuid.NewString(),
			Sender:    "ivan",
			Text:      "Got a minute for a quick 1:1 tomorrow?",
			Timestamp: now.Add(-5 * time.Hour).UTC().Format(time.RFC3339),
			Mentions:  []string{"grace"},
			IsDM:      true,
		},
	)

	if err := db.SaveMessages(msgs); err != nil {
		return Stats{}, fmt.Errorf("seed messages: %w", err)
	}

	return Stats{Projects: len(projects), Users: len(users), Messages: len(msgs)}, nil
}
