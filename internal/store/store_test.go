package store

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMemoryMigrates(t *testing.T) {
	db := openTestDB(t)

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 5 {
		t.Errorf("schema version = %d, want 5", version)
	}

	for _, table := range []string{"projects", "users", "messages", "phase_records", "digests"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestProjectRoundTrip(t *testing.T) {
	db := openTestDB(t)

	p := Project{
		ProjectID: "pcb-redesign",
		Name:      "PCB Redesign",
		Channels:  []string{"#pcb-redesign", "#hardware"},
		Keywords:  []string{"pcb", "gerber"},
	}
	if err := db.UpsertProject(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Upsert overwrites in place.
	p.Name = "PCB Redesign v2"
	if err := db.UpsertProject(p); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	projects, err := db.LoadProjects()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}
	got := projects[0]
	if got.Name != "PCB Redesign v2" {
		t.Errorf("name = %s, want the updated name", got.Name)
	}
	if len(got.Channels) != 2 || got.Channels[0] != "#pcb-redesign" {
		t.Errorf("channels = %v", got.Channels)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("keywords = %v", got.Keywords)
	}
}

func TestUserRoles(t *testing.T) {
	db := openTestDB(t)

	for _, u := range []User{
		{UserID: "ivan", Name: "Ivan", Role: "pm"},
		{UserID: "alice", Name: "Alice", Role: "engineer"},
	} {
		if err := db.UpsertUser(u); err != nil {
			t.Fatalf("upsert user: %v", err)
		}
	}

	users, err := db.LoadUsers()
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(users) != 2 || users[0].UserID != "alice" {
		t.Errorf("users = %+v, want alice first (ordered by id)", users)
	}

	roles, err := db.LoadUserRoles()
	if err != nil {
		t.Fatalf("load roles: %v", err)
	}
	if roles["ivan"] != "pm" || roles["alice"] != "engineer" {
		t.Errorf("roles = %v", roles)
	}
}

func TestMessagesSinceFilterAndOrder(t *testing.T) {
	db := openTestDB(t)

	ts := func(age time.Duration) string {
		return testNow.Add(-age).UTC().Format(time.RFC3339)
	}
	msgs := []Message{
		{ID: "old", Sender: "bob", Text: "ancient", Timestamp: ts(48 * time.Hour)},
		{ID: "mid", Sender: "bob", Text: "middle", Timestamp: ts(12 * time.Hour),
			Channel: "#apollo", Mentions: []string{"dana"}, IsUrgent: true},
		{ID: "new", Sender: "bob", Text: "fresh", Timestamp: ts(time.Hour),
			IsDM: true, IsBlocker: true},
	}
	if err := db.SaveMessages(msgs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadMessagesSince(testNow.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2 inside the window", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "mid" {
		t.Errorf("order = [%s %s], want newest first", got[0].ID, got[1].ID)
	}

	if !got[0].IsDM || !got[0].IsBlocker {
		t.Errorf("flags not round-tripped: %+v", got[0])
	}
	if !got[1].Mentioned("dana") || !got[1].IsUrgent {
		t.Errorf("mentions/urgency not round-tripped: %+v", got[1])
	}
	if got[1].Channel != "#apollo" {
		t.Errorf("channel = %q", got[1].Channel)
	}

	n, err := db.CountMessages()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestSaveMessagesIgnoresDuplicates(t *testing.T) {
	db := openTestDB(t)

	ts := testNow.Format(time.RFC3339)
	if err := db.SaveMessages([]Message{
		{ID: "m1", Sender: "bob", Text: "original", Timestamp: ts},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveMessages([]Message{
		{ID: "m1", Sender: "bob", Text: "edited", Timestamp: ts},
	}); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := db.LoadMessagesSince(testNow.Add(-time.Hour))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Text != "original" {
		t.Errorf("got = %+v, want the original message untouched", got)
	}
}

func TestPhaseRecordUpsert(t *testing.T) {
	db := openTestDB(t)

	ts := testNow.Format(time.RFC3339)
	records := []PhaseRecord{
		{UserID: "dana", ProjectID: "apollo", Phase: "active",
			Channels: []string{"#apollo"}, LastContributed: ts, MessagesPastWeek: 3},
		{UserID: "dana", ProjectID: "hermes", Phase: "review",
			Channels: []string{}, LastContributed: ts},
	}
	if err := db.SavePhaseRecords(records); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Second save with an evolved record updates, never duplicates.
	records[0].Phase = "done"
	records[0].MessagesPastWeek = 0
	if err := db.SavePhaseRecords(records); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := db.LoadPhaseRecords("dana")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].ProjectID != "apollo" || got[0].Phase != "done" || got[0].MessagesPastWeek != 0 {
		t.Errorf("apollo record = %+v", got[0])
	}
	if len(got[0].Channels) != 1 || got[0].Channels[0] != "#apollo" {
		t.Errorf("channels = %v", got[0].Channels)
	}

	other, err := db.LoadPhaseRecords("bob")
	if err != nil {
		t.Fatalf("load other user: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bob records = %d, want 0", len(other))
	}
}

func TestPhaseRecordRejectsUnknownPhase(t *testing.T) {
	db := openTestDB(t)

	err := db.SavePhaseRecords([]PhaseRecord{
		{UserID: "dana", ProjectID: "apollo", Phase: "limbo",
			LastContributed: testNow.Format(time.RFC3339)},
	})
	if err == nil {
		t.Fatal("save accepted an unknown phase")
	}

	got, loadErr := db.LoadPhaseRecords("dana")
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if len(got) != 0 {
		t.Errorf("records = %d after failed save, want 0", len(got))
	}
}

func TestDigestLatest(t *testing.T) {
	db := openTestDB(t)

	body, err := db.LatestDigest("dana")
	if err != nil {
		t.Fatalf("latest on empty table: %v", err)
	}
	if body != nil {
		t.Errorf("body = %q, want nil when no digest exists", body)
	}

	ts := func(age time.Duration) string {
		return testNow.Add(-age).UTC().Format(time.RFC3339)
	}
	if err := db.SaveDigest("dana", ts(2*time.Hour), []byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveDigest("dana", ts(time.Hour), []byte(`{"v":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveDigest("erin", ts(0), []byte(`{"v":3}`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	body, err = db.LatestDigest("dana")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if string(body) != `{"v":2}` {
		t.Errorf("body = %s, want the most recent for dana", body)
	}
}
