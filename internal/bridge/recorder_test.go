package bridge

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

// fakeSimulator is a minimal bridge.Simulator driven by a scripted list of
// per-frame positions, one []core.Vector2 per DoStep call.
type fakeSimulator struct {
	radius float32
	frames [][]core.Vector2
	cursor int
	dt     float32
	time   float32
}

func (f *fakeSimulator) NumAgents() int { return len(f.frames[0]) }
func (f *fakeSimulator) GlobalTime() float32 { return f.time }
func (f *fakeSimulator) AgentPosition(id core.AgentID) core.Vector2 { return f.frames[f.cursor][id] }
func (f *fakeSimulator) AgentRadius(core.AgentID) float32 { return f.radius }
func (f *fakeSimulator) DoStep() error {
	if f.cursor < len(f.frames)-1 {
		f.cursor++
	}
	f.time += f.dt
	return nil
}

func TestNewRecorderWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	sim := &fakeSimulator{radius: 0.1, frames: [][]core.Vector2{{core.NewVector2(0, 0)}}, dt: 1}

	if _, err := NewRecorder(sim, &buf); err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	row, err := r.Read()
	if err != nil {
		t.Fatalf("reading header: %v", err)
	}
	want := []string{"frame", "time", "robot_id", "x", "y", "velocity_x", "velocity_y", "speed", "has_collided"}
	if len(row) != len(want) {
		t.Fatalf("header has %d columns, want %d", len(row), len(want))
	}
	for i, col := range want {
		if row[i] != col {
			t.Errorf("header column %d = %q, want %q", i, row[i], col)
		}
	}
}

func TestRecordFrameZeroVelocityOnFirstFrame(t *testing.T) {
	var buf bytes.Buffer
	sim := &fakeSimulator{
		radius: 0.1,
		dt:     1.0 / 30,
		frames: [][]core.Vector2{
			{core.NewVector2(0, 0)},
			{core.NewVector2(1, 0)},
		},
	}
	rec, err := NewRecorder(sim, &buf)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.RecordFrame(); err != nil {
		t.Fatalf("RecordFrame: %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rows := parseRows(t, buf.String())
	if len(rows) != 1 {
		t.Fatalf("got %d data rows, want 1", len(rows))
	}
	if rows[0]["velocity_x"] != "0" || rows[0]["velocity_y"] != "0" {
		t.Errorf("frame 0 velocity = (%s, %s), want (0, 0)", rows[0]["velocity_x"], rows[0]["velocity_y"])
	}
	if rows[0]["speed"] != "0" {
		t.Errorf("frame 0 speed = %s, want 0", rows[0]["speed"])
	}
}

func TestRecordFrameFiniteDifferenceVelocity(t *testing.T) {
	var buf bytes.Buffer
	sim := &fakeSimulator{
		radius: 0.1,
		dt:     0.5,
		frames: [][]core.Vector2{
			{core.NewVector2(0, 0)},
			{core.NewVector2(3, 4)},
		},
	}
	rec, err := NewRecorder(sim, &buf)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.RecordFrame(); err != nil {
		t.Fatalf("RecordFrame: %v", err)
	}
	if err := rec.RecordFrame(); err != nil {
		t.Fatalf("RecordFrame: %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rows := parseRows(t, buf.String())
	if len(rows) != 2 {
		t.Fatalf("got %d data rows, want 2", len(rows))
	}
	second := rows[1]
	// Position moved (3, 4) over a 0.5s frame, so velocity is the
	// position delta divided by elapsed time: (6, 8).
	if second["velocity_x"] != "6" || second["velocity_y"] != "8" {
		t.Errorf("frame 1 velocity = (%s, %s), want (6, 8)", second["velocity_x"], second["velocity_y"])
	}
	speed, err := strconv.ParseFloat(second["speed"], 32)
	if err != nil {
		t.Fatalf("parse speed: %v", err)
	}
	if speed < 9.999 || speed > 10.001 {
		t.Errorf("speed = %v, want ~10", speed)
	}
}

func TestRecordFrameDetectsCollision(t *testing.T) {
	var buf bytes.Buffer
	sim := &fakeSimulator{
		radius: 0.5,
		dt:     1,
		frames: [][]core.Vector2{
			{core.NewVector2(0, 0), core.NewVector2(0.5, 0), core.NewVector2(100, 100)},
		},
	}
	rec, err := NewRecorder(sim, &buf)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.RecordFrame(); err != nil {
		t.Fatalf("RecordFrame: %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rows := parseRows(t, buf.String())
	if rows[0]["has_collided"] != "1" {
		t.Errorf("agent 0 has_collided = %s, want 1 (overlaps agent 1)", rows[0]["has_collided"])
	}
	if rows[1]["has_collided"] != "0" {
		t.Errorf("agent 1 has_collided = %s, want 0 (overlaps agent 0)", rows[1]["has_collided"])
	}
	if rows[2]["has_collided"] != "-1" {
		t.Errorf("agent 2 has_collided = %s, want -1 (isolated)", rows[2]["has_collided"])
	}
}

func parseRows(t *testing.T, data string) []map[string]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(records) < 1 {
		t.Fatal("expected at least a header row")
	}
	header := records[0]
	var rows []map[string]string
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows
}
