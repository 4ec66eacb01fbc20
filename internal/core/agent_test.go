package core

import (
	"errors"
	"testing"
)

func TestAgentParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  AgentParams
		wantErr bool
	}{
		{"valid defaults", DefaultAgentParams(), false},
		{"zero max neighbors", AgentParams{MaxNeighbors: 0, NeighborDist: 1, MaxAccel: 1, PrefSpeed: 1, MaxSpeed: 1}, true},
		{"zero neighbor dist", AgentParams{MaxNeighbors: 1, NeighborDist: 0, MaxAccel: 1, PrefSpeed: 1, MaxSpeed: 1}, true},
		{"negative radius", AgentParams{MaxNeighbors: 1, NeighborDist: 1, Radius: -1, MaxAccel: 1, PrefSpeed: 1, MaxSpeed: 1}, true},
		{"pref exceeds max", AgentParams{MaxNeighbors: 1, NeighborDist: 1, MaxAccel: 1, PrefSpeed: 2, MaxSpeed: 1}, true},
		{"zero max accel", AgentParams{MaxNeighbors: 1, NeighborDist: 1, MaxAccel: 0, PrefSpeed: 1, MaxSpeed: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Validate() = %v, want ErrInvalidParameter", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestSetPrefVelocityZeroedAtGoal(t *testing.T) {
	a := NewAgent(NewVector2(0, 0), 0, DefaultAgentParams())
	goal, err := NewGoal(NewVector2(0, 0))
	if err != nil {
		t.Fatalf("NewGoal: %v", err)
	}

	a.SetPrefVelocity(goal)
	if got := a.PrefVelocity; !vecEqual(got, Vector2{}, 1e-6) {
		t.Errorf("PrefVelocity = %v, want zero vector at goal", got)
	}
}

func TestSetPrefVelocityClippedToPrefSpeed(t *testing.T) {
	params := DefaultAgentParams()
	params.PrefSpeed = 1
	a := NewAgent(NewVector2(0, 0), 0, params)
	goal, err := NewGoal(NewVector2(10, 0))
	if err != nil {
		t.Fatalf("NewGoal: %v", err)
	}

	a.SetPrefVelocity(goal)
	if got := a.PrefVelocity.Abs(); !floatEqual(got, 1, 1e-5) {
		t.Errorf("PrefVelocity magnitude = %v, want pref_speed 1", got)
	}
	if a.PrefVelocity.X <= 0 {
		t.Errorf("PrefVelocity should point toward goal, got %v", a.PrefVelocity)
	}
}

func TestResetTransientBuffersRetainsCapacity(t *testing.T) {
	a := NewAgent(NewVector2(0, 0), 0, DefaultAgentParams())
	a.Neighbors = append(a.Neighbors, Neighbor{ID: 1, DistSq: 1})
	a.Obstacles = append(a.Obstacles, Obstacle{})
	a.Candidates = append(a.Candidates, Candidate{})

	neighborCap, obstacleCap, candidateCap := cap(a.Neighbors), cap(a.Obstacles), cap(a.Candidates)

	a.ResetTransientBuffers()

	if len(a.Neighbors) != 0 || len(a.Obstacles) != 0 || len(a.Candidates) != 0 {
		t.Fatal("ResetTransientBuffers should zero all lengths")
	}
	if cap(a.Neighbors) != neighborCap || cap(a.Obstacles) != obstacleCap || cap(a.Candidates) != candidateCap {
		t.Error("ResetTransientBuffers should retain backing capacity")
	}
}
