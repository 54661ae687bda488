package envconfig

import (
	"testing"
)

func TestCutoff(t *testing.T) {
	tests := []struct {
		config Config
		cutoff int
	}{
		{NewConfig(21, 21, 0, 0), 4 * 21 * 21},
		{NewConfig(10, 4, 0, 0), 4 * 11 * 5},
		{NewConfig(21, 21, 50, 0), 50},
	}

	for _, test := range tests {
		if c := test.config.Cutoff(); c != test.cutoff {
			t.Errorf("cutoff: want %d, have %d for %+v", test.cutoff, c,
				test.config)
		}
	}
}

func TestCreate(t *testing.T) {
	c := NewConfig(10, 8, 0, 3)
	m, step, err := c.Create(0.9)
	if err != nil {
		t.Fatal(err)
	}

	if m.Grid().Width() != 11 || m.Grid().Height() != 9 {
		t.Errorf("create: want 11x9 maze, have %dx%d", m.Grid().Width(),
			m.Grid().Height())
	}
	if !step.First() || step.Discount != 0.9 {
		t.Errorf("create: unexpected first step %v", step)
	}

	if _, _, err := NewConfig(5, 5, -1, 0).Create(1); err == nil {
		t.Errorf("create: expected error for negative cutoff")
	}
}
