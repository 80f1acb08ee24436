package canvas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func assertMatrix(t *testing.T, name string, got, want Matrix) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := Matrix{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "m*I", m.Mul(Identity), m)
	assertMatrix(t, "I*m", Identity.Mul(m), m)
}

func TestMulAppliesRightFirst(t *testing.T) {
	// Translate then scale: the point is scaled first, then moved.
	m := Translation(10, 20).Mul(Scaling(2, 3))
	x, y := m.Apply(1, 1)
	assert.InDelta(t, 12.0, x, epsilon)
	assert.InDelta(t, 23.0, y, epsilon)
}

func TestRotation90(t *testing.T) {
	// cos(90)=0, sin(90)=1 -> a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", Rotation(math.Pi/2), Matrix{0, 1, -1, 0, 0, 0})

	x, y := Rotation(math.Pi/2).Apply(1, 0)
	assert.InDelta(t, 0.0, x, epsilon)
	assert.InDelta(t, 1.0, y, epsilon, "positive angles turn +x toward +y")
}

func TestInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"translation", Translation(7, -3)},
		{"scale", Scaling(2, 0.5)},
		{"rotation", Rotation(0.7)},
		{"combined", Translation(5, 5).Mul(Rotation(1.1)).Mul(Scaling(3, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMatrix(t, "m*inv", tt.m.Mul(tt.m.Invert()), Identity)
		})
	}
}

func TestInvertSingular(t *testing.T) {
	assertMatrix(t, "singular", Scaling(0, 1).Invert(), Identity)
}

func TestAff3Layout(t *testing.T) {
	m := Matrix{1, 2, 3, 4, 5, 6}
	a := m.aff3()
	// Row-major: x' = a[0]x + a[1]y + a[2]
	x := a[0]*1 + a[1]*1 + a[2]
	y := a[3]*1 + a[4]*1 + a[5]
	wx, wy := m.Apply(1, 1)
	assert.Equal(t, wx, x)
	assert.Equal(t, wy, y)
}
