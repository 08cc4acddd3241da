package common

import "testing"

func TestFloorDiv(t *testing.T) {
	cases := []struct {
		a, b, div, mod int
	}{
		{0, 16, 0, 0},
		{15, 16, 0, 15},
		{16, 16, 1, 0},
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.div {
			t.Fatalf("FloorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.div)
		}
		if got := FloorMod(c.a, c.b); got != c.mod {
			t.Fatalf("FloorMod(%d, %d) = %d, want %d", c.a, c.b, got, c.mod)
		}
	}
}

func TestAlmostEqual(t *testing.T) {
	if !AlmostEqual(0.1+0.2, 0.3) {
		t.Fatalf("0.1+0.2 should be almost 0.3")
	}
	if AlmostEqual(1, 1+10*Epsilon) {
		t.Fatalf("values 10 epsilons apart compared equal")
	}
}
