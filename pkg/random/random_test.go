package random

import (
	"testing"
)

func TestDeriveDeterministic(t *testing.T) {
	a := Derive(7, 42)
	b := Derive(7, 42)
	for i := 0; i < 100; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d: %x != %x", i, x, y)
		}
	}
}

func TestDeriveDiscardsWarmup(t *testing.T) {
	var raw Stream
	key := uint64(7)<<32 | 42
	raw.pcg.Seed(splitmix64(key+golden), splitmix64(uint64(hash32(7^(42+indexOffset)))))
	first := raw.pcg.Uint64()
	second := raw.pcg.Uint64()

	s := Derive(7, 42)
	got := s.Uint64()
	if got == first {
		t.Error("Derive() returned the warm-up draw")
	}
	if got != second {
		t.Errorf("Derive() first draw = %x, want %x", got, second)
	}
}

func TestStreamIndependence(t *testing.T) {
	tests := []struct {
		name string
		a, b Stream
	}{
		{"adjacent indices", Derive(1, 0), Derive(1, 1)},
		{"distant indices", Derive(1, 3), Derive(1, 100000)},
		{"adjacent seeds", Derive(1, 5), Derive(2, 5)},
		{"swapped seed and index", Derive(3, 9), Derive(9, 3)},
		{"salted seed", Derive(1^0xcbd, 4), Derive(1^0x5a3, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			same := 0
			for i := 0; i < 1000; i++ {
				if tt.a.Uint64() == tt.b.Uint64() {
					same++
				}
			}
			if same > 0 {
				t.Errorf("%d of 1000 draws identical", same)
			}
		})
	}
}

func TestUNormChiSquare(t *testing.T) {
	const (
		buckets = 10
		draws   = 100000
		// 9 degrees of freedom; p ≈ 1e-5.
		limit = 40.0
	)
	s := Derive(12345, 0)
	var counts [buckets]int
	for i := 0; i < draws; i++ {
		u := s.UNorm()
		if u < 0 || u >= 1 {
			t.Fatalf("UNorm() = %v, out of [0,1)", u)
		}
		counts[int(u*buckets)]++
	}
	expected := float64(draws) / buckets
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	if chi > limit {
		t.Errorf("chi-square = %.2f, want <= %.1f (counts %v)", chi, limit, counts)
	}
}

func TestChiSquareAcrossIndices(t *testing.T) {
	// First draw of many derived streams should also be uniform.
	const buckets = 10
	var counts [buckets]int
	for i := uint32(0); i < 50000; i++ {
		s := Derive(99, i)
		counts[int(s.UNorm()*buckets)]++
	}
	expected := 5000.0
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	if chi > 40 {
		t.Errorf("chi-square = %.2f, counts %v", chi, counts)
	}
}

func TestRanges(t *testing.T) {
	s := New(3)
	for i := 0; i < 10000; i++ {
		if v := s.SNorm(); v < -0.5 || v >= 0.5 {
			t.Fatalf("SNorm() = %v", v)
		}
		if v := s.Range(2, 5); v < 2 || v >= 5 {
			t.Fatalf("Range(2, 5) = %v", v)
		}
		if v := s.RangePow(0.2, 0.4, 2); v < 0.2 || v > 0.4 {
			t.Fatalf("RangePow(0.2, 0.4, 2) = %v", v)
		}
		if v := s.IntRange(4, 8); v < 4 || v >= 8 {
			t.Fatalf("IntRange(4, 8) = %v", v)
		}
	}
}

func TestIntRangeDegenerate(t *testing.T) {
	s := New(1)
	if got := s.IntRange(5, 5); got != 5 {
		t.Errorf("IntRange(5, 5) = %d, want 5", got)
	}
	if got := s.IntRange(5, 2); got != 5 {
		t.Errorf("IntRange(5, 2) = %d, want 5", got)
	}
}

func TestIntRangeCoversAllValues(t *testing.T) {
	s := New(11)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		seen[s.IntRange(0, 4)] = true
	}
	if len(seen) != 4 {
		t.Errorf("IntRange(0, 4) produced %d distinct values, want 4", len(seen))
	}
}

func TestRangePowSkew(t *testing.T) {
	lowSum, highSum := 0.0, 0.0
	a, b := New(5), New(5)
	for i := 0; i < 5000; i++ {
		lowSum += float64(a.RangePow(0, 1, 4))
		highSum += float64(b.RangePow(0, 1, 0.25))
	}
	if lowSum >= highSum {
		t.Errorf("exponent 4 mean %.3f should be below exponent 0.25 mean %.3f", lowSum/5000, highSum/5000)
	}
}
