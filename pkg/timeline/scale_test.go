package timeline

import "testing"

func TestScaleBounds(t *testing.T) {
	nodes := []*Node{
		{Name: "a", SubmitTime: 1000, ElapsedTime: 500},
		{Name: "b", SubmitTime: 1200, ElapsedTime: 3000},
	}
	s := NewScale(nodes, 720)

	if s.Start != 1000 || s.End != 4200 {
		t.Fatalf("Start, End = %d, %d, want 1000, 4200", s.Start, s.End)
	}
	if got := s.Map(0); got != 0 {
		t.Errorf("Map(0) = %v, want 0", got)
	}
	if got := s.Map(s.Span()); got != 720 {
		t.Errorf("Map(span) = %v, want exactly 720", got)
	}
	if got := s.At(4200); got != 720 {
		t.Errorf("At(end) = %v, want 720", got)
	}
	if got := s.Map(1600); got != 360 {
		t.Errorf("Map(span/2) = %v, want 360", got)
	}
}

func TestScaleMonotonic(t *testing.T) {
	s := Scale{Start: 0, End: 7919, Width: 613}
	prev := -1.0
	for d := int64(0); d <= s.Span(); d += 37 {
		x := s.Map(d)
		if x < prev {
			t.Fatalf("Map(%d) = %v < previous %v", d, x, prev)
		}
		prev = x
	}
}

func TestScaleDegenerate(t *testing.T) {
	empty := NewScale(nil, 500)
	if empty.Start != 0 || empty.End != 0 {
		t.Errorf("empty scale = %+v, want zero window", empty)
	}
	if got := empty.Map(100); got != 0 {
		t.Errorf("Map on empty scale = %v, want 0", got)
	}

	point := NewScale([]*Node{{Name: "a", SubmitTime: 50}}, 500)
	if got := point.At(50); got != 0 {
		t.Errorf("At on zero-width domain = %v, want 0", got)
	}
}

func TestScaleNegativeWidth(t *testing.T) {
	s := NewScale([]*Node{{Name: "a", ElapsedTime: 10}}, -5)
	if s.Width != 0 {
		t.Errorf("Width = %v, want 0", s.Width)
	}
}
