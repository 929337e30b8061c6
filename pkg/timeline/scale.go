package timeline

// Scale maps times onto the horizontal pixel range of the chart.
//
// The domain is [0, End-Start] in milliseconds relative to Start; the
// range is [0, Width] in pixels. A zero-width domain maps everything to 0.
type Scale struct {
	Start int64   // Earliest submit time
	End   int64   // Latest finish time
	Width float64 // Available drawing width in pixels
}

// NewScale returns the scale spanning every node's [submit, finish]
// interval. An empty node set yields Start = End = 0.
func NewScale(nodes []*Node, width float64) Scale {
	s := Scale{Width: max(0, width)}
	for i, n := range nodes {
		if i == 0 || n.SubmitTime < s.Start {
			s.Start = n.SubmitTime
		}
		if i == 0 || n.FinishTime() > s.End {
			s.End = n.FinishTime()
		}
	}
	return s
}

// Span returns End - Start.
func (s Scale) Span() int64 { return s.End - s.Start }

// Map converts a duration relative to Start into a pixel offset.
// Map(0) is 0 and Map(Span()) is exactly Width.
func (s Scale) Map(d int64) float64 {
	span := s.Span()
	if span <= 0 {
		return 0
	}
	if d == span {
		return s.Width
	}
	return float64(d) * s.Width / float64(span)
}

// At converts an absolute timestamp into a pixel offset.
func (s Scale) At(t int64) float64 { return s.Map(t - s.Start) }
