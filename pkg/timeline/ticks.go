package timeline

const (
	second = int64(1000)
	minute = 60 * second
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
)

// tickSteps are the candidate intervals between axis ticks, smallest first.
var tickSteps = []int64{
	second, 2 * second, 5 * second, 10 * second, 15 * second, 30 * second,
	minute, 2 * minute, 5 * minute, 10 * minute, 15 * minute, 30 * minute,
	hour, 2 * hour, 3 * hour, 6 * hour, 12 * hour,
	day, 2 * day, week, 2 * week, 4 * week,
}

// DefaultTickCount is the approximate number of ticks per axis.
const DefaultTickCount = 10

// MaxTickCount bounds the requested tick count.
const MaxTickCount = 100

// Tick is a labelled position on the time axis.
type Tick struct {
	Offset int64   `json:"offset"` // Milliseconds since Scale.Start
	X      float64 `json:"x"`
	Label  string  `json:"label"`
}

// Ticks returns axis ticks at a round interval, about count of them,
// starting at 0. count is clamped to MaxTickCount. A zero span, or one
// shorter than a second, yields only the tick at 0.
func Ticks(s Scale, count int) []Tick {
	span := s.Span()
	if span <= 0 {
		return []Tick{{Offset: 0, X: 0, Label: FormatDuration(0)}}
	}
	if count <= 0 {
		count = DefaultTickCount
	}
	count = min(count, MaxTickCount)

	step := tickStep(span, count)
	ticks := make([]Tick, 0, span/step+1)
	for off := int64(0); off <= span; off += step {
		ticks = append(ticks, Tick{Offset: off, X: s.Map(off), Label: FormatDuration(off)})
	}
	return ticks
}

func tickStep(span int64, count int) int64 {
	target := span / int64(count)
	for _, step := range tickSteps {
		if step >= target {
			return step
		}
	}
	// Beyond the table, round up to whole multiples of four weeks.
	last := tickSteps[len(tickSteps)-1]
	return (target + last - 1) / last * last
}
