package focus

// Bar is one column of the duration trend chart.
type Bar struct {
	Label   string  `json:"label"`
	Minutes float64 `json:"minutes"`
	// Percent is the bar height relative to the longest session in the window.
	Percent float64 `json:"percent"`
	// Tone alternates 0/1 by position.
	Tone int `json:"tone"`
}

// ChartBars turns a trend window into chart columns in input order.
func ChartBars(trend []Session) []Bar {
	longest := 0
	for _, s := range trend {
		longest = max(longest, s.DurationSeconds)
	}

	bars := make([]Bar, 0, len(trend))
	for i, s := range trend {
		b := Bar{
			Label:   s.Label(),
			Minutes: float64(s.DurationSeconds) / 60,
			Tone:    i % 2,
		}
		if longest > 0 {
			b.Percent = float64(s.DurationSeconds) / float64(longest) * 100
		}
		bars = append(bars, b)
	}
	return bars
}
