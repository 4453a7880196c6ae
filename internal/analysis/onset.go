package analysis

const (
	// HistorySize is the number of recent block volumes kept for onset detection.
	HistorySize = 10
	// minHistory is the number of volumes required before onsets can fire.
	minHistory = 5
	// recentExcluded is how many of the newest volumes are left out of the baseline.
	recentExcluded = 3
	// onsetRatio is the multiple of the baseline a volume must exceed.
	onsetRatio = 2.0
)

// OnsetDetector flags sudden volume increases against a short trailing
// baseline. The history is a fixed ring so Observe never allocates.
type OnsetDetector struct {
	history [HistorySize]float64
	head    int // index of the oldest entry
	count   int
}

// Observe records volume and reports whether it is an onset. The volume is
// pushed first (evicting the oldest beyond HistorySize); once at least five
// volumes are held, the baseline is the mean of all but the three most recent
// and the block is an onset when volume > 2 * baseline.
func (d *OnsetDetector) Observe(volume float64) bool {
	if d.count < HistorySize {
		d.history[(d.head+d.count)%HistorySize] = volume
		d.count++
	} else {
		d.history[d.head] = volume
		d.head = (d.head + 1) % HistorySize
	}

	if d.count < minHistory {
		return false
	}

	older := d.count - recentExcluded
	var sum float64
	for i := range older {
		sum += d.history[(d.head+i)%HistorySize]
	}
	baseline := sum / float64(older)

	return volume > onsetRatio*baseline
}

// Len returns the number of volumes currently held.
func (d *OnsetDetector) Len() int {
	return d.count
}

// History copies the held volumes, oldest first, into dst and returns it.
func (d *OnsetDetector) History(dst []float64) []float64 {
	dst = dst[:0]
	for i := range d.count {
		dst = append(dst, d.history[(d.head+i)%HistorySize])
	}
	return dst
}

// Reset clears the history.
func (d *OnsetDetector) Reset() {
	*d = OnsetDetector{}
}
