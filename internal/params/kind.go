package params

// Kind is the closed set of parameter categories the engine understands.
type Kind int

const (
	// KindFallback covers any address without dedicated handling. Its values
	// are stored but nothing in the audio path reads them.
	KindFallback Kind = iota
	// KindGain scales the input signal before analysis.
	KindGain
	// KindGate sets the noise gate threshold.
	KindGate
)

// Well-known control addresses.
const (
	GainAddress = "/control/gain"
	GateAddress = "/control/gate"
)

// Classify maps an inbound OSC address to its parameter kind.
func Classify(address string) Kind {
	switch address {
	case GainAddress:
		return KindGain
	case GateAddress:
		return KindGate
	default:
		return KindFallback
	}
}

func (k Kind) String() string {
	switch k {
	case KindGain:
		return "gain"
	case KindGate:
		return "gate"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}
