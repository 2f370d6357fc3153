package crossover

import "fmt"

// ByName selects a detector by its closed strategy name.
func ByName(name string) (Detector, error) {
	switch name {
	case SMADetector{}.Name():
		return SMADetector{}, nil
	case MACDDetector{}.Name():
		return MACDDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
