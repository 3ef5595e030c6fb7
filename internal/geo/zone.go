package geo

import "fmt"

// Zone is a concentric distance bucket around the nearest treatment site.
type Zone int

// NumZones is the number of fixed distance zones.
const NumZones = 4

// Zone upper bounds (kilometres, inclusive). Anything beyond the last bound
// falls into the outermost zone.
var zoneBoundsKM = [NumZones - 1]float64{1, 2, 3}

// AssignZone buckets a distance in kilometres:
//   - 0: d <= 1km
//   - 1: 1km < d <= 2km
//   - 2: 2km < d <= 3km
//   - 3: d > 3km
//
// Boundary values go to the smaller zone.
func AssignZone(km float64) Zone {
	for i, bound := range zoneBoundsKM {
		if km <= bound {
			return Zone(i)
		}
	}
	return Zone(NumZones - 1)
}

// Description labels the zone for display, e.g. "1-2km from CTS".
func (z Zone) Description() string {
	if int(z) < NumZones-1 {
		return fmt.Sprintf("%d-%dkm from CTS", int(z), int(z)+1)
	}
	return fmt.Sprintf(">%dkm from CTS", NumZones-1)
}
