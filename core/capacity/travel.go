package capacity

import "math"

// TravelMinutes converts a one-way distance and a road speed into whole
// minutes of travel, doubled when the trip is planned as a round trip.
// Non-positive distances or speeds yield zero. There are no caps or
// floors; the result is rounded up to the next minute.
func TravelMinutes(distanceKm, kmh float64, roundTrip bool) int {
	if distanceKm <= 0 || kmh <= 0 {
		return 0
	}
	d := distanceKm
	if roundTrip {
		d *= 2
	}
	return int(math.Ceil(d / kmh * 60))
}
