// Package geo cálculo de distancia de círculo máximo para el geocerco de
// proximidad (fórmula de haversine, lógica pura).
package geo

import "math"

// earthRadiusM radio medio de la Tierra en metros.
const earthRadiusM = 6371000.0

// DistanceM distancia de círculo máximo en metros entre dos puntos (grados decimales).
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	dφ := (lat2 - lat1) * math.Pi / 180
	dλ := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dφ/2)*math.Sin(dφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// WithinRadius indica si el punto (lat, lng) está dentro del radio (metros) del sitio.
func WithinRadius(siteLat, siteLng, lat, lng, radiusM float64) bool {
	return DistanceM(siteLat, siteLng, lat, lng) <= radiusM
}
