// Package geo computes distances between WGS84 coordinates.
package geo

import (
	"math"

	"github.com/kilianp07/taxifare/core/model"
)

// WGS84 ellipsoid parameters.
const (
	semiMajorAxisM = 6378137.0
	flattening     = 1 / 298.257223563
	semiMinorAxisM = (1 - flattening) * semiMajorAxisM

	// meanEarthRadiusKm is the IUGG mean radius used by the spherical fallback.
	meanEarthRadiusKm = 6371.0088

	maxIterations = 200
	convergence   = 1e-12
)

// DistanceKm returns the geodesic distance in kilometres between a and b on
// the WGS84 ellipsoid using Vincenty's inverse formula. Nearly antipodal
// points, for which the iteration does not converge, fall back to the
// spherical great-circle distance. Coordinates are not validated.
func DistanceKm(a, b model.Coordinate) float64 {
	// Evaluate in a fixed order so that the result is bit-for-bit symmetric.
	if less(b, a) {
		a, b = b, a
	}
	if d, ok := vincentyKm(a, b); ok {
		return d
	}
	return HaversineKm(a, b)
}

// HaversineKm returns the great-circle distance in kilometres between a and b
// on a sphere of mean Earth radius.
func HaversineKm(a, b model.Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)
	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return meanEarthRadiusKm * c
}

func vincentyKm(a, b model.Coordinate) (float64, bool) {
	L := degreesToRadians(b.Lon - a.Lon)
	u1 := math.Atan((1 - flattening) * math.Tan(degreesToRadians(a.Lat)))
	u2 := math.Atan((1 - flattening) * math.Tan(degreesToRadians(b.Lat)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Hypot(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
		if sinSigma == 0 {
			// coincident points
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		cos2SigmaM = 0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < convergence {
			converged = true
			break
		}
	}
	if !converged {
		return 0, false
	}

	uSq := cosSqAlpha * (semiMajorAxisM*semiMajorAxisM - semiMinorAxisM*semiMinorAxisM) /
		(semiMinorAxisM * semiMinorAxisM)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return semiMinorAxisM * bigA * (sigma - deltaSigma) / 1000, true
}

func less(a, b model.Coordinate) bool {
	if a.Lat != b.Lat {
		return a.Lat < b.Lat
	}
	return a.Lon < b.Lon
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
