package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	earthRadiusKM = 6371.0
	// radius ellipsoid WGS84 yang dipakai web mercator
	mercatorRadiusM = 6378137.0
)

type Location struct {
	Latitude  float64
	Longitude float64
}

func NewLocation(latDegree float64, lonDegree float64) Location {
	return Location{
		Latitude:  latDegree,
		Longitude: lonDegree,
	}
}

// HaversineDistance great-circle distance in km.
func HaversineDistance(locationOne Location, locationTwo Location) float64 {
	one := s2.LatLngFromDegrees(locationOne.Latitude, locationOne.Longitude)
	two := s2.LatLngFromDegrees(locationTwo.Latitude, locationTwo.Longitude)
	return one.Distance(two).Radians() * earthRadiusKM
}

// LonToMercatorX proyeksi longitude ke meter (web mercator)
func LonToMercatorX(lon float64) float64 {
	return degToRad(lon) * mercatorRadiusM
}

// LatToMercatorY proyeksi latitude ke meter (web mercator)
func LatToMercatorY(lat float64) float64 {
	return math.Log(math.Tan(degToRad(lat)/2+math.Pi/4)) * mercatorRadiusM
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}
