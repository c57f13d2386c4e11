package datastructure

import (
	"math"

	"github.com/twpayne/go-polyline"
)

// RoadType jenis jalan dari tag highway openstreetmap
type RoadType string

const (
	RoadTypeMotorway    RoadType = "motorway"
	RoadTypeTrunk       RoadType = "trunk"
	RoadTypePrimary     RoadType = "primary"
	RoadTypeSecondary   RoadType = "secondary"
	RoadTypeTertiary    RoadType = "tertiary"
	RoadTypeResidential RoadType = "residential"
	RoadTypeService     RoadType = "service"
	RoadTypeFootway     RoadType = "footway"
	RoadTypeUnknown     RoadType = "unknown"
)

// Node is a road network node. X and Y are normalized map coordinates,
// Lat and Lon are kept for rendering.
type Node struct {
	IDx   int32   `json:"-"`
	OsmID int64   `json:"osm_id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Distance euclidean distance in normalized map units.
func (n Node) Distance(other Node) float64 {
	dx := n.X - other.X
	dy := n.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

type Road struct {
	WayID    int64
	Type     RoadType
	NodeIdxs []int32 // urutan node sesuai way osm
}

// PathNode copy of a node on a found path. DistFromGoal is the cumulative
// distance (model units) from this node to the goal along the path; it is an
// output annotation only.
type PathNode struct {
	Node
	DistFromGoal float64 `json:"dist_from_goal"`
}

func RoadTypeFromTag(highway string) RoadType {
	switch RoadType(highway) {
	case RoadTypeMotorway, RoadTypeTrunk, RoadTypePrimary, RoadTypeSecondary,
		RoadTypeTertiary, RoadTypeResidential, RoadTypeService, RoadTypeFootway:
		return RoadType(highway)
	default:
		return RoadTypeUnknown
	}
}

// RenderPath encode path jadi google encoded polyline
func RenderPath(path []PathNode) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

func PathCoordinates(path []PathNode) []Coordinate {
	route := make([]Coordinate, 0, len(path))
	for _, p := range path {
		route = append(route, NewCoordinate(p.Lat, p.Lon))
	}
	return route
}
