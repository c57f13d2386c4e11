package routemodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strings"

	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/geo"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

var ErrDegenerateExtent = errors.New("road network extent is degenerate")

// LoadOSMFile baca file openstreetmap (.osm xml atau .osm.pbf) jadi RouteModel.
// progress boleh nil.
func LoadOSMFile(ctx context.Context, path string, progress io.Writer, log *logrus.Logger) (*RouteModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm file %s: %w", path, err)
	}
	defer f.Close()

	var scanner osm.Scanner
	if strings.HasSuffix(path, ".pbf") {
		scanner = osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1))
	} else {
		scanner = osmxml.New(ctx, f)
	}
	defer scanner.Close()

	model, err := BuildFromScanner(scanner, progress)
	if err != nil {
		return nil, fmt.Errorf("build road network from %s: %w", path, err)
	}

	log.WithFields(logrus.Fields{
		"file":  path,
		"nodes": model.NumNodes(),
		"roads": model.NumRoads(),
		"scale": model.MetricScale(),
	}).Info("road network loaded")
	return model, nil
}

// BuildFromScanner ambil semua way dengan tag highway sebagai road. Node yang tidak dipakai road manapun dibuang.
func BuildFromScanner(scanner osm.Scanner, progress io.Writer) (*RouteModel, error) {
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][1/2][reset] reading openstreetmap objects..."),
	)

	osmNodes := make(map[osm.NodeID]*osm.Node)
	ways := make([]*osm.Way, 0)
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			osmNodes[o.ID] = o
		case *osm.Way:
			if o.Tags.Find("highway") != "" {
				ways = append(ways, o)
			}
		}
		bar.Add(1)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm objects: %w", err)
	}
	bar.Finish()

	nodes := make([]datastructure.Node, 0)
	nodeIdx := make(map[osm.NodeID]int32)
	roads := make([]datastructure.Road, 0, len(ways))

	bar = progressbar.NewOptions(len(ways),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][2/2][reset] building road network..."),
	)
	for _, way := range ways {
		road := datastructure.Road{
			WayID:    int64(way.ID),
			Type:     datastructure.RoadTypeFromTag(way.Tags.Find("highway")),
			NodeIdxs: make([]int32, 0, len(way.Nodes)),
		}
		for _, wn := range way.Nodes {
			n, ok := osmNodes[wn.ID]
			if !ok {
				// node di luar extract
				continue
			}
			idx, ok := nodeIdx[wn.ID]
			if !ok {
				idx = int32(len(nodes))
				nodeIdx[wn.ID] = idx
				nodes = append(nodes, datastructure.Node{
					OsmID: int64(n.ID),
					Lat:   n.Lat,
					Lon:   n.Lon,
				})
			}
			road.NodeIdxs = append(road.NodeIdxs, idx)
		}
		if len(road.NodeIdxs) > 1 {
			roads = append(roads, road)
		}
		bar.Add(1)
	}
	bar.Finish()

	if len(nodes) == 0 {
		return nil, ErrEmptyRoadNetwork
	}

	scale, err := normalizeCoordinates(nodes)
	if err != nil {
		return nil, err
	}
	return NewRouteModel(nodes, roads, scale)
}

// normalizeCoordinates proyeksi lat/lon ke web mercator lalu normalisasi ke
// [0,1] pakai sisi extent yang paling pendek. Return metric scale (meter per unit).
func normalizeCoordinates(nodes []datastructure.Node) (float64, error) {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, n := range nodes {
		minLat = math.Min(minLat, n.Lat)
		maxLat = math.Max(maxLat, n.Lat)
		minLon = math.Min(minLon, n.Lon)
		maxLon = math.Max(maxLon, n.Lon)
	}

	minX, minY := geo.LonToMercatorX(minLon), geo.LatToMercatorY(minLat)
	dx := geo.LonToMercatorX(maxLon) - minX
	dy := geo.LatToMercatorY(maxLat) - minY

	scale := math.Min(dx, dy)
	if scale <= 0 {
		scale = math.Max(dx, dy)
	}
	if scale <= 0 {
		return 0, ErrDegenerateExtent
	}

	for i := range nodes {
		nodes[i].X = (geo.LonToMercatorX(nodes[i].Lon) - minX) / scale
		nodes[i].Y = (geo.LatToMercatorY(nodes[i].Lat) - minY) / scale
	}
	return scale, nil
}
