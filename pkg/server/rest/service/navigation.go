package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"lintang/routeplanner/pkg/concurrent"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/engine/routingalgorithm"
	"lintang/routeplanner/pkg/geo"
	"lintang/routeplanner/pkg/server"

	"github.com/sirupsen/logrus"
)

var ErrNoRoute = errors.New("end node is unreachable from start node")

type RouteQuery struct {
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
}

type ShortestPathResult struct {
	Route        routingalgorithm.Route
	Polyline     string
	Coordinates  []datastructure.Coordinate
	StartNode    datastructure.Node
	EndNode      datastructure.Node
	StraightLine float64 // km, haversine antara start node & end node
}

type BatchResult struct {
	Index  int
	Result ShortestPathResult
	Err    error
}

type NavigationService struct {
	model        routingalgorithm.GraphModel
	log          *logrus.Logger
	batchWorkers int
}

func NewNavigationService(model routingalgorithm.GraphModel, log *logrus.Logger, batchWorkers int) *NavigationService {
	return &NavigationService{model: model, log: log, batchWorkers: batchWorkers}
}

// ShortestPath A* dari titik start ke titik end, koordinat dalam skala 0-100 map extent.
func (uc *NavigationService) ShortestPath(ctx context.Context, startX, startY, endX, endY float64) (ShortestPathResult, error) {
	if err := ctx.Err(); err != nil {
		return ShortestPathResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "request cancelled")
	}
	for _, v := range []float64{startX, startY, endX, endY} {
		if v < 0 || v > 100 {
			return ShortestPathResult{}, server.WrapErrorf(nil, server.ErrBadParamInput, "coordinate %v is outside of map extent [0,100]", v)
		}
	}

	now := time.Now()
	rp := routingalgorithm.NewRoutePlanner(uc.model, startX, startY, endX, endY)
	route := rp.AStarSearch()
	startNode, endNode := rp.StartNode(), rp.EndNode()

	fields := logrus.Fields{
		"start":    startNode.IDx,
		"end":      endNode.IDx,
		"expanded": route.ExpandedNodes,
		"took":     time.Since(now),
	}
	if !route.Found {
		uc.log.WithFields(fields).Debug("no route found")
		return ShortestPathResult{}, server.WrapErrorf(ErrNoRoute, server.ErrNotFound,
			"sorry!! no route found between (%.2f, %.2f) and (%.2f, %.2f)", startX, startY, endX, endY)
	}
	uc.log.WithFields(fields).WithField("distance", route.Distance).Debug("route found")

	straightLine := geo.HaversineDistance(geo.NewLocation(startNode.Lat, startNode.Lon),
		geo.NewLocation(endNode.Lat, endNode.Lon))

	return ShortestPathResult{
		Route:        route,
		Polyline:     datastructure.RenderPath(route.Path),
		Coordinates:  datastructure.PathCoordinates(route.Path),
		StartNode:    startNode,
		EndNode:      endNode,
		StraightLine: straightLine,
	}, nil
}

// ShortestPathBatch jalankan banyak query A* secara paralel di atas model yang sama.
// Hasil diurutkan sesuai urutan queries.
func (uc *NavigationService) ShortestPathBatch(ctx context.Context, queries []RouteQuery) []BatchResult {
	workers := concurrent.NewWorkerPool[concurrent.RouteQueryJobItem, BatchResult](uc.batchWorkers, len(queries))
	for i, q := range queries {
		workers.AddJob(concurrent.RouteQueryJobItem{Index: i, StartX: q.StartX, StartY: q.StartY, EndX: q.EndX, EndY: q.EndY})
	}
	workers.Close()

	workers.Start(func(job concurrent.RouteQueryJobItem) BatchResult {
		res, err := uc.ShortestPath(ctx, job.StartX, job.StartY, job.EndX, job.EndY)
		return BatchResult{Index: job.Index, Result: res, Err: err}
	})
	workers.Wait()

	results := make([]BatchResult, 0, len(queries))
	for res := range workers.CollectResults() {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	uc.log.WithField("queries", len(queries)).Info("batch shortest path finished")
	return results
}
