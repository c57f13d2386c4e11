package routemodel

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"lintang/routeplanner/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

const (
	rtreeTol = 1e-9
	// jumlah kandidat dari rtree yang dicek ulang pakai jarak exact
	nearestCandidates = 8
)

var (
	ErrEmptyRoadNetwork = errors.New("road network has no routable node")
	ErrInvalidScale     = errors.New("metric scale must be positive")
)

type nodeRect struct {
	Location rtreego.Point
	IDx      int32
}

func (n *nodeRect) Bounds() rtreego.Rect {
	return n.Location.ToRect(rtreeTol)
}

// RouteModel road network graph. Node & road tidak berubah setelah dibuat,
// kecuali adjacency yang dihitung lazy dan slot path hasil A*.
type RouteModel struct {
	nodes       []datastructure.Node
	roads       []datastructure.Road
	nodeToRoad  [][]int32
	metricScale float64
	rtree       *rtreego.Rtree

	neighbors     [][]int32
	neighborsOnce []sync.Once

	mu   sync.RWMutex
	path []datastructure.PathNode
}

// NewRouteModel. IDx setiap node di-set sesuai posisinya di slice nodes.
// Road dengan tipe footway tidak dipakai untuk routing.
func NewRouteModel(nodes []datastructure.Node, roads []datastructure.Road, metricScale float64) (*RouteModel, error) {
	if metricScale <= 0 {
		return nil, ErrInvalidScale
	}

	m := &RouteModel{
		nodes:         make([]datastructure.Node, len(nodes)),
		roads:         roads,
		nodeToRoad:    make([][]int32, len(nodes)),
		metricScale:   metricScale,
		rtree:         rtreego.NewTree(2, 25, 50),
		neighbors:     make([][]int32, len(nodes)),
		neighborsOnce: make([]sync.Once, len(nodes)),
	}
	copy(m.nodes, nodes)
	for i := range m.nodes {
		m.nodes[i].IDx = int32(i)
	}

	for roadIdx, road := range roads {
		if road.Type == datastructure.RoadTypeFootway {
			continue
		}
		for _, nodeIdx := range road.NodeIdxs {
			if nodeIdx < 0 || int(nodeIdx) >= len(nodes) {
				return nil, fmt.Errorf("road %d references unknown node %d", road.WayID, nodeIdx)
			}
			nr := m.nodeToRoad[nodeIdx]
			if len(nr) == 0 || nr[len(nr)-1] != int32(roadIdx) {
				m.nodeToRoad[nodeIdx] = append(nr, int32(roadIdx))
			}
		}
	}

	routable := 0
	for i, node := range m.nodes {
		if len(m.nodeToRoad[i]) == 0 {
			continue
		}
		m.rtree.Insert(&nodeRect{Location: rtreego.Point{node.X, node.Y}, IDx: int32(i)})
		routable++
	}
	if routable == 0 {
		return nil, ErrEmptyRoadNetwork
	}

	return m, nil
}

// FindClosestNode node paling dekat dengan (x,y) yang ada di road non-footway.
// Kalau jaraknya sama, pilih IDx paling kecil.
func (m *RouteModel) FindClosestNode(x, y float64) datastructure.Node {
	query := datastructure.Node{X: x, Y: y}
	candidates := m.rtree.NearestNeighbors(nearestCandidates, rtreego.Point{x, y})

	best := int32(-1)
	bestDist := 0.0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		idx := c.(*nodeRect).IDx
		dist := m.nodes[idx].Distance(query)
		if best == -1 || dist < bestDist || (dist == bestDist && idx < best) {
			best = idx
			bestDist = dist
		}
	}
	return m.nodes[best]
}

// FindNeighbors node-node yang bersebelahan di road yang sama. Dihitung sekali per node.
func (m *RouteModel) FindNeighbors(nodeIDx int32) []int32 {
	m.neighborsOnce[nodeIDx].Do(func() {
		seen := make(map[int32]struct{})
		neighbors := make([]int32, 0)
		add := func(idx int32) {
			if idx == nodeIDx {
				return
			}
			if _, ok := seen[idx]; ok {
				return
			}
			seen[idx] = struct{}{}
			neighbors = append(neighbors, idx)
		}

		for _, roadIdx := range m.nodeToRoad[nodeIDx] {
			wayNodes := m.roads[roadIdx].NodeIdxs
			for i, idx := range wayNodes {
				if idx != nodeIDx {
					continue
				}
				if i > 0 {
					add(wayNodes[i-1])
				}
				if i < len(wayNodes)-1 {
					add(wayNodes[i+1])
				}
			}
		}
		sort.Slice(neighbors, func(i, j int) bool {
			return neighbors[i] < neighbors[j]
		})
		m.neighbors[nodeIDx] = neighbors
	})
	return m.neighbors[nodeIDx]
}

func (m *RouteModel) Node(nodeIDx int32) datastructure.Node {
	return m.nodes[nodeIDx]
}

func (m *RouteModel) Distance(from, to int32) float64 {
	return m.nodes[from].Distance(m.nodes[to])
}

// MetricScale faktor pengali dari unit map yang dinormalisasi ke meter.
func (m *RouteModel) MetricScale() float64 {
	return m.metricScale
}

func (m *RouteModel) SetPath(path []datastructure.PathNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = path
}

// Path hasil A* terakhir yang berhasil. nil kalau belum pernah ada path.
func (m *RouteModel) Path() []datastructure.PathNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

func (m *RouteModel) NumNodes() int {
	return len(m.nodes)
}

func (m *RouteModel) NumRoads() int {
	return len(m.roads)
}
