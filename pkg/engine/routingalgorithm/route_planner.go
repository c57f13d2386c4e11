package routingalgorithm

import (
	"fmt"

	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/util"
)

type GraphModel interface {
	FindClosestNode(x, y float64) datastructure.Node
	FindNeighbors(nodeIDx int32) []int32
	Node(nodeIDx int32) datastructure.Node
	Distance(from, to int32) float64
	MetricScale() float64
	SetPath(path []datastructure.PathNode)
}

// searchState state A* per node, disimpan di planner bukan di graph supaya
// beberapa planner bisa jalan bareng di atas model yang sama.
type searchState struct {
	gValue float64
	hValue float64
	parent int32
}

// Route hasil A*. Found false kalau frontier habis sebelum sampai end node.
type Route struct {
	Path          []datastructure.PathNode `json:"path"`
	Distance      float64                  `json:"distance"` // meter
	Found         bool                     `json:"found"`
	ExpandedNodes int                      `json:"expanded_nodes"`
}

type PopObserver func(node datastructure.Node, f float64)

type Option func(*RoutePlanner)

// WithPopObserver dipanggil setiap node di-pop dari frontier.
func WithPopObserver(observer PopObserver) Option {
	return func(rp *RoutePlanner) {
		rp.onPop = observer
	}
}

type RoutePlanner struct {
	model     GraphModel
	startNode datastructure.Node
	endNode   datastructure.Node
	state     map[int32]*searchState
	openList  *MinHeap
	onPop     PopObserver
}

// NewRoutePlanner. start & end dalam skala 0-100 dari map extent.
func NewRoutePlanner(model GraphModel, startX, startY, endX, endY float64, opts ...Option) *RoutePlanner {
	rp := &RoutePlanner{
		model: model,
	}
	for _, opt := range opts {
		opt(rp)
	}

	rp.startNode = model.FindClosestNode(util.PercentToFraction(startX), util.PercentToFraction(startY))
	rp.endNode = model.FindClosestNode(util.PercentToFraction(endX), util.PercentToFraction(endY))
	return rp
}

func (rp *RoutePlanner) StartNode() datastructure.Node {
	return rp.startNode
}

func (rp *RoutePlanner) EndNode() datastructure.Node {
	return rp.endNode
}

// Heuristic straight-line distance dari node ke end node.
func (rp *RoutePlanner) Heuristic(nodeIDx int32) float64 {
	return rp.model.Distance(nodeIDx, rp.endNode.IDx)
}

// addNeighbors expand current node, semua neighbor yang belum pernah ditemukan masuk ke open list.
// Neighbor yang masih di open list di-update kalau ketemu g value yang lebih kecil.
func (rp *RoutePlanner) addNeighbors(current int32) {
	currState := rp.state[current]
	for _, neighbor := range rp.model.FindNeighbors(current) {
		gValue := currState.gValue + rp.model.Distance(current, neighbor)

		nState, visited := rp.state[neighbor]
		if !visited {
			nState = &searchState{
				gValue: gValue,
				hValue: rp.Heuristic(neighbor),
				parent: current,
			}
			rp.state[neighbor] = nState
			rp.openList.Insert(neighbor, nState.gValue+nState.hValue)
			continue
		}

		// node yang sudah di-expand tidak ada lagi di open list
		if !rp.openList.Contains(neighbor) || gValue >= nState.gValue {
			continue
		}
		nState.gValue = gValue
		nState.parent = current
		if err := rp.openList.DecreaseKey(neighbor, nState.gValue+nState.hValue); err != nil {
			panic(fmt.Sprintf("astar: decrease key of open node %d: %v", neighbor, err))
		}
	}
}

// nextNode pop node dengan f = g + h paling kecil.
func (rp *RoutePlanner) nextNode() int32 {
	next, err := rp.openList.ExtractMin()
	if err != nil {
		panic(fmt.Sprintf("astar: pop from empty open list: %v", err))
	}
	if rp.onPop != nil {
		rp.onPop(rp.model.Node(next.Item), next.Rank)
	}
	return next.Item
}

// constructFinalPath ikutin parent dari goal sampai start node.
func (rp *RoutePlanner) constructFinalPath(goal int32) ([]datastructure.PathNode, float64) {
	path := make([]datastructure.PathNode, 0)
	dist := 0.0

	curr := goal
	for curr != rp.startNode.IDx {
		path = append(path, datastructure.PathNode{Node: rp.model.Node(curr), DistFromGoal: dist})
		parent := rp.state[curr].parent
		dist += rp.model.Distance(curr, parent)
		curr = parent
	}
	path = append(path, datastructure.PathNode{Node: rp.model.Node(curr), DistFromGoal: dist})
	util.ReverseG(path)

	return path, dist * rp.model.MetricScale()
}

// AStarSearch cari shortest path dari start node ke end node. Kalau ketemu path juga disimpan ke model.
// Goal test membandingkan IDx node yang di-pop dengan end node, bukan jarak nol ke end node,
// jadi dua node berbeda di koordinat yang sama tidak dianggap goal.
func (rp *RoutePlanner) AStarSearch() Route {
	rp.state = make(map[int32]*searchState)
	rp.openList = NewMinHeap()

	start := rp.startNode.IDx
	rp.state[start] = &searchState{
		gValue: 0,
		hValue: rp.Heuristic(start),
		parent: -1,
	}
	rp.openList.Insert(start, rp.state[start].hValue)

	expanded := 0
	for rp.openList.Size() > 0 {
		current := rp.nextNode()
		expanded++

		if current == rp.endNode.IDx {
			path, dist := rp.constructFinalPath(current)
			rp.model.SetPath(path)
			return Route{
				Path:          path,
				Distance:      dist,
				Found:         true,
				ExpandedNodes: expanded,
			}
		}

		rp.addNeighbors(current)
	}

	return Route{ExpandedNodes: expanded}
}
