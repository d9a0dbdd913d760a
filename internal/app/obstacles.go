package app

import (
	"math"
	"sort"

	"github.com/irfansharif/armsim/internal/collision"
	"github.com/irfansharif/armsim/internal/geom"
)

// ObstacleID uniquely identifies an obstacle within a session.
type ObstacleID int

// ObstacleManager manages the obstacles placed in the workspace.
type ObstacleManager struct {
	obstacles map[ObstacleID]collision.Rect
	currentID ObstacleID // selected obstacle, -1 for none
	nextID    ObstacleID
}

// NewObstacleManager creates a manager holding the given obstacles, with IDs
// assigned in order.
func NewObstacleManager(rects ...collision.Rect) *ObstacleManager {
	om := &ObstacleManager{
		obstacles: make(map[ObstacleID]collision.Rect),
		currentID: -1,
	}
	for _, r := range rects {
		om.Add(r)
	}
	return om
}

// Add adds a new obstacle and returns its ID.
func (om *ObstacleManager) Add(r collision.Rect) ObstacleID {
	id := om.nextID
	om.obstacles[id] = r
	om.nextID++
	return id
}

// Remove removes an obstacle by ID.
func (om *ObstacleManager) Remove(id ObstacleID) bool {
	if _, ok := om.obstacles[id]; ok {
		delete(om.obstacles, id)
		return true
	}
	return false
}

// Len returns the number of obstacles.
func (om *ObstacleManager) Len() int { return len(om.obstacles) }

// IDs returns all obstacle IDs in ascending order.
func (om *ObstacleManager) IDs() []ObstacleID {
	ids := make([]ObstacleID, 0, len(om.obstacles))
	for id := range om.obstacles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rects returns all obstacles sorted by ID (ascending), alongside their IDs.
func (om *ObstacleManager) Rects() ([]ObstacleID, []collision.Rect) {
	ids := om.IDs()
	rects := make([]collision.Rect, len(ids))
	for i, id := range ids {
		rects[i] = om.obstacles[id]
	}
	return ids, rects
}

// Get returns the obstacle with the given ID.
func (om *ObstacleManager) Get(id ObstacleID) (collision.Rect, bool) {
	r, ok := om.obstacles[id]
	return r, ok
}

// FindClosest returns all obstacle IDs sorted by the distance from p to each
// obstacle's center (closest first). Ties go to the highest ID, i.e. the most
// recently placed obstacle.
func (om *ObstacleManager) FindClosest(p geom.Point) []ObstacleID {
	type sortKey struct {
		distance float64
		id       ObstacleID
	}

	keys := make([]sortKey, 0, len(om.obstacles))
	for id, r := range om.obstacles {
		keys = append(keys, sortKey{geom.Dist(r.Box.Center(), p), id})
	}

	sort.Slice(keys, func(i, j int) bool {
		if math.Abs(keys[i].distance-keys[j].distance) < 1e-4 {
			return keys[i].id > keys[j].id
		}
		return keys[i].distance < keys[j].distance
	})

	result := make([]ObstacleID, len(keys))
	for i, k := range keys {
		result[i] = k.id
	}
	return result
}

// SetCurrent selects an obstacle; -1 clears the selection.
func (om *ObstacleManager) SetCurrent(id ObstacleID) {
	om.currentID = id
}

// Current returns the selected obstacle, if any.
func (om *ObstacleManager) Current() (ObstacleID, bool) {
	if _, ok := om.obstacles[om.currentID]; !ok {
		return -1, false
	}
	return om.currentID, true
}

// Iter moves the selection to the next or previous obstacle by ID, wrapping
// around, and returns it.
func (om *ObstacleManager) Iter(next bool) (ObstacleID, bool) {
	if len(om.obstacles) == 0 {
		om.currentID = -1
		return -1, false
	}

	direction := 1
	if !next {
		direction = -1
	}
	ids := om.IDs()

	pos := -1
	for i, id := range ids {
		if id == om.currentID {
			pos = i
			break
		}
	}
	var newPos int
	switch {
	case pos >= 0:
		newPos = (pos + direction + len(ids)) % len(ids)
	case next:
		newPos = 0 // nothing selected (or it was removed): start from the ends
	default:
		newPos = len(ids) - 1
	}

	om.currentID = ids[newPos]
	return om.currentID, true
}
