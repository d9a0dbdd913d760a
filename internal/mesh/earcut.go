package mesh

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/irfansharif/armsim/internal/geom"
)

// triangulate splits a polygon, optionally with holes, into triangles using
// the earcut algorithm. Vertices may be in either winding order.
func triangulate(outer []geom.Point, holes ...[]geom.Point) ([][3]geom.Point, error) {
	if len(outer) < 3 {
		return nil, fmt.Errorf("degenerate polygon (%d vertices < 3)", len(outer))
	}

	// Flatten into the [x0, y0, x1, y1, ...] layout earcut wants, holes
	// appended after the outer ring and indexed by their first vertex.
	total := len(outer)
	for _, h := range holes {
		total += len(h)
	}
	vertexCoords := make([]float64, 0, total*2)
	for _, p := range outer {
		vertexCoords = append(vertexCoords, p.X, p.Y)
	}
	var holeIndices []int
	for _, h := range holes {
		if len(h) < 3 {
			return nil, fmt.Errorf("degenerate hole (%d vertices < 3)", len(h))
		}
		holeIndices = append(holeIndices, len(vertexCoords)/2)
		for _, p := range h {
			vertexCoords = append(vertexCoords, p.X, p.Y)
		}
	}

	triangleIndices, err := earcut.Earcut(vertexCoords, holeIndices, 2 /* dim */)
	if err != nil {
		return nil, fmt.Errorf("triangulation failed for %d-vertex polygon: %w", total, err)
	}
	if len(triangleIndices)%3 != 0 {
		return nil, fmt.Errorf("invalid triangle count (indices: %d, not divisible by 3)", len(triangleIndices))
	}

	vertex := func(i int) geom.Point {
		return geom.Point{X: vertexCoords[i*2], Y: vertexCoords[i*2+1]}
	}
	triangles := make([][3]geom.Point, len(triangleIndices)/3)
	for t := range triangles {
		base := t * 3
		triangles[t] = [3]geom.Point{
			vertex(triangleIndices[base]),
			vertex(triangleIndices[base+1]),
			vertex(triangleIndices[base+2]),
		}
	}
	return triangles, nil
}
