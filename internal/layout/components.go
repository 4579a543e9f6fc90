package layout

import "github.com/atlasocr/wasl/internal/utils"

// component is one connected blob of dilated foreground.
type component struct {
	area int // foreground pixel count
	box  utils.Box
}

// findComponents labels 4-connected foreground pixels and returns each
// component's pixel count and bounding box, in scan order of the seeds.
func findComponents(mask []bool, w, h int) []component {
	visited := make([]bool, len(mask))
	var comps []component
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] && !visited[idx] {
				comps = append(comps, traceComponent(mask, visited, w, h, x, y))
			}
		}
	}
	return comps
}

// traceComponent runs a BFS flood fill from the seed pixel.
func traceComponent(mask, visited []bool, w, h, startX, startY int) component {
	minX, minY, maxX, maxY := startX, startY, startX, startY
	start := startY*w + startX
	visited[start] = true
	queue := []int{start}

	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		cx, cy := idx%w, idx/w
		if cx < minX {
			minX = cx
		}
		if cy < minY {
			minY = cy
		}
		if cx > maxX {
			maxX = cx
		}
		if cy > maxY {
			maxY = cy
		}
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if mask[ni] && !visited[ni] {
				visited[ni] = true
				queue = append(queue, ni)
			}
		}
	}
	return component{
		area: len(queue),
		box:  utils.NewBox(minX, minY, maxX-minX+1, maxY-minY+1),
	}
}
