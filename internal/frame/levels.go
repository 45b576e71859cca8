package frame

import "math"

// LevelReader：按 (单元, 层界面) 读取高度，例如 zgrid
type LevelReader interface {
	Level(cellID, level int) float64
}

// 文档注释：层中点高度
// 背景：层 k 位于界面 k 与 k+1 之间，取两界面高度的中点作为该层代表高度。
func LayerMidpoint(r LevelReader, cellID, layer int) float64 {
	h1 := r.Level(cellID, layer)
	h2 := r.Level(cellID, layer+1)
	return (h2-h1)/2 + h1
}

// TimedLevelReader：随时间变化的界面深度，例如土壤层 zs
type TimedLevelReader interface {
	Level(timestep, cellID, level int) float64
}

// DepthMidpoint：深度先取整到米再求中点
func DepthMidpoint(r TimedLevelReader, timestep, cellID, layer int) float64 {
	h1 := math.Round(r.Level(timestep, cellID, layer))
	h2 := math.Round(r.Level(timestep, cellID, layer+1))
	return (h2-h1)/2 + h1
}
