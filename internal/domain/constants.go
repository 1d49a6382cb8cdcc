package domain

// Стоимость действий в тиках (Time Units)
const (
	TimeCostMove = 1
	TimeCostWait = 1
	// Медленные существа ходят раз в несколько тиков.
	TimeCostSlowMove = 2
)

// Параметры восприятия
const (
	VisionRadius = 8
)

// Стоимость рёбер сетки при поиске пути: диагональ ≈ 10·√2.
const (
	StepCostCardinal = 10
	StepCostDiagonal = 14
)
