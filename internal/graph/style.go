package graph

import "github.com/starford/archview/internal/models"

// Category is a filter toggle key. Every node type belongs to exactly one.
type Category string

// Filter categories.
const (
	CategoryServices  Category = "services"
	CategoryDatabases Category = "databases"
	CategoryExternal  Category = "external"
	CategoryFrontends Category = "frontends"
	CategoryGateways  Category = "gateways"
	CategoryUtils     Category = "utils"
)

// Categories lists every filter category in display order.
var Categories = []Category{
	CategoryGateways,
	CategoryFrontends,
	CategoryServices,
	CategoryDatabases,
	CategoryExternal,
	CategoryUtils,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// NodeStyle is the visual treatment of a node type.
type NodeStyle struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Icon     string   `json:"icon"`
}

// EdgeStyle is the visual treatment of an edge type.
type EdgeStyle struct {
	Stroke   string `json:"stroke"`
	Dashed   bool   `json:"dashed"`
	Animated bool   `json:"animated"`
}

var nodeStyles = map[models.NodeType]NodeStyle{
	models.NodeService:  {Category: CategoryServices, Color: "#3b82f6", Icon: "server"},
	models.NodeDatabase: {Category: CategoryDatabases, Color: "#10b981", Icon: "database"},
	models.NodeExternal: {Category: CategoryExternal, Color: "#a855f7", Icon: "globe"},
	models.NodeFrontend: {Category: CategoryFrontends, Color: "#f59e0b", Icon: "monitor"},
	models.NodeGateway:  {Category: CategoryGateways, Color: "#ef4444", Icon: "shield"},
	models.NodeWorker:   {Category: CategoryUtils, Color: "#64748b", Icon: "cpu"},
}

var edgeStyles = map[models.EdgeType]EdgeStyle{
	models.EdgeSync:  {Stroke: "#94a3b8"},
	models.EdgeAsync: {Stroke: "#c084fc", Dashed: true, Animated: true},
}

var healthColors = map[models.Health]string{
	models.HealthHealthy:  "#22c55e",
	models.HealthWarning:  "#eab308",
	models.HealthCritical: "#dc2626",
}

// StyleOf returns the style for a node type. Unknown types fall back to service.
func StyleOf(t models.NodeType) NodeStyle {
	if s, ok := nodeStyles[t]; ok {
		return s
	}
	return nodeStyles[models.NodeService]
}

// CategoryOf returns the filter category a node type belongs to.
func CategoryOf(t models.NodeType) Category {
	return StyleOf(t).Category
}

// EdgeStyleOf returns the stroke treatment for an edge type.
func EdgeStyleOf(t models.EdgeType) EdgeStyle {
	if s, ok := edgeStyles[t]; ok {
		return s
	}
	return edgeStyles[models.EdgeSync]
}

// HealthColor returns the badge color for a health state.
func HealthColor(h models.Health) string {
	if c, ok := healthColors[h]; ok {
		return c
	}
	return healthColors[models.HealthHealthy]
}
