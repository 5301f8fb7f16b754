// Package models defines the domain types for archview diagrams.
package models

import "time"

// NodeType classifies an architecture component.
type NodeType string

// Node types.
const (
	NodeService  NodeType = "service"
	NodeDatabase NodeType = "database"
	NodeExternal NodeType = "external"
	NodeFrontend NodeType = "frontend"
	NodeGateway  NodeType = "gateway"
	NodeWorker   NodeType = "worker"
)

// NodeTypes lists every node type in a stable order.
var NodeTypes = []NodeType{NodeService, NodeDatabase, NodeExternal, NodeFrontend, NodeGateway, NodeWorker}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	for _, k := range NodeTypes {
		if k == t {
			return true
		}
	}
	return false
}

// EdgeType is the call style of a relationship.
type EdgeType string

// Edge types.
const (
	EdgeSync  EdgeType = "sync"
	EdgeAsync EdgeType = "async"
)

// Valid reports whether t is a known edge type.
func (t EdgeType) Valid() bool {
	return t == EdgeSync || t == EdgeAsync
}

// Health is the last reported state of a component.
type Health string

// Health states.
const (
	HealthHealthy  Health = "healthy"
	HealthWarning  Health = "warning"
	HealthCritical Health = "critical"
)

// Valid reports whether h is a known health state.
func (h Health) Valid() bool {
	return h == HealthHealthy || h == HealthWarning || h == HealthCritical
}

// Position is a canvas coordinate in diagram space.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by k.
func (p Position) Scale(k float64) Position {
	return Position{X: p.X * k, Y: p.Y * k}
}

// Metadata is the read-only inspector payload of a node.
type Metadata struct {
	Language        string   `json:"language,omitempty" yaml:"language,omitempty"`
	Framework       string   `json:"framework,omitempty" yaml:"framework,omitempty"`
	Maintainer      string   `json:"maintainer,omitempty" yaml:"maintainer,omitempty"`
	UptimePercent   *float64 `json:"uptime_percent,omitempty" yaml:"uptime_percent,omitempty"`
	Health          Health   `json:"health" yaml:"health"`
	InternalModules []string `json:"internal_modules,omitempty" yaml:"internal_modules,omitempty"`
}

// Node is a positioned, typed component in the diagram.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Edge is a directed relationship between two nodes.
type Edge struct {
	ID     string   `json:"id" yaml:"id"`
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Type   EdgeType `json:"type" yaml:"type"`
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Snapshot is the graph shape supplied by a data source.
type Snapshot struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// DiagramMetadata is a lightweight listing entry for a stored diagram.
type DiagramMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
