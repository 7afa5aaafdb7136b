// Package models defines the core domain models for the workflow engine bridge.
package models

// Workflow is an immutable snapshot of a node-graph workflow definition
// hosted by the external automation engine. It is fetched per operation and
// never cached across requests.
type Workflow struct {
	ID     string  `json:"id"     validate:"required"`
	Name   string  `json:"name"   validate:"required"`
	Active bool    `json:"active"`
	Nodes  []*Node `json:"nodes"`
}

// Node is one step in a workflow graph. The engine defines the type string;
// Parameters is an untyped bag whose shape varies by node vendor and version.
type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	WebhookID  string         `json:"webhookId,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// IsTriggerCandidate reports whether the node can start a workflow run.
// A node is a trigger candidate iff it carries a webhook identifier.
func (n *Node) IsTriggerCandidate() bool {
	return n.WebhookID != ""
}

// HTTPMethod returns the node's configured HTTP method, defaulting to POST.
func (n *Node) HTTPMethod() string {
	if method, ok := n.Parameters["httpMethod"].(string); ok && method != "" {
		return method
	}

	return "POST"
}

// PathParameter returns the node's explicit webhook path, if configured.
func (n *Node) PathParameter() string {
	if path, ok := n.Parameters["path"].(string); ok {
		return path
	}

	return ""
}

// TriggerCandidates returns the nodes able to start this workflow, in
// definition order.
func (w *Workflow) TriggerCandidates() []*Node {
	var candidates []*Node

	for _, node := range w.Nodes {
		if node.IsTriggerCandidate() {
			candidates = append(candidates, node)
		}
	}

	return candidates
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
