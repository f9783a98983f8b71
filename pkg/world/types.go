package world

// NodeType classifies what a node represents inside its region.
type NodeType string

const (
	NodeDoor     NodeType = "door"
	NodeEntrance NodeType = "entrance"
	NodeExit     NodeType = "exit"
	NodeEvent    NodeType = "event"
	NodeItem     NodeType = "item"
	NodeJunction NodeType = "junction"
)

// Region is a room: a graph partition holding nodes, intra-region links and
// the obstacles its strats may clear.
type Region struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Area      string     `json:"area,omitempty"`
	Subarea   string     `json:"subarea,omitempty"`
	Nodes     []Node     `json:"nodes"`
	Links     []Link     `json:"links"`
	Obstacles []Obstacle `json:"obstacles,omitempty"`
}

// Node is a point of interest within a region.
type Node struct {
	ID                  int         `json:"id"`
	Name                string      `json:"name"`
	Type                NodeType    `json:"nodeType,omitempty"`
	SubType             string      `json:"nodeSubType,omitempty"`
	Item                string      `json:"nodeItem,omitempty"` // vanilla item at an item node
	InteractionRequires Requirement `json:"interactionRequires"`
	Locks               []Lock      `json:"locks,omitempty"`
	Yields              []string    `json:"yields,omitempty"`
}

// IsDoorway reports whether the node can lead out of its region through a Connection.
func (n *Node) IsDoorway() bool {
	return n.Type == NodeDoor || n.Type == NodeExit
}

// Lock gates a node's effects. A non-nil Lock requirement is a hard gate that
// can never be opened.
type Lock struct {
	Name         string       `json:"name,omitempty"`
	LockType     string       `json:"lockType,omitempty"`
	Lock         *Requirement `json:"lock,omitempty"`
	UnlockStrats []Strat      `json:"unlockStrats,omitempty"`
	BypassStrats []Strat      `json:"bypassStrats,omitempty"`
}

// Link lists the destinations reachable from one node of a region.
type Link struct {
	From int      `json:"from"`
	To   []LinkTo `json:"to"`
}

// LinkTo is one destination of a Link; any one of its strats suffices.
type LinkTo struct {
	ID     int     `json:"id"`
	Strats []Strat `json:"strats,omitempty"`
}

// Strat is one named way to traverse an edge or open a lock.
type Strat struct {
	Name      string      `json:"name"`
	Notable   bool        `json:"notable,omitempty"`
	Requires  Requirement `json:"requires"`
	Obstacles []Obstacle  `json:"obstacles,omitempty"`
}

// Obstacle is a region-scoped gate. Declared on a Region it names the obstacle;
// referenced from a Strat it carries the requirement to clear or bypass it.
type Obstacle struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	ObstacleType string       `json:"obstacleType,omitempty"`
	Requires     *Requirement `json:"requires,omitempty"`
	Bypass       *Requirement `json:"bypass,omitempty"`
}

// Connection joins two door or exit nodes in different regions.
type Connection struct {
	ConnectionType string           `json:"connectionType,omitempty"`
	Description    string           `json:"description,omitempty"`
	Nodes          []ConnectionNode `json:"nodes"`
}

// ConnectionNode is one endpoint of a Connection.
type ConnectionNode struct {
	Area     string `json:"area,omitempty"`
	Subarea  string `json:"subarea,omitempty"`
	RoomID   int    `json:"roomid"`
	RoomName string `json:"roomName,omitempty"`
	NodeID   int    `json:"nodeid"`
	NodeName string `json:"nodeName,omitempty"`
	Position string `json:"position,omitempty"`
}

// Helper is a named boolean macro over abilities. Techs share the same shape.
// A helper with no requirement is always true.
type Helper struct {
	Name     string       `json:"name"`
	Requires *Requirement `json:"requires,omitempty"`
	Note     any          `json:"note,omitempty"`
}

// Weapon describes something that can damage enemies.
type Weapon struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Situational bool        `json:"situational"`
	UseRequires Requirement `json:"useRequires"`
	Categories  []string    `json:"categories"`
}

// Enemy lists the weapon names and damage categories that cannot hurt it.
type Enemy struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Invul []string `json:"invul,omitempty"`
}

// Location identifies an item node by display name and ids.
type Location struct {
	Name     string `json:"name"`
	RegionID int    `json:"region_id"`
	NodeID   int    `json:"node_id"`
}
