package world

import "fmt"

// Issue is a tolerated defect in a loaded world. The engine treats each one
// as absence: the affected branch yields nothing further.
type Issue struct {
	Region string `json:"region,omitempty"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (i Issue) String() string {
	if i.Region == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", i.Kind, i.Region, i.Detail)
}

// Issue kinds reported by Lint.
const (
	IssueDanglingLink       = "dangling-link"
	IssueDanglingConnection = "dangling-connection"
	IssueLocalConnection    = "local-connection"
	IssueUndeclaredObstacle = "undeclared-obstacle"
	IssueOpaqueRequirement  = "opaque-requirement"
	IssueUnknownNodeType    = "unknown-node-type"
	IssueHardLock           = "hard-lock"
)

// Lint walks the raw definitions and reports every reference New had to drop,
// every requirement object it could not interpret, and every hard lock.
func Lint(w *World) []Issue {
	var issues []Issue

	for ri := range w.Regions {
		r := &w.Regions[ri]
		add := func(kind, format string, args ...any) {
			issues = append(issues, Issue{Region: r.Name, Kind: kind, Detail: fmt.Sprintf(format, args...)})
		}
		checkReq := func(where string, req *Requirement) {
			if req == nil {
				return
			}
			req.Walk(func(c Requirement) {
				if c.Kind == KindOpaque {
					add(IssueOpaqueRequirement, "%s: unrecognised key %q", where, c.Name)
				}
			})
		}
		checkStrats := func(where string, strats []Strat) {
			for _, s := range strats {
				sw := fmt.Sprintf("%s strat %q", where, s.Name)
				checkReq(sw, &s.Requires)
				for _, o := range s.Obstacles {
					if _, ok := w.Obstacle(ri, o.ID); !ok {
						add(IssueUndeclaredObstacle, "%s references obstacle %q", sw, o.ID)
					}
					checkReq(sw+" obstacle "+o.ID, o.Requires)
					checkReq(sw+" obstacle "+o.ID+" bypass", o.Bypass)
				}
			}
		}

		for _, n := range r.Nodes {
			where := fmt.Sprintf("node %d (%s)", n.ID, n.Name)
			switch n.Type {
			case "", NodeDoor, NodeEntrance, NodeExit, NodeEvent, NodeItem, NodeJunction:
			default:
				add(IssueUnknownNodeType, "%s has type %q", where, n.Type)
			}
			checkReq(where+" interaction", &n.InteractionRequires)
			for _, l := range n.Locks {
				if l.Lock != nil {
					add(IssueHardLock, "%s lock %q can never be opened", where, l.Name)
					checkReq(where+" lock", l.Lock)
				}
				checkStrats(where+" unlock", l.UnlockStrats)
				checkStrats(where+" bypass", l.BypassStrats)
			}
		}

		for _, l := range r.Links {
			if _, ok := w.NodeRefByID(r.ID, l.From); !ok {
				add(IssueDanglingLink, "link source node %d does not exist", l.From)
				continue
			}
			for _, to := range l.To {
				if _, ok := w.NodeRefByID(r.ID, to.ID); !ok {
					add(IssueDanglingLink, "link %d -> %d targets a missing node", l.From, to.ID)
					continue
				}
				checkStrats(fmt.Sprintf("link %d -> %d", l.From, to.ID), to.Strats)
			}
		}
	}

	for ci, c := range w.Connections {
		resolved := 0
		for _, cn := range c.Nodes {
			if _, ok := w.NodeRefByID(cn.RoomID, cn.NodeID); !ok {
				issues = append(issues, Issue{
					Kind:   IssueDanglingConnection,
					Detail: fmt.Sprintf("connection %d endpoint room %d node %d does not exist", ci, cn.RoomID, cn.NodeID),
				})
				continue
			}
			resolved++
		}
		if resolved == 2 && c.Nodes[0].RoomID == c.Nodes[1].RoomID {
			issues = append(issues, Issue{
				Kind:   IssueLocalConnection,
				Detail: fmt.Sprintf("connection %d joins two nodes of room %d", ci, c.Nodes[0].RoomID),
			})
		}
	}

	for _, group := range []struct {
		label   string
		helpers []Helper
	}{{"helper", w.Helpers}, {"tech", w.Techs}} {
		for _, h := range group.helpers {
			req := h.Requires
			if req == nil {
				continue
			}
			req.Walk(func(c Requirement) {
				if c.Kind == KindOpaque {
					issues = append(issues, Issue{
						Kind:   IssueOpaqueRequirement,
						Detail: fmt.Sprintf("%s %q: unrecognised key %q", group.label, h.Name, c.Name),
					})
				}
			})
		}
	}

	return issues
}
