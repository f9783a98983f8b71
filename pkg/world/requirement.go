package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// RequirementKind identifies which variant of the Requirement union is populated.
type RequirementKind int

const (
	KindNone RequirementKind = iota // absent or null; always satisfied
	KindRef                         // atomic ability or event name
	KindAnd
	KindOr
	KindNot
	KindEnemyKill
	KindCanShineCharge
	KindPredicate // resource/context predicate with no resource model behind it
	KindOpaque    // object with a key this package does not recognise
)

func (k RequirementKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRef:
		return "ref"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	case KindEnemyKill:
		return "enemyKill"
	case KindCanShineCharge:
		return "canShineCharge"
	case KindPredicate:
		return "predicate"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("RequirementKind(%d)", int(k))
	}
}

// Requirement is the boolean expression tree that gates node access, link
// traversal, lock unlocking and obstacle clearing. It is immutable once loaded.
type Requirement struct {
	Kind RequirementKind

	// Name is the referenced ability/event for KindRef and the object key for
	// KindCanShineCharge, KindPredicate and KindOpaque.
	Name string

	// Children holds the operands of And, Or and Not.
	Children []Requirement

	EnemyKill *EnemyKill

	// Payload is the undecoded value of predicate and opaque objects.
	Payload json.RawMessage
}

// EnemyKill requires the ability to kill every listed group of enemies.
type EnemyKill struct {
	Enemies         [][]string `json:"enemies"`
	ExplicitWeapons []string   `json:"explicitWeapons,omitempty"`
	ExcludedWeapons []string   `json:"excludedWeapons,omitempty"`
}

// Ref returns an atomic requirement on name.
func Ref(name string) Requirement { return Requirement{Kind: KindRef, Name: name} }

// And returns a conjunction of reqs.
func And(reqs ...Requirement) Requirement { return Requirement{Kind: KindAnd, Children: reqs} }

// Or returns a disjunction of reqs.
func Or(reqs ...Requirement) Requirement { return Requirement{Kind: KindOr, Children: reqs} }

// Not returns a requirement satisfied when none of reqs are.
func Not(reqs ...Requirement) Requirement { return Requirement{Kind: KindNot, Children: reqs} }

// IsNone reports whether r places no constraint at all.
func (r Requirement) IsNone() bool { return r.Kind == KindNone }

// predicateKeys are the resource and context predicates. They carry a payload
// but are evaluated as satisfied since no energy or ammo model is tracked.
var predicateKeys = []string{
	"canComeInCharged",
	"adjacentRunway",
	"canVisitNode",
	"heatFrames",
	"acidFrames",
	"lavaFrames",
	"lavaPhysicsFrames",
	"spikeHits",
	"thornHits",
	"hibashiHits",
	"draygonElectricityFrames",
	"energyAtMost",
	"ammoDrain",
	"ammo",
	"resetRoom",
	"previousNode",
	"previousStratProperty",
}

// UnmarshalJSON decodes the untagged wire form. Shapes are tried in a fixed
// priority: keyed object, then array (implicit and), then string (reference),
// then null (none). Objects dispatch on the first recognised key in the order
// or, and, not, enemyKill, canShineCharge, then predicateKeys.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Requirement{}
		return nil
	}

	switch data[0] {
	case '{':
		return r.unmarshalObject(data)
	case '[':
		var children []Requirement
		if err := json.Unmarshal(data, &children); err != nil {
			return fmt.Errorf("requirement list: %w", err)
		}
		*r = Requirement{Kind: KindAnd, Children: children}
		return nil
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("requirement reference: %w", err)
		}
		*r = Ref(name)
		return nil
	default:
		return fmt.Errorf("unsupported requirement shape: %s", truncate(data, 40))
	}
}

func (r *Requirement) unmarshalObject(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("requirement object: %w", err)
	}

	for _, op := range []struct {
		key  string
		kind RequirementKind
	}{{"or", KindOr}, {"and", KindAnd}, {"not", KindNot}} {
		raw, ok := fields[op.key]
		if !ok {
			continue
		}
		children, err := decodeOperands(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", op.key, err)
		}
		*r = Requirement{Kind: op.kind, Children: children}
		return nil
	}

	if raw, ok := fields["enemyKill"]; ok {
		var kill EnemyKill
		if err := json.Unmarshal(raw, &kill); err != nil {
			return fmt.Errorf("enemyKill: %w", err)
		}
		*r = Requirement{Kind: KindEnemyKill, Name: "enemyKill", EnemyKill: &kill, Payload: raw}
		return nil
	}

	if raw, ok := fields["canShineCharge"]; ok {
		*r = Requirement{Kind: KindCanShineCharge, Name: "canShineCharge", Payload: raw}
		return nil
	}

	for _, key := range predicateKeys {
		if raw, ok := fields[key]; ok {
			*r = Requirement{Kind: KindPredicate, Name: key, Payload: raw}
			return nil
		}
	}

	if len(fields) == 0 {
		return fmt.Errorf("empty requirement object")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	*r = Requirement{Kind: KindOpaque, Name: keys[0], Payload: fields[keys[0]]}
	return nil
}

// decodeOperands accepts either a list of requirements or a single one.
func decodeOperands(raw json.RawMessage) ([]Requirement, error) {
	var single Requirement
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		return single.Children, nil
	}
	return []Requirement{single}, nil
}

// Walk calls fn for r and every nested requirement, depth first.
func (r Requirement) Walk(fn func(Requirement)) {
	fn(r)
	for _, c := range r.Children {
		c.Walk(fn)
	}
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
