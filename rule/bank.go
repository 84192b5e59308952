package rule

import (
	"maps"
	"slices"
)

// Bank is the immutable catalog of rules keyed by task group and task id.
// It is safe for concurrent reads since nothing writes after NewBank.
type Bank struct {
	groups map[string]map[int][]Rule
}

// TaskInfo describes a task in the catalog
type TaskInfo struct {
	Group string `json:"group"`
	ID    int    `json:"id"`
	Rules int    `json:"rules"`
}

// NewBank creates a bank with a deep copy of the given rules
func NewBank(groups map[string]map[int][]Rule) *Bank {
	b := &Bank{groups: make(map[string]map[int][]Rule, len(groups))}
	for g, tasks := range groups {
		m := make(map[int][]Rule, len(tasks))
		for id, rules := range tasks {
			m[id] = slices.Clone(rules)
		}
		b.groups[g] = m
	}
	return b
}

// Lookup returns the rules of a task in authoring order.
// Unknown group or id returns an empty slice.
func (b *Bank) Lookup(group string, id int) []Rule {
	if b == nil {
		return nil
	}
	return slices.Clone(b.groups[group][id])
}

// Groups returns the sorted task group names
func (b *Bank) Groups() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.groups))
}

// Tasks returns the tasks of a group sorted by id
func (b *Bank) Tasks(group string) []TaskInfo {
	if b == nil {
		return nil
	}
	tasks := b.groups[group]
	rt := make([]TaskInfo, 0, len(tasks))
	for _, id := range slices.Sorted(maps.Keys(tasks)) {
		rt = append(rt, TaskInfo{Group: group, ID: id, Rules: len(tasks[id])})
	}
	return rt
}

// All returns every task of every group, ordered by group then id
func (b *Bank) All() []TaskInfo {
	var rt []TaskInfo
	for _, g := range b.Groups() {
		rt = append(rt, b.Tasks(g)...)
	}
	return rt
}
