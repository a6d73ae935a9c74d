package grammar

import (
	"fmt"
	"strings"
)

// Conflict is an LR(1) conflict. Conflicts are never resolved; a grammar with conflicts is rejected.
type Conflict interface {
	error
	conflict()
	detail() string
}

type ShiftReduceConflict struct {
	State       StateNum
	Token       Token
	ShiftTarget StateNum
	Reduce      ReductendPosition

	shiftItems []string
	reduceItem string
}

func (c *ShiftReduceConflict) conflict() {
}

func (c *ShiftReduceConflict) Error() string {
	return fmt.Sprintf("shift/reduce conflict on %v in state %v", c.Token, c.State)
}

func (c *ShiftReduceConflict) detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "shift to state %v:", c.ShiftTarget)
	for _, item := range c.shiftItems {
		fmt.Fprintf(&b, "\n    %v", item)
	}
	fmt.Fprintf(&b, "\nreduce:\n    %v", c.reduceItem)
	return b.String()
}

type ReduceReduceConflict struct {
	State StateNum
	Token Token
	A     ReductendPosition
	B     ReductendPosition

	items [2]string
}

func (c *ReduceReduceConflict) conflict() {
}

func (c *ReduceReduceConflict) Error() string {
	return fmt.Sprintf("reduce/reduce conflict on %v in state %v", c.Token, c.State)
}

func (c *ReduceReduceConflict) detail() string {
	return fmt.Sprintf("reduce:\n    %v\nreduce:\n    %v", c.items[0], c.items[1])
}

var (
	_ Conflict = &ShiftReduceConflict{}
	_ Conflict = &ReduceReduceConflict{}
)
