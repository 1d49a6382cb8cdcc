package domain

// GoalKind is the closed set of things an AI can want.
type GoalKind uint8

const (
	GoalIdle GoalKind = iota
	GoalWander
	GoalMoveTo
	GoalFollow
	GoalExplore
)

// GoalState is the resolution state of a goal.
//
//	Pending -> Resolving -> Succeeded | Failed
//	Pending -> Expanded (work delegated to Subgoals)
type GoalState uint8

const (
	GoalPending GoalState = iota
	GoalResolving
	GoalSucceeded
	GoalFailed
	GoalExpanded
)

// Goal is a tagged union: only the fields used by Kind are meaningful.
type Goal struct {
	Kind  GoalKind  `json:"kind" msgpack:"k"`
	State GoalState `json:"state" msgpack:"s"`

	Target       Position `json:"target" msgpack:"t"`        // MoveTo
	TargetEntity EntityID `json:"targetEntity" msgpack:"-"` // Follow
	Heading      Position `json:"heading" msgpack:"h"`      // Explore

	Subgoals []Goal `json:"subgoals,omitempty" msgpack:"sub,omitempty"`
}

func IdleGoal() Goal { return Goal{Kind: GoalIdle} }
func WanderGoal() Goal { return Goal{Kind: GoalWander} }
func MoveToGoal(target Position) Goal { return Goal{Kind: GoalMoveTo, Target: target} }
func FollowGoal(target EntityID) Goal { return Goal{Kind: GoalFollow, TargetEntity: target} }
func ExploreGoal(heading Position) Goal { return Goal{Kind: GoalExplore, Heading: heading} }

// Done reports whether the goal reached a terminal state.
func (g *Goal) Done() bool {
	return g.State == GoalSucceeded || g.State == GoalFailed
}

// Expand replaces the goal's own work with subgoals.
func (g *Goal) Expand(sub ...Goal) {
	g.Subgoals = append(g.Subgoals[:0], sub...)
	g.State = GoalExpanded
}

// Current follows expanded goals down to the one that is actually being worked on.
func (g *Goal) Current() *Goal {
	cur := g
	for cur.State == GoalExpanded && len(cur.Subgoals) > 0 {
		cur = &cur.Subgoals[0]
	}
	return cur
}

// Settle propagates finished subgoals upward. A failed subgoal fails its parent;
// a parent whose subgoals all succeeded succeeds.
func (g *Goal) Settle() {
	if g.State != GoalExpanded {
		return
	}
	for len(g.Subgoals) > 0 {
		sub := &g.Subgoals[0]
		sub.Settle()
		switch sub.State {
		case GoalFailed:
			g.Subgoals = g.Subgoals[:0]
			g.State = GoalFailed
			return
		case GoalSucceeded:
			g.Subgoals = g.Subgoals[1:]
		default:
			return
		}
	}
	g.State = GoalSucceeded
}

func (k GoalKind) String() string {
	switch k {
	case GoalIdle:
		return "IDLE"
	case GoalWander:
		return "WANDER"
	case GoalMoveTo:
		return "MOVE_TO"
	case GoalFollow:
		return "FOLLOW"
	case GoalExplore:
		return "EXPLORE"
	}
	return "UNKNOWN"
}

func (s GoalState) String() string {
	switch s {
	case GoalPending:
		return "PENDING"
	case GoalResolving:
		return "RESOLVING"
	case GoalSucceeded:
		return "SUCCEEDED"
	case GoalFailed:
		return "FAILED"
	case GoalExpanded:
		return "EXPANDED"
	}
	return "UNKNOWN"
}
