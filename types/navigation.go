package types

// NavigationStatus is the lifecycle state of a navigation session as the
// viewer understands it.
type NavigationStatus string

const (
	NavigationStart      NavigationStatus = "start"
	NavigationStop       NavigationStatus = "stop"
	NavigationUpdate     NavigationStatus = "update"
	NavigationOutOfRoute NavigationStatus = "outOfRoute"
)

// NavigationUpdateType qualifies an update within an active session.
type NavigationUpdateType string

const (
	NavigationTypeProgress           NavigationUpdateType = "PROGRESS"
	NavigationTypeOutOfRoute         NavigationUpdateType = "OUT_OF_ROUTE"
	NavigationTypeDestinationReached NavigationUpdateType = "DESTINATION_REACHED"
	NavigationTypeCancelled          NavigationUpdateType = "CANCELLED"
)

// NavigationRequest configures navigation updates. Zero thresholds are
// replaced with the session defaults before reaching the engine.
type NavigationRequest struct {
	DistanceToGoalThreshold         float64 `json:"distanceToGoalThreshold,omitempty"`
	OutsideRouteThreshold           float64 `json:"outsideRouteThreshold,omitempty"`
	DistanceToChangeFloorThreshold  float64 `json:"distanceToChangeFloorThreshold,omitempty"`
	DistanceToIgnoreFirstIndication float64 `json:"distanceToIgnoreFirstIndication,omitempty"`
	TimeToFirstIndication           float64 `json:"timeToFirstIndication,omitempty"`
	RoundIndicationsStep            float64 `json:"roundIndicationsStep,omitempty"`
}

// NavigationProgress is a progress report emitted by the engine while a
// session is active.
type NavigationProgress struct {
	CurrentIndication *Indication    `json:"currentIndication,omitempty"`
	NextIndication    *Indication    `json:"nextIndication,omitempty"`
	RouteStep         *RouteStep     `json:"routeStep,omitempty"`
	DistanceToGoal    float64        `json:"distanceToGoal"`
	TimeToGoal        float64        `json:"timeToGoal,omitempty"`
	Points            []Point        `json:"points,omitempty"`
	Segments          []RouteSegment `json:"segments,omitempty"`
	CurrentLocation   *Location      `json:"currentLocation,omitempty"`
}

// Navigation is the store-side view of a navigation session: its status, the
// most recent update and the route being followed. At most one session exists
// at a time.
type Navigation struct {
	Status            NavigationStatus     `json:"status"`
	Type              NavigationUpdateType `json:"type,omitempty"`
	Route             *Route               `json:"route,omitempty"`
	CurrentIndication *Indication          `json:"currentIndication,omitempty"`
	RouteStep         *RouteStep           `json:"routeStep,omitempty"`
	DistanceToGoal    float64              `json:"distanceToGoal,omitempty"`
	Points            []Point              `json:"points,omitempty"`
	Segments          []RouteSegment       `json:"segments,omitempty"`
}

// Active reports whether a session exists and has not been stopped.
func (n *Navigation) Active() bool {
	return n != nil && n.Status != NavigationStop
}
