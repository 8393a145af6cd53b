package types

// AccessibilityMode selects how floor changes are chosen when computing a
// route.
type AccessibilityMode string

const (
	// AccessibilityChooseShortest picks the best route regardless of
	// accessibility. This is the default.
	AccessibilityChooseShortest AccessibilityMode = "CHOOSE_SHORTEST"
	// AccessibilityOnlyAccessible always uses accessible nodes.
	AccessibilityOnlyAccessible AccessibilityMode = "ONLY_ACCESSIBLE"
	// AccessibilityNotAccessibleFloorChanges never uses accessible floor
	// changes (forces routes away from lifts).
	AccessibilityNotAccessibleFloorChanges AccessibilityMode = "ONLY_NOT_ACCESSIBLE_FLOOR_CHANGES"
)

// DirectionsOptions tune a directions computation.
type DirectionsOptions struct {
	MinimizeFloorChanges bool              `json:"minimizeFloorChanges,omitempty"`
	AccessibilityMode    AccessibilityMode `json:"accessibilityMode,omitempty"`
	BearingFrom          *Bearing          `json:"bearingFrom,omitempty"`
	IncludedTags         []string          `json:"includedTags,omitempty"`
	ExcludedTags         []string          `json:"excludedTags,omitempty"`
}

// DirectionsRequest describes a route to compute: a building, an origin and a
// destination, plus options. Origin and destination identifiers carry the
// viewer's POI references ("-1" means the current user location).
type DirectionsRequest struct {
	BuildingIdentifier    string            `json:"buildingIdentifier"`
	From                  *Point            `json:"from"`
	To                    *Point            `json:"to"`
	OriginIdentifier      string            `json:"originIdentifier,omitempty"`
	DestinationIdentifier string            `json:"destinationIdentifier,omitempty"`
	Options               DirectionsOptions `json:"directionsOptions,omitempty"`
}

// Indication is a single instruction of a route.
type Indication struct {
	StepIdxDestination  int     `json:"stepIdxDestination"`
	StepIdxOrigin       int     `json:"stepIdxOrigin"`
	Action              string  `json:"indicationType"`
	Orientation         float64 `json:"orientation"`
	OrientationType     string  `json:"orientationType"`
	Distance            float64 `json:"distance"`
	DistanceToNextLevel int     `json:"distanceToNextLevel"`
	NeededLevelChange   bool    `json:"neededLevelChange"`
	HumanReadable       string  `json:"humanReadableMessage,omitempty"`
}

// RouteStep is one leg of a computed route.
type RouteStep struct {
	ID       int     `json:"id"`
	From     Point   `json:"from"`
	To       Point   `json:"to"`
	Distance float64 `json:"distance"`
	IsFirst  bool    `json:"isFirst"`
	IsLast   bool    `json:"isLast"`
}

// RouteSegment groups consecutive points of a route on a single floor.
type RouteSegment struct {
	FloorIdentifier string  `json:"floorIdentifier"`
	Points          []Point `json:"points"`
}

// Route is a computed route. After the session layer merges request metadata,
// OriginIdentifier, DestinationIdentifier and Type are populated; Error is set
// instead of the geometry when the computation failed, so the store always
// holds something consumers can render or report.
type Route struct {
	From                  *Point            `json:"from,omitempty"`
	To                    *Point            `json:"to,omitempty"`
	Points                []Point           `json:"points,omitempty"`
	Steps                 []RouteStep       `json:"edges,omitempty"`
	Segments              []RouteSegment    `json:"segments,omitempty"`
	Indications           []Indication      `json:"indications,omitempty"`
	Distance              float64           `json:"distance,omitempty"`
	TimeEstimate          float64           `json:"time,omitempty"`
	OriginIdentifier      string            `json:"originIdentifier,omitempty"`
	DestinationIdentifier string            `json:"destinationIdentifier,omitempty"`
	Type                  AccessibilityMode `json:"type,omitempty"`
	Error                 string            `json:"error,omitempty"`
}

// Failed reports whether the route is an error-shaped result.
func (r *Route) Failed() bool {
	return r != nil && r.Error != ""
}
