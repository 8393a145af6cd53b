package types

// Building is a venue known to the positioning platform.
type Building struct {
	BuildingIdentifier string            `json:"buildingIdentifier"`
	Name               string            `json:"name"`
	Address            string            `json:"address,omitempty"`
	Center             Coordinate        `json:"center"`
	Dimensions         Dimensions        `json:"dimensions"`
	Rotation           float64           `json:"rotation"`
	PictureURL         string            `json:"pictureUrl,omitempty"`
	CustomFields       map[string]string `json:"customFields,omitempty"`
}

// Dimensions is the building footprint in meters.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BuildingInfo bundles a building together with its full cartography.
type BuildingInfo struct {
	Building    Building  `json:"building"`
	Floors      []Floor   `json:"floors"`
	IndoorPois  []Poi     `json:"indoorPOIs"`
	OutdoorPois []Poi     `json:"outdoorPOIs"`
	Geofences   []Geofence `json:"geofences,omitempty"`
}

// Floor is a single level of a building.
type Floor struct {
	FloorIdentifier    string  `json:"floorIdentifier"`
	BuildingIdentifier string  `json:"buildingIdentifier"`
	Name               string  `json:"name"`
	Level              int     `json:"level"`
	Altitude           float64 `json:"altitude"`
	MapURL             string  `json:"mapUrl,omitempty"`
	Scale              float64 `json:"scale"`
}

// Point locates a spot inside (or outside) a building, used as a route
// origin or destination.
type Point struct {
	BuildingIdentifier  string              `json:"buildingIdentifier"`
	FloorIdentifier     string              `json:"floorIdentifier"`
	Coordinate          Coordinate          `json:"coordinate"`
	CartesianCoordinate CartesianCoordinate `json:"cartesianCoordinate,omitempty"`
	IsIndoor            bool                `json:"isIndoor,omitempty"`
	IsOutdoor           bool                `json:"isOutdoor,omitempty"`
}

// Poi is a point of interest.
type Poi struct {
	Identifier         int               `json:"identifier"`
	BuildingIdentifier string            `json:"buildingIdentifier"`
	Name               string            `json:"poiName"`
	Position           Point             `json:"position"`
	CategoryIdentifier int               `json:"categoryIdentifier"`
	IsIndoor           bool              `json:"isIndoor"`
	CustomFields       map[string]string `json:"customFields,omitempty"`
}

// PoiCategory groups POIs and carries their icons.
type PoiCategory struct {
	Identifier int    `json:"identifier"`
	Code       string `json:"poiCategoryCode"`
	Name       string `json:"poiCategoryName"`
	IsPublic   bool   `json:"public"`
}

// PoiIcon is a base64-encoded category icon.
type PoiIcon struct {
	Data string `json:"data"`
}

// Geofence is a polygonal area of a floor that triggers enter/exit events.
type Geofence struct {
	Identifier         string            `json:"identifier"`
	BuildingIdentifier string            `json:"buildingIdentifier"`
	FloorIdentifier    string            `json:"floorIdentifier"`
	Name               string            `json:"name"`
	Polygon            []Coordinate      `json:"polygonPoints"`
	CustomFields       map[string]string `json:"customFields,omitempty"`
}

// GeofenceCheckRequest asks whether a point falls inside any geofence.
type GeofenceCheckRequest struct {
	Point Point `json:"coordinate"`
}

// GeofenceCheckResponse is the answer to a GeofenceCheckRequest.
type GeofenceCheckResponse struct {
	IsInsideGeofence bool      `json:"isInsideGeofence"`
	Geofence         *Geofence `json:"geofence,omitempty"`
}

// TileBundle references the downloaded tiled map of a building.
type TileBundle struct {
	BuildingIdentifier string `json:"buildingIdentifier"`
	Path               string `json:"results"`
}
