package types

import "time"

// Coordinate is a geographic coordinate.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CartesianCoordinate is a position in the building's local reference system,
// in meters.
type CartesianCoordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bearing is an angle measured clockwise from north.
type Bearing struct {
	Degrees          float64 `json:"degrees"`
	DegreesClockwise float64 `json:"degreesClockwise"`
}

// Position locates a point both geographically and within a building.
type Position struct {
	Coordinate          Coordinate          `json:"coordinate"`
	CartesianCoordinate CartesianCoordinate `json:"cartesianCoordinate"`
	BuildingIdentifier  string              `json:"buildingIdentifier"`
	FloorIdentifier     string              `json:"floorIdentifier"`
	IsIndoor            bool                `json:"isIndoor"`
	IsOutdoor           bool                `json:"isOutdoor"`
}

// Location is an immutable positioning snapshot produced by the native
// engine. No history is retained beyond the most recent update.
type Location struct {
	Position   Position  `json:"position"`
	Accuracy   float64   `json:"accuracy"`
	Bearing    *Bearing  `json:"bearing,omitempty"`
	HasBearing bool      `json:"hasBearing"`
	Timestamp  time.Time `json:"timestamp"`
	DeviceID   string    `json:"deviceId,omitempty"`
}

// LocationRequest configures how positioning behaves. All fields are passed
// through to the native engine; the bridge enforces none of them.
type LocationRequest struct {
	BuildingIdentifier   string `json:"buildingIdentifier,omitempty"`
	UseDeadReckoning     bool   `json:"useDeadReckoning,omitempty"`
	UseGps               bool   `json:"useGps,omitempty"`
	UseBle               bool   `json:"useBle,omitempty"`
	UseWifi              bool   `json:"useWifi,omitempty"`
	Interval             int    `json:"interval,omitempty"`
	UseForegroundService bool   `json:"useForegroundService,omitempty"`
}

// RealTimeRequest configures realtime device-position updates.
type RealTimeRequest struct {
	Building     *Building `json:"building,omitempty"`
	PollTimeMs   int       `json:"pollTime,omitempty"`
	UserIdentity string    `json:"userIdentity,omitempty"`
}

// RealTimeData carries the positions of all devices seen in realtime mode.
type RealTimeData struct {
	Locations []Location `json:"locations"`
}
