package types

// InternalCallType tags an event forwarded from the dispatcher to the
// embedded viewer delegate.
type InternalCallType string

const (
	CallLocation                     InternalCallType = "LOCATION"
	CallLocationStatus               InternalCallType = "LOCATION_STATUS"
	CallLocationError                InternalCallType = "LOCATION_ERROR"
	CallLocationStopped              InternalCallType = "LOCATION_STOPPED"
	CallNavigationStart              InternalCallType = "NAVIGATION_START"
	CallNavigationProgress           InternalCallType = "NAVIGATION_PROGRESS"
	CallNavigationDestinationReached InternalCallType = "NAVIGATION_DESTINATION_REACHED"
	CallNavigationOutOfRoute         InternalCallType = "NAVIGATION_OUT_OF_ROUTE"
	CallNavigationCancellation       InternalCallType = "NAVIGATION_CANCELLATION"
	CallNavigationError              InternalCallType = "NAVIGATION_ERROR"
	CallGeofencesEnter               InternalCallType = "GEOFENCES_ENTER"
	CallGeofencesExit                InternalCallType = "GEOFENCES_EXIT"
)

// InternalCall is the envelope handed to the viewer delegate. Data carries
// the payload matching the call type (Location, StatusName, LocationError,
// NavigationProgress, Route, []Geofence or nil).
type InternalCall struct {
	Type InternalCallType
	Data any
}

// ViewerDelegate receives internal calls destined for the embedded viewer.
// The dispatcher guarantees delivery order per event kind and never invokes a
// nil delegate.
type ViewerDelegate func(call InternalCall)

// UserHelperOptions configure the native engine's built-in assistant for
// permission and sensor issues.
type UserHelperOptions struct {
	Enabled     bool                   `json:"enabled"`
	ColorScheme *UserHelperColorScheme `json:"colorScheme,omitempty"`
}

// UserHelperColorScheme themes the user helper UI.
type UserHelperColorScheme struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

// TextToSpeechMessage is spoken aloud on behalf of the viewer, which has its
// own speech synthesis disabled.
type TextToSpeechMessage struct {
	Text     string  `json:"text"`
	Language string  `json:"lang,omitempty"`
	Pitch    float64 `json:"pitch,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
}

// ConfigurationOptions groups the engine settings applied in one call.
type ConfigurationOptions struct {
	UseRemoteConfig *bool `json:"useRemoteConfig,omitempty"`
	CacheMaxAge     *int  `json:"cacheMaxAge,omitempty"`
}
