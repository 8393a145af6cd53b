package types

// ErrorCode is the closed set of positioning error codes exposed by the
// bridge. Native codes outside the adaptation table collapse to UNKNOWN.
type ErrorCode string

const (
	ErrLocationPermissionDenied  ErrorCode = "LOCATION_PERMISSION_DENIED"
	ErrBluetoothPermissionDenied ErrorCode = "BLUETOOTH_PERMISSION_DENIED"
	ErrBluetoothDisabled         ErrorCode = "BLUETOOTH_DISABLED"
	ErrLocationDisabled          ErrorCode = "LOCATION_DISABLED"
	ErrReducedAccuracy           ErrorCode = "REDUCED_ACCURACY"
	ErrUnknown                   ErrorCode = "UNKNOWN"
)

// ErrorSeverity indicates whether positioning can continue after the error.
type ErrorSeverity string

const (
	// SeverityCritical errors stop positioning.
	SeverityCritical ErrorSeverity = "CRITICAL"
	// SeverityNonCritical errors are informational.
	SeverityNonCritical ErrorSeverity = "NON_CRITICAL"
)

// LocationError is a positioning or navigation domain error after adaptation.
type LocationError struct {
	Code    ErrorCode     `json:"code"`
	Message string        `json:"message"`
	Type    ErrorSeverity `json:"type"`
}

// NativeError is an error as emitted by the native engine, before its
// numeric/string code has been adapted into the closed ErrorCode set.
type NativeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
