package dispatcher

import "github.com/wayfarerhq/mapbridge/types"

// AdaptNativeError maps a raw engine error onto the closed error vocabulary.
// The engine reports permission and sensor problems under several numeric
// codes depending on platform; they collapse into one code per cause here.
// Every adapted error is critical: positioning does not survive any of them.
func AdaptNativeError(native types.NativeError) types.LocationError {
	var code types.ErrorCode
	switch native.Code {
	case "8001", "8", "9", "10":
		code = types.ErrLocationPermissionDenied
	case "8002":
		code = types.ErrLocationDisabled
	case "8012":
		code = types.ErrBluetoothPermissionDenied
	case "8100", "6":
		code = types.ErrBluetoothDisabled
	case "11":
		code = types.ErrReducedAccuracy
	default:
		code = types.ErrUnknown
	}
	return types.LocationError{
		Code:    code,
		Message: native.Message,
		Type:    types.SeverityCritical,
	}
}
