package vehicle

import "strings"

// ChargeType says how the vehicle is being charged.
type ChargeType string

const (
	ChargeTypeAC ChargeType = "AC"
	ChargeTypeDC ChargeType = "DC"
)

// Lower returns the lowercase wire form used in state payloads.
func (t ChargeType) Lower() string { return strings.ToLower(string(t)) }

// ChargingState is the coarse charging lifecycle reported by the backend.
type ChargingState string

const (
	ChargingStateConnectCable     ChargingState = "CONNECT_CABLE"
	ChargingStateReadyForCharging ChargingState = "READY_FOR_CHARGING"
	ChargingStateConserving       ChargingState = "CONSERVING"
	ChargingStateCharging         ChargingState = "CHARGING"
)

// Lower returns the lowercase wire form used in state payloads.
func (s ChargingState) Lower() string { return strings.ToLower(string(s)) }

// ChargingStateOptions is the closed option set exposed for enum-typed
// consumers, in lowercase wire form.
func ChargingStateOptions() []string {
	return []string{
		ChargingStateConnectCable.Lower(),
		ChargingStateReadyForCharging.Lower(),
		ChargingStateConserving.Lower(),
		ChargingStateCharging.Lower(),
	}
}
