package vehicle

import "time"

// Snapshot is the last-fetched view of a single vehicle. Every sub-record is
// optional: the backend only returns what the vehicle's capability set
// supports, and a record may also be missing right after startup before the
// first fetch of that section succeeded. Readers must treat a nil record as
// "no value", never as an error.
//
// A Snapshot is immutable once published; the coordinator swaps in a fresh
// one on every refresh instead of mutating the old one.
type Snapshot struct {
	VIN       string    `json:"vin"`
	FetchedAt time.Time `json:"fetched_at"`

	Charging    *Charging         `json:"charging,omitempty"`
	Health      *Health           `json:"health,omitempty"`
	Maintenance *Maintenance      `json:"maintenance,omitempty"`
	Status      *Status           `json:"status,omitempty"`
	Info        *Info             `json:"info,omitempty"`
	Renders     map[string]string `json:"renders,omitempty"`
}

// Charging groups live charging telemetry and the user's charging settings.
type Charging struct {
	Status   *ChargingStatus   `json:"status,omitempty"`
	Settings *ChargingSettings `json:"settings,omitempty"`
}

// ChargingStatus is the live state reported while a vehicle is plugged in (or
// was last seen). Numeric leaves are pointers so that a missing reading is
// distinguishable from a reading of zero.
type ChargingStatus struct {
	Battery                              Battery       `json:"battery"`
	ChargePowerInKW                      *float64      `json:"charge_power_in_kw,omitempty"`
	ChargeType                           ChargeType    `json:"charge_type,omitempty"`
	State                                ChargingState `json:"state,omitempty"`
	RemainingTimeToFullyChargedInMinutes *int          `json:"remaining_time_to_fully_charged_in_minutes,omitempty"`
}

// Battery holds the state of charge and the range estimate derived from it.
type Battery struct {
	StateOfChargeInPercent         *int     `json:"state_of_charge_in_percent,omitempty"`
	RemainingCruisingRangeInMeters *float64 `json:"remaining_cruising_range_in_meters,omitempty"`
}

// ChargingSettings mirrors the charging preferences configured in the app.
type ChargingSettings struct {
	TargetStateOfChargeInPercent *int `json:"target_state_of_charge_in_percent,omitempty"`
}

// Health carries long-lived vehicle health data.
type Health struct {
	MileageInKM *int `json:"mileage_in_km,omitempty"`
}

// Maintenance carries the service schedule.
type Maintenance struct {
	MaintenanceReport *MaintenanceReport `json:"maintenance_report,omitempty"`
}

type MaintenanceReport struct {
	InspectionDueInDays *int `json:"inspection_due_in_days,omitempty"`
}

// Status carries generic vehicle state metadata.
type Status struct {
	CarCapturedTimestamp *time.Time `json:"car_captured_timestamp,omitempty"`
}

// Info carries static vehicle information.
type Info struct {
	SoftwareVersion string `json:"software_version,omitempty"`
	Model           string `json:"model,omitempty"`
}

// RenderMain is the well-known key of the primary vehicle image render.
const RenderMain = "main"
