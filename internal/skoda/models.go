package skoda

import "time"

// Wire types for the cloud API. Field names follow the backend's camelCase
// JSON; they are converted into the vehicle domain types before leaving this
// package.

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type garageResponse struct {
	Vehicles []garageVehicle `json:"vehicles"`
}

type garageVehicle struct {
	VIN  string `json:"vin"`
	Name string `json:"name"`
}

type vehicleInfoResponse struct {
	VIN             string           `json:"vin"`
	Model           string           `json:"model"`
	SoftwareVersion string           `json:"softwareVersion"`
	Capabilities    capabilitiesBody `json:"capabilities"`
	Renders         []render         `json:"renders"`
}

type capabilitiesBody struct {
	Capabilities []capability `json:"capabilities"`
}

type capability struct {
	ID string `json:"id"`
}

type render struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type chargingResponse struct {
	Status   *chargingStatusBody   `json:"status"`
	Settings *chargingSettingsBody `json:"settings"`
}

type chargingStatusBody struct {
	Battery                              batteryBody `json:"battery"`
	ChargePowerInKW                      *float64    `json:"chargePowerInKw"`
	ChargeType                           string      `json:"chargeType"`
	State                                string      `json:"state"`
	RemainingTimeToFullyChargedInMinutes *int        `json:"remainingTimeToFullyChargedInMinutes"`
}

type batteryBody struct {
	StateOfChargeInPercent         *int     `json:"stateOfChargeInPercent"`
	RemainingCruisingRangeInMeters *float64 `json:"remainingCruisingRangeInMeters"`
}

type chargingSettingsBody struct {
	TargetStateOfChargeInPercent *int `json:"targetStateOfChargeInPercent"`
}

type healthResponse struct {
	MileageInKM *int `json:"mileageInKm"`
}

type maintenanceResponse struct {
	MaintenanceReport *maintenanceReportBody `json:"maintenanceReport"`
}

type maintenanceReportBody struct {
	InspectionDueInDays *int `json:"inspectionDueInDays"`
}

type statusResponse struct {
	CarCapturedTimestamp *time.Time `json:"carCapturedTimestamp"`
}
