package sensors

import (
	"fmt"

	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

// charging / chargingStatus walk the optional chain down to the live charging
// record. Each helper returns nil as soon as a link is missing so the value
// functions collapse to "no value" instead of dereferencing a nil record.

func charging(s *vehicle.Snapshot) *vehicle.Charging {
	if s == nil {
		return nil
	}
	return s.Charging
}

func chargingStatus(s *vehicle.Snapshot) *vehicle.ChargingStatus {
	if c := charging(s); c != nil {
		return c.Status
	}
	return nil
}

// All returns the full sensor registry. Which of these actually get exposed
// for a given vehicle depends on Descriptor.Available against the vehicle's
// capability set.
func All() []Descriptor {
	return []Descriptor{
		{
			Key:          "battery_percentage",
			Name:         "Battery Percentage",
			Unit:         "%",
			DeviceClass:  DeviceClassBattery,
			StateClass:   StateClassMeasurement,
			Icon:         "mdi:battery",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if st := chargingStatus(s); st != nil && st.Battery.StateOfChargeInPercent != nil {
					return *st.Battery.StateOfChargeInPercent
				}
				return nil
			},
			DynamicIcon: batteryIcon,
		},
		{
			Key:          "charging_power",
			Name:         "Charging Power",
			Unit:         "kW",
			DeviceClass:  DeviceClassPower,
			StateClass:   StateClassMeasurement,
			Icon:         "mdi:lightning-bolt",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if st := chargingStatus(s); st != nil && st.ChargePowerInKW != nil {
					return *st.ChargePowerInKW
				}
				return nil
			},
		},
		{
			Key:          "range",
			Name:         "Range",
			Unit:         "km",
			DeviceClass:  DeviceClassDistance,
			StateClass:   StateClassMeasurement,
			Icon:         "mdi:speedometer",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if st := chargingStatus(s); st != nil && st.Battery.RemainingCruisingRangeInMeters != nil {
					return *st.Battery.RemainingCruisingRangeInMeters / 1000
				}
				return nil
			},
		},
		{
			Key:          "target_battery_percentage",
			Name:         "Target Battery Percentage",
			Unit:         "%",
			DeviceClass:  DeviceClassBattery,
			StateClass:   StateClassMeasurement,
			Icon:         "mdi:percent",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if c := charging(s); c != nil && c.Settings != nil && c.Settings.TargetStateOfChargeInPercent != nil {
					return *c.Settings.TargetStateOfChargeInPercent
				}
				return nil
			},
		},
		{
			// Key spelling is part of the public entity ID, kept as-is.
			Key:          "milage",
			Name:         "Milage",
			Unit:         "km",
			DeviceClass:  DeviceClassDistance,
			StateClass:   StateClassTotalIncreasing,
			Icon:         "mdi:counter",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityVehicleHealthInspection},
			Value: func(s *vehicle.Snapshot) any {
				if s != nil && s.Health != nil && s.Health.MileageInKM != nil {
					return *s.Health.MileageInKM
				}
				return nil
			},
		},
		{
			Key:          "inspection",
			Name:         "Inspection",
			Unit:         "d",
			DeviceClass:  DeviceClassDuration,
			StateClass:   StateClassMeasurement,
			Icon:         "mdi:car-wrench",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityVehicleHealthInspection},
			Value: func(s *vehicle.Snapshot) any {
				if s != nil && s.Maintenance != nil && s.Maintenance.MaintenanceReport != nil &&
					s.Maintenance.MaintenanceReport.InspectionDueInDays != nil {
					return *s.Maintenance.MaintenanceReport.InspectionDueInDays
				}
				return nil
			},
		},
		{
			Key:          "charge_type",
			Name:         "Charge Type",
			Icon:         "mdi:ev-plug-type2",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if st := chargingStatus(s); st != nil && st.ChargeType != "" {
					return st.ChargeType.Lower()
				}
				return nil
			},
			DynamicIcon: func(s *vehicle.Snapshot) string {
				if st := chargingStatus(s); st != nil && st.ChargeType == vehicle.ChargeTypeDC {
					return "mdi:ev-plug-ccs2"
				}
				return "mdi:ev-plug-type2"
			},
		},
		{
			Key:          "charging_state",
			Name:         "Charging State",
			DeviceClass:  DeviceClassEnum,
			Icon:         "mdi:power-plug",
			Options:      vehicle.ChargingStateOptions(),
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if st := chargingStatus(s); st != nil && st.State != "" {
					return st.State.Lower()
				}
				return nil
			},
			DynamicIcon: func(s *vehicle.Snapshot) string {
				if st := chargingStatus(s); st != nil {
					switch st.State {
					case vehicle.ChargingStateConnectCable:
						return "mdi:power-plug-off"
					case vehicle.ChargingStateCharging:
						return "mdi:power-plug-battery"
					}
				}
				return "mdi:power-plug"
			},
		},
		{
			Key:          "remaining_charging_time",
			Name:         "Remaining Charging Time",
			Unit:         "min",
			DeviceClass:  DeviceClassDuration,
			Icon:         "mdi:timer",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityCharging},
			Value: func(s *vehicle.Snapshot) any {
				if st := chargingStatus(s); st != nil && st.RemainingTimeToFullyChargedInMinutes != nil {
					return *st.RemainingTimeToFullyChargedInMinutes
				}
				return nil
			},
		},
		{
			Key:          "car_captured",
			Name:         "Last Updated",
			DeviceClass:  DeviceClassTimestamp,
			Icon:         "mdi:clock",
			RequiredCaps: []vehicle.CapabilityID{vehicle.CapabilityState},
			Value: func(s *vehicle.Snapshot) any {
				if s != nil && s.Status != nil && s.Status.CarCapturedTimestamp != nil {
					return *s.Status.CarCapturedTimestamp
				}
				return nil
			},
		},
		{
			Key:  "software_version",
			Name: "Software Version",
			Icon: "mdi:update",
			Value: func(s *vehicle.Snapshot) any {
				if s != nil && s.Info != nil && s.Info.SoftwareVersion != "" {
					return s.Info.SoftwareVersion
				}
				return nil
			},
		},
		{
			Key:  "render_url_main",
			Name: "Main Render URL",
			Icon: "mdi:file-image",
			Value: func(s *vehicle.Snapshot) any {
				if s != nil {
					if url, ok := s.Renders[vehicle.RenderMain]; ok {
						return url
					}
				}
				return nil
			},
		},
	}
}

// batteryIcon bands the state of charge into ten-point buckets and overlays
// the charging variant whenever a cable state other than "connect cable" is
// reported. A full battery that is not charging collapses to the plain icon.
func batteryIcon(s *vehicle.Snapshot) string {
	st := chargingStatus(s)
	if st == nil || st.Battery.StateOfChargeInPercent == nil {
		return "mdi:battery-outline"
	}

	soc := *st.Battery.StateOfChargeInPercent

	var suffix string
	switch {
	case soc >= 95:
		suffix = "100"
	case soc >= 85:
		suffix = "90"
	case soc >= 75:
		suffix = "80"
	case soc >= 65:
		suffix = "70"
	case soc >= 55:
		suffix = "60"
	case soc >= 45:
		suffix = "50"
	case soc >= 35:
		suffix = "40"
	case soc >= 25:
		suffix = "30"
	case soc >= 15:
		suffix = "20"
	case soc >= 5:
		suffix = "10"
	default:
		suffix = "outline"
	}

	if st.State != vehicle.ChargingStateConnectCable {
		return fmt.Sprintf("mdi:battery-charging-%s", suffix)
	}
	if suffix == "100" {
		return "mdi:battery"
	}
	return fmt.Sprintf("mdi:battery-%s", suffix)
}
