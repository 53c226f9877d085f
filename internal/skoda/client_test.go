package skoda

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, testLogger()), srv
}

func TestConnectSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/authentication/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"accessToken":"tok-1"}`))
	})
	client, _ := newTestClient(t, mux)

	require.NoError(t, client.Connect(context.Background(), "a@b.c", "pw"))
}

func TestConnectAuthorizationFailed(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/authentication/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		client, _ := newTestClient(t, mux)

		err := client.Connect(context.Background(), "a@b.c", "bad")
		assert.ErrorIs(t, err, ErrAuthorizationFailed)
	}
}

func TestConnectServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/authentication/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := newTestClient(t, mux)

	err := client.Connect(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthorizationFailed)
}

func TestListVehicles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/garage", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vehicles":[{"vin":"TMB111"},{"vin":"TMB222"}]}`))
	})
	client, _ := newTestClient(t, mux)

	vins, err := client.ListVehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"TMB111", "TMB222"}, vins)
}

func TestVehicleParsesCapabilitiesAndRenders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/garage/vehicles/TMB111", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"vin": "TMB111",
			"model": "Enyaq",
			"softwareVersion": "3.2.1",
			"capabilities": {"capabilities": [{"id":"CHARGING"},{"id":"STATE"}]},
			"renders": [{"type":"main","url":"https://img.example/main.png"}]
		}`))
	})
	client, _ := newTestClient(t, mux)

	info, caps, renders, err := client.Vehicle(context.Background(), "TMB111")
	require.NoError(t, err)
	assert.Equal(t, "Enyaq", info.Model)
	assert.Equal(t, "3.2.1", info.SoftwareVersion)
	assert.True(t, caps.Has(vehicle.CapabilityCharging))
	assert.True(t, caps.Has(vehicle.CapabilityState))
	assert.False(t, caps.Has(vehicle.CapabilityVehicleHealthInspection))
	assert.Equal(t, "https://img.example/main.png", renders["main"])
}

func fullVehicleMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/garage/vehicles/TMB111", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"vin": "TMB111",
			"model": "Enyaq",
			"softwareVersion": "3.2.1",
			"capabilities": {"capabilities": [{"id":"CHARGING"},{"id":"STATE"},{"id":"VEHICLE_HEALTH_INSPECTION"}]},
			"renders": [{"type":"main","url":"https://img.example/main.png"}]
		}`))
	})
	mux.HandleFunc("/v1/charging/TMB111", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": {
				"battery": {"stateOfChargeInPercent": 67, "remainingCruisingRangeInMeters": 123000},
				"chargePowerInKw": 11.0,
				"chargeType": "AC",
				"state": "CHARGING",
				"remainingTimeToFullyChargedInMinutes": 120
			},
			"settings": {"targetStateOfChargeInPercent": 80}
		}`))
	})
	mux.HandleFunc("/v1/vehicle-health-report/warning-lights/TMB111", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mileageInKm": 42000}`))
	})
	mux.HandleFunc("/v1/vehicle-maintenance/vehicles/TMB111/report", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"maintenanceReport": {"inspectionDueInDays": 213}}`))
	})
	mux.HandleFunc("/v2/vehicle-status/TMB111", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"carCapturedTimestamp": "2024-06-01T12:30:00Z"}`))
	})
	return mux
}

func TestSnapshotAssemblesAllSections(t *testing.T) {
	client, _ := newTestClient(t, fullVehicleMux())

	caps := vehicle.NewCapabilities(
		vehicle.CapabilityCharging,
		vehicle.CapabilityState,
		vehicle.CapabilityVehicleHealthInspection,
	)
	snap, err := client.Snapshot(context.Background(), "TMB111", caps)
	require.NoError(t, err)

	require.NotNil(t, snap.Charging)
	require.NotNil(t, snap.Charging.Status)
	assert.Equal(t, 67, *snap.Charging.Status.Battery.StateOfChargeInPercent)
	assert.Equal(t, 123000.0, *snap.Charging.Status.Battery.RemainingCruisingRangeInMeters)
	assert.Equal(t, vehicle.ChargeTypeAC, snap.Charging.Status.ChargeType)
	assert.Equal(t, vehicle.ChargingStateCharging, snap.Charging.Status.State)
	assert.Equal(t, 120, *snap.Charging.Status.RemainingTimeToFullyChargedInMinutes)
	require.NotNil(t, snap.Charging.Settings)
	assert.Equal(t, 80, *snap.Charging.Settings.TargetStateOfChargeInPercent)

	require.NotNil(t, snap.Health)
	assert.Equal(t, 42000, *snap.Health.MileageInKM)

	require.NotNil(t, snap.Maintenance)
	require.NotNil(t, snap.Maintenance.MaintenanceReport)
	assert.Equal(t, 213, *snap.Maintenance.MaintenanceReport.InspectionDueInDays)

	require.NotNil(t, snap.Status)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), snap.Status.CarCapturedTimestamp.UTC())

	require.NotNil(t, snap.Info)
	assert.Equal(t, "3.2.1", snap.Info.SoftwareVersion)
	assert.Equal(t, "https://img.example/main.png", snap.Renders["main"])
}

func TestSnapshotSkipsSectionsWithoutCapability(t *testing.T) {
	client, _ := newTestClient(t, fullVehicleMux())

	snap, err := client.Snapshot(context.Background(), "TMB111", vehicle.NewCapabilities(vehicle.CapabilityState))
	require.NoError(t, err)

	assert.Nil(t, snap.Charging, "charging is never requested without the capability")
	assert.Nil(t, snap.Health)
	assert.NotNil(t, snap.Status)
}

func TestSnapshotToleratesMissingSection(t *testing.T) {
	mux := fullVehicleMux()
	// Maintenance report does not exist for this vehicle.
	mux.HandleFunc("/v1/vehicle-maintenance/vehicles/TMB404/report", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/vehicle-health-report/warning-lights/TMB404", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mileageInKm": 10}`))
	})
	mux.HandleFunc("/v2/garage/vehicles/TMB404", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vin":"TMB404","capabilities":{"capabilities":[]}}`))
	})
	client, _ := newTestClient(t, mux)

	snap, err := client.Snapshot(context.Background(), "TMB404", vehicle.NewCapabilities(vehicle.CapabilityVehicleHealthInspection))
	require.NoError(t, err)

	require.NotNil(t, snap.Health)
	assert.Nil(t, snap.Maintenance, "missing section maps to no value, not an error")
}

func TestSnapshotAbortsOnAuthorizationFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, mux)

	// Only non-auth errors are tolerated per section; a 401 means the
	// session is gone and the whole refresh aborts.
	_, err := client.Snapshot(context.Background(), "TMB111", vehicle.NewCapabilities(vehicle.CapabilityCharging))
	assert.ErrorIs(t, err, ErrAuthorizationFailed)
}

func TestRequestsCarryBearerToken(t *testing.T) {
	var seenAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/authentication/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accessToken":"tok-42"}`))
	})
	mux.HandleFunc("/v2/garage", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"vehicles":[]}`))
	})
	client, _ := newTestClient(t, mux)

	require.NoError(t, client.Connect(context.Background(), "a@b.c", "pw"))
	_, err := client.ListVehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-42", seenAuth)
}
