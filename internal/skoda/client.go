package skoda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

// ErrAuthorizationFailed is returned when the backend rejects the
// credentials or an expired session. Callers match it with errors.Is to tell
// an auth problem apart from a connection failure.
var ErrAuthorizationFailed = errors.New("authorization failed")

// DefaultBaseURL is the production vehicle cloud endpoint.
const DefaultBaseURL = "https://mysmob.api.connect.skoda-auto.cz/api"

// Client talks to the vehicle cloud API. It holds the session token acquired
// by Connect; all other calls require a prior successful Connect.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger

	mu          sync.RWMutex
	accessToken string
}

// NewClient creates a cloud API client. baseURL without trailing slash;
// pass DefaultBaseURL outside of tests.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout, logger),
		logger:     logger,
	}
}

// Connect opens a session with the given credentials. A 401/403 response
// maps to ErrAuthorizationFailed; transport failures are returned as-is so
// the caller can classify them.
func (c *Client) Connect(ctx context.Context, email, password string) error {
	body, err := json.Marshal(tokenRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/authentication/token", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthorizationFailed, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token endpoint returned an empty token")
	}

	c.mu.Lock()
	c.accessToken = token.AccessToken
	c.mu.Unlock()

	c.logger.WithField("email", email).Debug("Cloud session established")
	return nil
}

// ListVehicles returns the VINs in the account's garage.
func (c *Client) ListVehicles(ctx context.Context) ([]string, error) {
	var garage garageResponse
	if err := c.get(ctx, "/v2/garage", &garage); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vins := make([]string, 0, len(garage.Vehicles))
	for _, v := range garage.Vehicles {
		vins = append(vins, v.VIN)
	}
	return vins, nil
}

// Vehicle fetches the static info and capability set for one VIN.
func (c *Client) Vehicle(ctx context.Context, vin string) (*vehicle.Info, vehicle.Capabilities, map[string]string, error) {
	var info vehicleInfoResponse
	if err := c.get(ctx, "/v2/garage/vehicles/"+vin, &info); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch vehicle %s: %w", vin, err)
	}

	caps := make(vehicle.Capabilities, len(info.Capabilities.Capabilities))
	for _, entry := range info.Capabilities.Capabilities {
		caps[vehicle.CapabilityID(entry.ID)] = struct{}{}
	}

	renders := make(map[string]string, len(info.Renders))
	for _, r := range info.Renders {
		renders[r.Type] = r.URL
	}

	return &vehicle.Info{
		SoftwareVersion: info.SoftwareVersion,
		Model:           info.Model,
	}, caps, renders, nil
}

// Snapshot assembles a fresh vehicle snapshot. Only the sections backed by a
// reported capability are requested; a section that fails to fetch is left
// nil and logged, so one flaky endpoint never voids the whole refresh.
// Authorization failures do abort the refresh: they mean the session is gone.
func (c *Client) Snapshot(ctx context.Context, vin string, caps vehicle.Capabilities) (*vehicle.Snapshot, error) {
	snap := &vehicle.Snapshot{
		VIN:       vin,
		FetchedAt: time.Now(),
	}

	info, _, renders, err := c.Vehicle(ctx, vin)
	if err != nil {
		if errors.Is(err, ErrAuthorizationFailed) {
			return nil, err
		}
		c.logger.WithError(err).WithField("vin", vin).Warn("Vehicle info fetch failed")
	} else {
		snap.Info = info
		snap.Renders = renders
	}

	if caps.Has(vehicle.CapabilityCharging) {
		var charging chargingResponse
		if err := c.section(ctx, "/v1/charging/"+vin, &charging); err != nil {
			return nil, err
		} else if charging.Status != nil || charging.Settings != nil {
			snap.Charging = convertCharging(&charging)
		}
	}

	if caps.Has(vehicle.CapabilityVehicleHealthInspection) {
		var health healthResponse
		if err := c.section(ctx, "/v1/vehicle-health-report/warning-lights/"+vin, &health); err != nil {
			return nil, err
		} else if health.MileageInKM != nil {
			snap.Health = &vehicle.Health{MileageInKM: health.MileageInKM}
		}

		var maintenance maintenanceResponse
		if err := c.section(ctx, "/v1/vehicle-maintenance/vehicles/"+vin+"/report", &maintenance); err != nil {
			return nil, err
		} else if maintenance.MaintenanceReport != nil {
			snap.Maintenance = &vehicle.Maintenance{
				MaintenanceReport: &vehicle.MaintenanceReport{
					InspectionDueInDays: maintenance.MaintenanceReport.InspectionDueInDays,
				},
			}
		}
	}

	if caps.Has(vehicle.CapabilityState) {
		var status statusResponse
		if err := c.section(ctx, "/v2/vehicle-status/"+vin, &status); err != nil {
			return nil, err
		} else if status.CarCapturedTimestamp != nil {
			snap.Status = &vehicle.Status{CarCapturedTimestamp: status.CarCapturedTimestamp}
		}
	}

	return snap, nil
}

func convertCharging(resp *chargingResponse) *vehicle.Charging {
	charging := &vehicle.Charging{}
	if st := resp.Status; st != nil {
		charging.Status = &vehicle.ChargingStatus{
			Battery: vehicle.Battery{
				StateOfChargeInPercent:         st.Battery.StateOfChargeInPercent,
				RemainingCruisingRangeInMeters: st.Battery.RemainingCruisingRangeInMeters,
			},
			ChargePowerInKW:                      st.ChargePowerInKW,
			ChargeType:                           vehicle.ChargeType(st.ChargeType),
			State:                                vehicle.ChargingState(st.State),
			RemainingTimeToFullyChargedInMinutes: st.RemainingTimeToFullyChargedInMinutes,
		}
	}
	if s := resp.Settings; s != nil {
		charging.Settings = &vehicle.ChargingSettings{
			TargetStateOfChargeInPercent: s.TargetStateOfChargeInPercent,
		}
	}
	return charging
}

// section fetches one snapshot section. Missing sections (404) and transient
// failures are tolerated: the out value stays zero and the refresh carries
// on. Authorization failures are returned so the caller can reauth.
func (c *Client) section(ctx context.Context, path string, out any) error {
	err := c.get(ctx, path, out)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuthorizationFailed) {
		return err
	}
	c.logger.WithError(err).WithField("path", path).Debug("Snapshot section unavailable")
	return nil
}

// errNotFound marks a 404 from the backend: the section simply does not
// exist for this vehicle.
var errNotFound = errors.New("not found")

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d on %s", ErrAuthorizationFailed, resp.StatusCode, path)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, path)
	default:
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"path": path,
		"size": len(body),
	}).Debug("Cloud API response received")
	return nil
}
