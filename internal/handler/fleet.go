package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/waste-portal/internal/model"
	"github.com/sakif/waste-portal/internal/service"
)

// FleetHandler serves facility and vehicle management.
type FleetHandler struct {
	fleet  *service.FleetService
	logger *slog.Logger
}

func NewFleetHandler(fleet *service.FleetService, logger *slog.Logger) *FleetHandler {
	return &FleetHandler{
		fleet:  fleet,
		logger: logger,
	}
}

type facilityRequest struct {
	Name             string  `json:"name"`
	FacilityType     string  `json:"facilityType"`
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	CapacityTPD      float64 `json:"capacityTpd"`
	ContactNumber    string  `json:"contactNumber"`
	OperationalHours string  `json:"operationalHours"`
}

// HandleCreateFacility registers a processing facility.
//
// HTTP: POST /api/facilities
func (h *FleetHandler) HandleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	f, err := h.fleet.CreateFacility(r.Context(), service.FacilityInput{
		Name:             req.Name,
		Type:             req.FacilityType,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		CapacityTPD:      req.CapacityTPD,
		ContactNumber:    req.ContactNumber,
		OperationalHours: req.OperationalHours,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, f)
}

// HandleListFacilities returns all facilities.
//
// HTTP: GET /api/facilities
func (h *FleetHandler) HandleListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.fleet.ListFacilities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

type vehicleRequest struct {
	VehicleNumber string  `json:"vehicleNumber"`
	VehicleType   string  `json:"vehicleType"`
	CapacityTons  float64 `json:"capacityTons"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DriverName    string  `json:"driverName"`
	DriverPhone   string  `json:"driverPhone"`
}

// HandleCreateVehicle registers a fleet vehicle.
//
// HTTP: POST /api/vehicles
func (h *FleetHandler) HandleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	v, err := h.fleet.CreateVehicle(r.Context(), service.VehicleInput{
		Number:       req.VehicleNumber,
		Type:         req.VehicleType,
		CapacityTons: req.CapacityTons,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		DriverName:   req.DriverName,
		DriverPhone:  req.DriverPhone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

// HandleListVehicles returns the fleet.
//
// HTTP: GET /api/vehicles
func (h *FleetHandler) HandleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

type positionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
}

// HandleUpdatePosition records a vehicle's position and working status.
//
// HTTP: PATCH /api/vehicles/{id}/position
func (h *FleetHandler) HandleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	v, err := h.fleet.UpdateVehiclePosition(r.Context(),
		id, req.Latitude, req.Longitude, model.VehicleStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}
