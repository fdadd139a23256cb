package main

import (
	"strconv"

	"wasteops/libs/restclient"
)

// Master is the shared shape of the portal's master-data records. The
// backend keys items by numeric id or by unique_id; Ref picks whichever is
// present for building item URLs.
type Master struct {
	ID          int    `json:"id,omitempty"`
	UniqueID    string `json:"unique_id,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Ref returns the identifier to use in item paths.
func (m Master) Ref() string {
	if m.UniqueID != "" {
		return m.UniqueID
	}
	return strconv.Itoa(m.ID)
}

// LoginResponse is the backend's answer to POST login-user/.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	UniqueID    string `json:"unique_id"`
	UserName    string `json:"user_name,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
}

// Complaint is a citizen grievance.
type Complaint struct {
	ID           int    `json:"id,omitempty"`
	UniqueID     string `json:"unique_id,omitempty"`
	Subject      string `json:"subject"`
	Details      string `json:"details,omitempty"`
	Status       string `json:"status"`
	WardName     string `json:"ward_name,omitempty"`
	CitizenName  string `json:"citizen_name,omitempty"`
	CitizenEmail string `json:"citizen_email,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func (c Complaint) Ref() string {
	if c.UniqueID != "" {
		return c.UniqueID
	}
	return strconv.Itoa(c.ID)
}

// StaffMember is one workforce record.
type StaffMember struct {
	ID          int    `json:"id,omitempty"`
	UniqueID    string `json:"unique_id,omitempty"`
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	WardName    string `json:"ward_name,omitempty"`
	Shift       string `json:"shift,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// WasteCollection is one collection trip record.
type WasteCollection struct {
	ID        int     `json:"id,omitempty"`
	UniqueID  string  `json:"unique_id,omitempty"`
	Date      string  `json:"date,omitempty"`
	WardName  string  `json:"ward_name,omitempty"`
	VehicleNo string  `json:"vehicle_no,omitempty"`
	WeightKg  float64 `json:"weight_kg,omitempty"`
}

// Registry binds every known backend entity to its own resource client.
// All master resources share one underlying desktop client (base URL,
// default headers, JSON content type); the mobile client additionally sends
// credentials with every request, which the citizen-facing grievance
// endpoints require.
type Registry struct {
	Desktop *restclient.Client
	Mobile  *restclient.Client

	Complaints       *restclient.Resource[Complaint]
	Staff            *restclient.Resource[StaffMember]
	WasteCollections *restclient.Resource[WasteCollection]

	masters map[string]*restclient.Resource[Master]
}

// masterCollections maps each route key to its backend collection path.
var masterCollections = map[string]string{
	"continents":       "continents",
	"countries":        "countries",
	"states":           "states",
	"districts":        "districts",
	"cities":           "cities",
	"zones":            "zones",
	"wards":            "wards",
	"properties":       "properties",
	"subProperties":    "sub-properties",
	"customers":        "customers",
	"fuels":            "fuels",
	"vehicleTypes":     "vehicle-types",
	"vehicles":         "vehicles",
	"staff":            "staff",
	"complaints":       "complaints",
	"feedback":         "feedback",
	"wasteCollections": "waste-collections",
	"screens":          "screens",
	"permissions":      "permissions",
	"userType":         "user-types",
	"users":            "users",
}

func newRegistry(desktop, mobile *restclient.Client) *Registry {
	r := &Registry{
		Desktop:          desktop,
		Mobile:           mobile,
		Complaints:       restclient.NewResource[Complaint](mobile, "complaints"),
		Staff:            restclient.NewResource[StaffMember](desktop, "staff"),
		WasteCollections: restclient.NewResource[WasteCollection](desktop, "waste-collections"),
		masters:          make(map[string]*restclient.Resource[Master], len(masterCollections)),
	}
	for key, path := range masterCollections {
		r.masters[key] = restclient.NewResource[Master](desktop, path)
	}
	return r
}

// Master returns the generic CRUD resource for a route key.
func (r *Registry) Master(key string) (*restclient.Resource[Master], bool) {
	resource, ok := r.masters[key]
	return resource, ok
}
