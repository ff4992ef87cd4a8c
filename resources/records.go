// Package resources defines the service-center records the dashboard manages and the page each
// one is edited through.
package resources

import "time"

// Collection names, used both as URL segments and backend paths.
const (
	CollectionAppointments = "appointments"
	CollectionCustomers    = "customers"
	CollectionVehicles     = "vehicles"
	CollectionParts        = "parts"
	CollectionStaff        = "staff"
	CollectionShifts       = "shifts"
	CollectionInvoices     = "invoices"
	CollectionCenters      = "centers"
)

type Appointment struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName" validate:"required,max=120"`
	VehiclePlate string    `json:"vehiclePlate" validate:"required,max=16"`
	ServiceType  string    `json:"serviceType" validate:"required,oneof=inspection battery_check charger_repair tire_service software_update general"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	Status       string    `json:"status" validate:"required,oneof=scheduled in_progress completed cancelled"`
	TechnicianID string    `json:"technicianId,omitempty"`
	CenterID     string    `json:"centerId,omitempty"`
	Notes        string    `json:"notes,omitempty" validate:"max=1000"`
}

func (a Appointment) RecordID() string { return a.ID }

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
	Address string `json:"address,omitempty" validate:"max=240"`
}

func (c Customer) RecordID() string { return c.ID }

type Vehicle struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customerId" validate:"required"`
	VIN        string  `json:"vin" validate:"required,len=17,alphanum"`
	Plate      string  `json:"plate" validate:"required,max=16"`
	Make       string  `json:"make" validate:"required"`
	Model      string  `json:"model" validate:"required"`
	Year       int     `json:"year" validate:"gte=1990,lte=2100"`
	BatteryKWh float64 `json:"batteryKwh" validate:"gte=0"`
}

func (v Vehicle) RecordID() string { return v.ID }

type Part struct {
	ID           string  `json:"id"`
	SKU          string  `json:"sku" validate:"required,max=32"`
	Name         string  `json:"name" validate:"required,max=120"`
	Category     string  `json:"category" validate:"required,oneof=battery charging brakes tires electronics cabin other"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	ReorderLevel int     `json:"reorderLevel" validate:"gte=0"`
	UnitPrice    float64 `json:"unitPrice" validate:"gte=0"`
	CenterID     string  `json:"centerId,omitempty"`
}

func (p Part) RecordID() string { return p.ID }

// LowStock reports whether the part is at or below its reorder level.
func (p Part) LowStock() bool { return p.Quantity <= p.ReorderLevel }

type StaffMember struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin staff technician"`
	CenterID string `json:"centerId,omitempty"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}

func (s StaffMember) RecordID() string { return s.ID }

type Shift struct {
	ID        string `json:"id"`
	StaffID   string `json:"staffId" validate:"required"`
	StaffName string `json:"staffName,omitempty"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
	CenterID  string `json:"centerId,omitempty"`
}

func (s Shift) RecordID() string { return s.ID }

type Invoice struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointmentId" validate:"required"`
	CustomerName  string    `json:"customerName" validate:"required"`
	Amount        float64   `json:"amount" validate:"gt=0"`
	Status        string    `json:"status" validate:"required,oneof=draft issued paid void"`
	Method        string    `json:"method,omitempty" validate:"omitempty,oneof=card cash transfer"`
	IssuedAt      time.Time `json:"issuedAt"`
}

func (i Invoice) RecordID() string { return i.ID }

type ServiceCenter struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=120"`
	Address  string `json:"address" validate:"required,max=240"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
	Capacity int    `json:"capacity" validate:"gte=1"`
}

func (c ServiceCenter) RecordID() string { return c.ID }
