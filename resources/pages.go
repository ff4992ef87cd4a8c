package resources

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/evcenter-admin/crud"
	"github.com/jrsteele09/evcenter-admin/roles"
)

var (
	ServiceTypes        = []string{"inspection", "battery_check", "charger_repair", "tire_service", "software_update", "general"}
	AppointmentStatuses = []string{"scheduled", "in_progress", "completed", "cancelled"}
	PartCategories      = []string{"battery", "charging", "brakes", "tires", "electronics", "cabin", "other"}
	StaffRoles          = []string{roles.Admin.String(), roles.Staff.String(), roles.Technician.String()}
	InvoiceStatuses     = []string{"draft", "issued", "paid", "void"}
	PaymentMethods      = []string{"", "card", "cash", "transfer"}
)

const displayTime = "2006-01-02 15:04"

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

// humanize turns "battery_check" into "Battery check".
func humanize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func when(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayTime)
}

// AppointmentsPage is the one page with a non-default presentation: rows are ordered by scheduled
// time, newest first, after filtering.
func AppointmentsPage() *crud.Definition[Appointment] {
	return &crud.Definition[Appointment]{
		Name:     CollectionAppointments,
		Title:    "Appointments",
		Singular: "Appointment",
		Columns: []crud.Column[Appointment]{
			{Header: "Customer", Value: func(a Appointment) string { return a.CustomerName }, Filterable: true},
			{Header: "Vehicle", Value: func(a Appointment) string { return a.VehiclePlate }, Filterable: true},
			{Header: "Service", Value: func(a Appointment) string { return humanize(a.ServiceType) }, Filterable: true},
			{Header: "Scheduled", Value: func(a Appointment) string { return when(a.ScheduledAt) }},
			{Header: "Status", Value: func(a Appointment) string { return humanize(a.Status) }, Filterable: true},
		},
		Fields: []crud.Field[Appointment]{
			crud.Text("customerName", "Customer", func(a Appointment) string { return a.CustomerName }, func(a *Appointment, v string) { a.CustomerName = v }).Mark(crud.KindText, true),
			crud.Text("vehiclePlate", "Plate", func(a Appointment) string { return a.VehiclePlate }, func(a *Appointment, v string) { a.VehiclePlate = strings.ToUpper(v) }).Mark(crud.KindText, true),
			crud.Select("serviceType", "Service", ServiceTypes, func(a Appointment) string { return a.ServiceType }, func(a *Appointment, v string) { a.ServiceType = v }),
			crud.DateTime("scheduledAt", "Scheduled", func(a Appointment) time.Time { return a.ScheduledAt }, func(a *Appointment, v time.Time) { a.ScheduledAt = v }),
			crud.Select("status", "Status", AppointmentStatuses, func(a Appointment) string { return a.Status }, func(a *Appointment, v string) { a.Status = v }),
			crud.Text("technicianId", "Technician", func(a Appointment) string { return a.TechnicianID }, func(a *Appointment, v string) { a.TechnicianID = v }),
			crud.Text("notes", "Notes", func(a Appointment) string { return a.Notes }, func(a *Appointment, v string) { a.Notes = v }).Mark(crud.KindTextArea, false),
		},
		Access: crud.Access{
			View:   roles.Operators,
			Mutate: roles.Management,
			Delete: roles.AdminOnly,
		},
		New: func() Appointment {
			return Appointment{ServiceType: "inspection", Status: "scheduled"}
		},
		Describe: func(a Appointment) string {
			return fmt.Sprintf("appointment for %s on %s", a.CustomerName, when(a.ScheduledAt))
		},
		Less: func(a, b Appointment) bool { return a.ScheduledAt.After(b.ScheduledAt) },
	}
}

func CustomersPage() *crud.Definition[Customer] {
	return &crud.Definition[Customer]{
		Name:     CollectionCustomers,
		Title:    "Customers",
		Singular: "Customer",
		Columns: []crud.Column[Customer]{
			{Header: "Name", Value: func(c Customer) string { return c.Name }, Filterable: true},
			{Header: "Email", Value: func(c Customer) string { return c.Email }, Filterable: true},
			{Header: "Phone", Value: func(c Customer) string { return c.Phone }, Filterable: true},
		},
		Fields: []crud.Field[Customer]{
			crud.Text("name", "Name", func(c Customer) string { return c.Name }, func(c *Customer, v string) { c.Name = v }).Mark(crud.KindText, true),
			crud.Text("email", "Email", func(c Customer) string { return c.Email }, func(c *Customer, v string) { c.Email = strings.ToLower(v) }).Mark(crud.KindEmail, true),
			crud.Text("phone", "Phone", func(c Customer) string { return c.Phone }, func(c *Customer, v string) { c.Phone = v }),
			crud.Text("address", "Address", func(c Customer) string { return c.Address }, func(c *Customer, v string) { c.Address = v }).Mark(crud.KindTextArea, false),
		},
		Access: crud.Access{
			View:   roles.Management,
			Mutate: roles.Management,
			Delete: roles.AdminOnly,
		},
		Describe: func(c Customer) string { return c.Name },
	}
}

func VehiclesPage() *crud.Definition[Vehicle] {
	return &crud.Definition[Vehicle]{
		Name:     CollectionVehicles,
		Title:    "Vehicles",
		Singular: "Vehicle",
		Columns: []crud.Column[Vehicle]{
			{Header: "Plate", Value: func(v Vehicle) string { return v.Plate }, Filterable: true},
			{Header: "Vehicle", Value: func(v Vehicle) string { return strings.TrimSpace(v.Make + " " + v.Model) }, Filterable: true},
			{Header: "Year", Value: func(v Vehicle) string { return strconv.Itoa(v.Year) }},
			{Header: "VIN", Value: func(v Vehicle) string { return v.VIN }, Filterable: true},
			{Header: "Battery (kWh)", Value: func(v Vehicle) string { return strconv.FormatFloat(v.BatteryKWh, 'f', -1, 64) }},
		},
		Fields: []crud.Field[Vehicle]{
			crud.Text("customerId", "Customer ID", func(v Vehicle) string { return v.CustomerID }, func(r *Vehicle, v string) { r.CustomerID = v }).Mark(crud.KindText, true),
			crud.Text("vin", "VIN", func(v Vehicle) string { return v.VIN }, func(r *Vehicle, v string) { r.VIN = strings.ToUpper(v) }).Mark(crud.KindText, true),
			crud.Text("plate", "Plate", func(v Vehicle) string { return v.Plate }, func(r *Vehicle, v string) { r.Plate = strings.ToUpper(v) }).Mark(crud.KindText, true),
			crud.Text("make", "Make", func(v Vehicle) string { return v.Make }, func(r *Vehicle, v string) { r.Make = v }).Mark(crud.KindText, true),
			crud.Text("model", "Model", func(v Vehicle) string { return v.Model }, func(r *Vehicle, v string) { r.Model = v }).Mark(crud.KindText, true),
			crud.Int("year", "Year", func(v Vehicle) int { return v.Year }, func(r *Vehicle, v int) { r.Year = v }),
			crud.Float("batteryKwh", "Battery (kWh)", func(v Vehicle) float64 { return v.BatteryKWh }, func(r *Vehicle, v float64) { r.BatteryKWh = v }),
		},
		Access: crud.Access{
			View:   roles.Operators,
			Mutate: roles.Management,
			Delete: roles.AdminOnly,
		},
		New:      func() Vehicle { return Vehicle{Year: time.Now().Year()} },
		Describe: func(v Vehicle) string { return v.Plate },
	}
}

func PartsPage() *crud.Definition[Part] {
	return &crud.Definition[Part]{
		Name:     CollectionParts,
		Title:    "Inventory",
		Singular: "Part",
		Columns: []crud.Column[Part]{
			{Header: "SKU", Value: func(p Part) string { return p.SKU }, Filterable: true},
			{Header: "Name", Value: func(p Part) string { return p.Name }, Filterable: true},
			{Header: "Category", Value: func(p Part) string { return humanize(p.Category) }, Filterable: true},
			{Header: "In stock", Value: func(p Part) string {
				if p.LowStock() {
					return strconv.Itoa(p.Quantity) + " (low)"
				}
				return strconv.Itoa(p.Quantity)
			}},
			{Header: "Unit price", Value: func(p Part) string { return money(p.UnitPrice) }},
		},
		Fields: []crud.Field[Part]{
			crud.Text("sku", "SKU", func(p Part) string { return p.SKU }, func(p *Part, v string) { p.SKU = strings.ToUpper(v) }).Mark(crud.KindText, true),
			crud.Text("name", "Name", func(p Part) string { return p.Name }, func(p *Part, v string) { p.Name = v }).Mark(crud.KindText, true),
			crud.Select("category", "Category", PartCategories, func(p Part) string { return p.Category }, func(p *Part, v string) { p.Category = v }),
			crud.Int("quantity", "Quantity", func(p Part) int { return p.Quantity }, func(p *Part, v int) { p.Quantity = v }),
			crud.Int("reorderLevel", "Reorder level", func(p Part) int { return p.ReorderLevel }, func(p *Part, v int) { p.ReorderLevel = v }),
			crud.Float("unitPrice", "Unit price", func(p Part) float64 { return p.UnitPrice }, func(p *Part, v float64) { p.UnitPrice = v }),
		},
		Access: crud.Access{
			View:   roles.Operators,
			Mutate: roles.Management,
			Delete: roles.AdminOnly,
		},
		New:      func() Part { return Part{Category: "other"} },
		Describe: func(p Part) string { return p.SKU + " " + p.Name },
	}
}

func StaffPage() *crud.Definition[StaffMember] {
	return &crud.Definition[StaffMember]{
		Name:     CollectionStaff,
		Path:     "team",
		Title:    "Staff",
		Singular: "Staff member",
		Columns: []crud.Column[StaffMember]{
			{Header: "Name", Value: func(s StaffMember) string { return s.Name }, Filterable: true},
			{Header: "Email", Value: func(s StaffMember) string { return s.Email }, Filterable: true},
			{Header: "Role", Value: func(s StaffMember) string { return humanize(s.Role) }, Filterable: true},
			{Header: "Center", Value: func(s StaffMember) string { return s.CenterID }},
		},
		Fields: []crud.Field[StaffMember]{
			crud.Text("name", "Name", func(s StaffMember) string { return s.Name }, func(s *StaffMember, v string) { s.Name = v }).Mark(crud.KindText, true),
			crud.Text("email", "Email", func(s StaffMember) string { return s.Email }, func(s *StaffMember, v string) { s.Email = strings.ToLower(v) }).Mark(crud.KindEmail, true),
			crud.Select("role", "Role", StaffRoles, func(s StaffMember) string { return s.Role }, func(s *StaffMember, v string) { s.Role = v }),
			crud.Text("centerId", "Center ID", func(s StaffMember) string { return s.CenterID }, func(s *StaffMember, v string) { s.CenterID = v }),
			crud.Text("phone", "Phone", func(s StaffMember) string { return s.Phone }, func(s *StaffMember, v string) { s.Phone = v }),
		},
		Access: crud.Access{
			View:   roles.Management,
			Mutate: roles.AdminOnly,
			Delete: roles.AdminOnly,
		},
		New:      func() StaffMember { return StaffMember{Role: roles.Technician.String()} },
		Describe: func(s StaffMember) string { return s.Name },
	}
}

func ShiftsPage() *crud.Definition[Shift] {
	return &crud.Definition[Shift]{
		Name:     CollectionShifts,
		Title:    "Schedule",
		Singular: "Shift",
		Columns: []crud.Column[Shift]{
			{Header: "Staff", Value: func(s Shift) string { return s.StaffName }, Filterable: true},
			{Header: "Date", Value: func(s Shift) string { return s.Date }, Filterable: true},
			{Header: "Hours", Value: func(s Shift) string { return s.StartTime + " - " + s.EndTime }},
		},
		Fields: []crud.Field[Shift]{
			crud.Text("staffId", "Staff ID", func(s Shift) string { return s.StaffID }, func(s *Shift, v string) { s.StaffID = v }).Mark(crud.KindText, true),
			crud.Text("date", "Date", func(s Shift) string { return s.Date }, func(s *Shift, v string) { s.Date = v }).Mark(crud.KindDate, true),
			crud.Text("startTime", "Start", func(s Shift) string { return s.StartTime }, func(s *Shift, v string) { s.StartTime = v }).Mark(crud.KindTime, true),
			crud.Text("endTime", "End", func(s Shift) string { return s.EndTime }, func(s *Shift, v string) { s.EndTime = v }).Mark(crud.KindTime, true),
		},
		Access: crud.Access{
			View:   roles.Operators,
			Mutate: roles.Management,
			Delete: roles.Management,
		},
		Describe: func(s Shift) string { return fmt.Sprintf("shift for %s on %s", s.StaffName, s.Date) },
	}
}

func InvoicesPage() *crud.Definition[Invoice] {
	return &crud.Definition[Invoice]{
		Name:     CollectionInvoices,
		Title:    "Payments",
		Singular: "Invoice",
		Columns: []crud.Column[Invoice]{
			{Header: "Customer", Value: func(i Invoice) string { return i.CustomerName }, Filterable: true},
			{Header: "Appointment", Value: func(i Invoice) string { return i.AppointmentID }, Filterable: true},
			{Header: "Amount", Value: func(i Invoice) string { return money(i.Amount) }},
			{Header: "Status", Value: func(i Invoice) string { return humanize(i.Status) }, Filterable: true},
			{Header: "Method", Value: func(i Invoice) string { return humanize(i.Method) }},
			{Header: "Issued", Value: func(i Invoice) string { return when(i.IssuedAt) }},
		},
		Fields: []crud.Field[Invoice]{
			crud.Text("appointmentId", "Appointment ID", func(i Invoice) string { return i.AppointmentID }, func(i *Invoice, v string) { i.AppointmentID = v }).Mark(crud.KindText, true),
			crud.Text("customerName", "Customer", func(i Invoice) string { return i.CustomerName }, func(i *Invoice, v string) { i.CustomerName = v }).Mark(crud.KindText, true),
			crud.Float("amount", "Amount", func(i Invoice) float64 { return i.Amount }, func(i *Invoice, v float64) { i.Amount = v }),
			crud.Select("status", "Status", InvoiceStatuses, func(i Invoice) string { return i.Status }, func(i *Invoice, v string) { i.Status = v }),
			crud.Select("method", "Method", PaymentMethods, func(i Invoice) string { return i.Method }, func(i *Invoice, v string) { i.Method = v }),
		},
		Access: crud.Access{
			View:   roles.Management,
			Mutate: roles.Management,
			Delete: roles.AdminOnly,
		},
		New:      func() Invoice { return Invoice{Status: "draft"} },
		Describe: func(i Invoice) string { return fmt.Sprintf("invoice %s for %s", i.ID, i.CustomerName) },
	}
}

func CentersPage() *crud.Definition[ServiceCenter] {
	return &crud.Definition[ServiceCenter]{
		Name:     CollectionCenters,
		Title:    "Service centers",
		Singular: "Service center",
		Columns: []crud.Column[ServiceCenter]{
			{Header: "Name", Value: func(c ServiceCenter) string { return c.Name }, Filterable: true},
			{Header: "Address", Value: func(c ServiceCenter) string { return c.Address }, Filterable: true},
			{Header: "Phone", Value: func(c ServiceCenter) string { return c.Phone }},
			{Header: "Bays", Value: func(c ServiceCenter) string { return strconv.Itoa(c.Capacity) }},
		},
		Fields: []crud.Field[ServiceCenter]{
			crud.Text("name", "Name", func(c ServiceCenter) string { return c.Name }, func(c *ServiceCenter, v string) { c.Name = v }).Mark(crud.KindText, true),
			crud.Text("address", "Address", func(c ServiceCenter) string { return c.Address }, func(c *ServiceCenter, v string) { c.Address = v }).Mark(crud.KindTextArea, true),
			crud.Text("phone", "Phone", func(c ServiceCenter) string { return c.Phone }, func(c *ServiceCenter, v string) { c.Phone = v }),
			crud.Int("capacity", "Bays", func(c ServiceCenter) int { return c.Capacity }, func(c *ServiceCenter, v int) { c.Capacity = v }),
		},
		Access: crud.Access{
			View:   roles.AdminOnly,
			Mutate: roles.AdminOnly,
			Delete: roles.AdminOnly,
		},
		New:      func() ServiceCenter { return ServiceCenter{Capacity: 4} },
		Describe: func(c ServiceCenter) string { return c.Name },
	}
}
