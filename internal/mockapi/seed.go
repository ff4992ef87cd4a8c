package mockapi

import (
	"fmt"
	"time"

	"github.com/jrsteele09/evcenter-admin/resources"
)

// DemoUser is a seeded account with a known password.
type DemoUser struct {
	Name     string
	Email    string
	Password string
	Role     string
	CenterID string
}

var DemoUsers = []DemoUser{
	{Name: "Ada Admin", Email: "admin@evcenter.test", Password: "admin-pass", Role: "admin", CenterID: "center-1"},
	{Name: "Sam Staff", Email: "staff@evcenter.test", Password: "staff-pass", Role: "staff", CenterID: "center-1"},
	{Name: "Tess Technician", Email: "tech@evcenter.test", Password: "tech-pass", Role: "technician", CenterID: "center-1"},
	{Name: "Cal Customer", Email: "customer@evcenter.test", Password: "customer-pass", Role: "customer"},
}

// SeedDemo fills the mock with demo accounts and a plausible set of records.
func (s *Server) SeedDemo() error {
	for _, u := range DemoUsers {
		if err := s.AddUser(u.Name, u.Email, u.Password, u.Role, u.CenterID); err != nil {
			return err
		}
	}

	now := s.now().UTC().Truncate(time.Hour)
	customers := []string{"Jordan Lee", "Priya Nair", "Marek Nowak", "Aiko Tanaka", "Lucas Silva", "Fatima Zahra"}
	plates := []string{"EV01 ABC", "EV02 DEF", "EV03 GHI", "EV04 JKL", "EV05 MNO", "EV06 PQR"}

	s.Seed(resources.CollectionCenters,
		Record{"id": "center-1", "name": "Harbour Road", "address": "12 Harbour Road", "phone": "+441234567890", "capacity": 6},
		Record{"id": "center-2", "name": "Northgate", "address": "4 Northgate Park", "phone": "+441234567891", "capacity": 4},
	)
	for i, name := range customers {
		s.Seed(resources.CollectionCustomers, Record{
			"id":    fmt.Sprintf("cust-%d", i+1),
			"name":  name,
			"email": fmt.Sprintf("customer%d@example.com", i+1),
			"phone": fmt.Sprintf("+4477000000%02d", i+1),
		})
		s.Seed(resources.CollectionVehicles, Record{
			"id":         fmt.Sprintf("veh-%d", i+1),
			"customerId": fmt.Sprintf("cust-%d", i+1),
			"vin":        fmt.Sprintf("5YJ3E1EA7KF3%05d", i+1),
			"plate":      plates[i],
			"make":       "Volt",
			"model":      []string{"Ion", "Arc", "Spark"}[i%3],
			"year":       2019 + i%5,
			"batteryKwh": 58 + float64(i*7),
		})
	}
	for i := 0; i < 25; i++ {
		status := resources.AppointmentStatuses[i%len(resources.AppointmentStatuses)]
		s.Seed(resources.CollectionAppointments, Record{
			"id":           fmt.Sprintf("appt-%02d", i+1),
			"customerName": customers[i%len(customers)],
			"vehiclePlate": plates[i%len(plates)],
			"serviceType":  resources.ServiceTypes[i%len(resources.ServiceTypes)],
			"scheduledAt":  now.Add(time.Duration(i-10) * 6 * time.Hour).Format(time.RFC3339),
			"status":       status,
			"centerId":     "center-1",
		})
	}
	parts := []struct {
		sku, name, category string
		qty, reorder        int
		price               float64
	}{
		{"BAT-MOD-01", "Battery module", "battery", 3, 2, 1890},
		{"CHG-CBL-T2", "Type 2 charging cable", "charging", 14, 5, 189.5},
		{"BRK-PAD-F", "Front brake pads", "brakes", 2, 6, 74.9},
		{"TYR-235-45", "Tyre 235/45 R18", "tires", 20, 8, 143},
		{"ECU-INV-02", "Inverter control board", "electronics", 1, 1, 960},
		{"CAB-FLT-01", "Cabin air filter", "cabin", 30, 10, 18.25},
	}
	for _, p := range parts {
		s.Seed(resources.CollectionParts, Record{
			"sku": p.sku, "name": p.name, "category": p.category,
			"quantity": p.qty, "reorderLevel": p.reorder, "unitPrice": p.price, "centerId": "center-1",
		})
	}
	staff := []struct{ id, name, email, role string }{
		{"staff-1", "Ada Admin", "admin@evcenter.test", "admin"},
		{"staff-2", "Sam Staff", "staff@evcenter.test", "staff"},
		{"staff-3", "Tess Technician", "tech@evcenter.test", "technician"},
		{"staff-4", "Ravi Patel", "ravi@evcenter.test", "technician"},
	}
	for i, m := range staff {
		s.Seed(resources.CollectionStaff, Record{"id": m.id, "name": m.name, "email": m.email, "role": m.role, "centerId": "center-1"})
		s.Seed(resources.CollectionShifts, Record{
			"staffId": m.id, "staffName": m.name,
			"date":      now.AddDate(0, 0, i).Format("2006-01-02"),
			"startTime": "08:00", "endTime": "16:30", "centerId": "center-1",
		})
	}
	for i := 0; i < 8; i++ {
		s.Seed(resources.CollectionInvoices, Record{
			"appointmentId": fmt.Sprintf("appt-%02d", i+1),
			"customerName":  customers[i%len(customers)],
			"amount":        120 + float64(i*35),
			"status":        resources.InvoiceStatuses[i%len(resources.InvoiceStatuses)],
			"method":        []string{"card", "cash", "transfer"}[i%3],
			"issuedAt":      now.AddDate(0, 0, -i).Format(time.RFC3339),
		})
	}
	return nil
}
