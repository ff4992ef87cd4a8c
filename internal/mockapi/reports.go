package mockapi

import (
	"net/http"
	"time"

	"github.com/jrsteele09/evcenter-admin/resources"
)

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := now.Format("2006-01-02")
	month := now.Format("2006-01")

	var out struct {
		AppointmentsToday   int     `json:"appointmentsToday"`
		OpenAppointments    int     `json:"openAppointments"`
		CompletedThisMonth  int     `json:"completedThisMonth"`
		RevenueThisMonth    float64 `json:"revenueThisMonth"`
		OutstandingInvoices int     `json:"outstandingInvoices"`
		LowStockParts       int     `json:"lowStockParts"`
		ActiveTechnicians   int     `json:"activeTechnicians"`
	}

	for _, a := range s.collections[resources.CollectionAppointments] {
		status := str(a, "status")
		at, _ := time.Parse(time.RFC3339, str(a, "scheduledAt"))
		if !at.IsZero() && at.Format("2006-01-02") == today {
			out.AppointmentsToday++
		}
		switch status {
		case "scheduled", "in_progress":
			out.OpenAppointments++
		case "completed":
			if !at.IsZero() && at.Format("2006-01") == month {
				out.CompletedThisMonth++
			}
		}
	}
	for _, inv := range s.collections[resources.CollectionInvoices] {
		switch str(inv, "status") {
		case "paid":
			issued, _ := time.Parse(time.RFC3339, str(inv, "issuedAt"))
			if issued.Format("2006-01") == month {
				out.RevenueThisMonth += num(inv, "amount")
			}
		case "issued":
			out.OutstandingInvoices++
		}
	}
	for _, p := range s.collections[resources.CollectionParts] {
		if num(p, "quantity") <= num(p, "reorderLevel") {
			out.LowStockParts++
		}
	}
	for _, m := range s.collections[resources.CollectionStaff] {
		if str(m, "role") == "technician" {
			out.ActiveTechnicians++
		}
	}

	writeData(w, http.StatusOK, out)
}

func str(r Record, key string) string {
	v, _ := r[key].(string)
	return v
}

func num(r Record, key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
