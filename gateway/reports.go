package gateway

import (
	"context"
	"net/http"
)

// ReportSummary is the backend's aggregate for the reporting page.
type ReportSummary struct {
	AppointmentsToday   int     `json:"appointmentsToday"`
	OpenAppointments    int     `json:"openAppointments"`
	CompletedThisMonth  int     `json:"completedThisMonth"`
	RevenueThisMonth    float64 `json:"revenueThisMonth"`
	OutstandingInvoices int     `json:"outstandingInvoices"`
	LowStockParts       int     `json:"lowStockParts"`
	ActiveTechnicians   int     `json:"activeTechnicians"`
}

type Reports struct {
	conn *Conn
}

func (c *Conn) Reports() *Reports {
	return &Reports{conn: c}
}

func (r *Reports) Summary(ctx context.Context) (ReportSummary, error) {
	var out ReportSummary
	err := r.conn.do(ctx, operation{"reports", "summary"}, http.MethodGet, "/reports/summary", nil, nil, &out)
	return out, err
}
