package exports

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/slotbook/backend/internal/models"
)

var header = []string{"reservation_id", "status", "user_id", "email", "full_name", "booked_at"}

// WriteAttendees writes one CSV row per reservation.
func WriteAttendees(w io.Writer, list []models.ReservationDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range list {
		var email, name string
		if d.Customer != nil {
			email = deref(d.Customer.Email)
			name = deref(d.Customer.FullName)
		}
		row := []string{
			d.ID.String(),
			string(d.Status),
			d.UserID.String(),
			email,
			name,
			d.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
