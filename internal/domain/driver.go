package domain

import "fmt"

// Driver request statuses with a dedicated message.
const (
	DriverStatusApproved  = "approved"
	DriverStatusRejected  = "rejected"
	DriverStatusPending   = "pending"
	DriverStatusSuspended = "suspended"
)

// DriversRoute is the admin dashboard route for driver requests.
const DriversRoute = "/drivers"

// DriverRequest is a driver's registration request document.
type DriverRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

// name is "first last" when both are present, else the email, else fallback.
func (d *DriverRequest) name(fallback string) string {
	if d.FirstName != "" && d.LastName != "" {
		return d.FirstName + " " + d.LastName
	}
	if d.Email != "" {
		return d.Email
	}
	return fallback
}

// NewDriverRequestNotification announces a new driver registration.
func NewDriverRequestNotification(d *DriverRequest) AdminNotification {
	name := d.name("سائق جديد")
	nameEn := d.name("New driver")
	return AdminNotification{
		Type:      NotificationTypeDriver,
		Title:     "سائق جديد",
		TitleEn:   "New driver",
		Message:   fmt.Sprintf("السائق %s قدم طلب تسجيل جديد", name),
		MessageEn: fmt.Sprintf("Driver %s submitted a new registration request", nameEn),
		ActionURL: DriversRoute,
		Data: map[string]string{
			"driverId":   d.ID,
			"driverName": name,
			"email":      d.Email,
		},
		Priority:  PriorityHigh,
		RelatedID: d.ID,
	}
}

// DriverStatusChanged reports whether an update changed the request status.
func DriverStatusChanged(c Change[DriverRequest]) bool {
	if c.Before == nil || c.After == nil {
		return false
	}
	return c.Before.Status != c.After.Status
}

// NewDriverStatusNotification announces a driver request status change.
// Rejections are high priority.
func NewDriverStatusNotification(d *DriverRequest) AdminNotification {
	name := d.name("سائق")
	nameEn := d.name("driver")

	var msg, msgEn string
	switch d.Status {
	case DriverStatusApproved:
		msg = fmt.Sprintf("تم الموافقة على السائق %s", name)
		msgEn = fmt.Sprintf("Driver %s was approved", nameEn)
	case DriverStatusRejected:
		msg = fmt.Sprintf("تم رفض طلب السائق %s", name)
		msgEn = fmt.Sprintf("Driver %s request was rejected", nameEn)
	case DriverStatusPending:
		msg = fmt.Sprintf("طلب السائق %s قيد المراجعة", name)
		msgEn = fmt.Sprintf("Driver %s request is under review", nameEn)
	case DriverStatusSuspended:
		msg = fmt.Sprintf("تم إيقاف السائق %s", name)
		msgEn = fmt.Sprintf("Driver %s was suspended", nameEn)
	default:
		msg = fmt.Sprintf("تحديث حالة السائق %s: %s", name, d.Status)
		msgEn = fmt.Sprintf("Driver %s status update: %s", nameEn, d.Status)
	}

	priority := PriorityMedium
	if d.Status == DriverStatusRejected {
		priority = PriorityHigh
	}

	return AdminNotification{
		Type:      NotificationTypeDriver,
		Title:     "تحديث حالة سائق",
		TitleEn:   "Driver status update",
		Message:   msg,
		MessageEn: msgEn,
		ActionURL: DriversRoute,
		Data: map[string]string{
			"driverId":   d.ID,
			"driverName": name,
			"status":     d.Status,
			"email":      d.Email,
		},
		Priority:  priority,
		RelatedID: d.ID,
	}
}
