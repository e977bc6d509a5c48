package notify

import "fmt"

// VisitDetails is what every booking message needs to render.
type VisitDetails struct {
	PatientName  string
	Phone        string
	Date         string // "2024-01-10"
	Time         string // "09:00"
	Professional string
}

func ConfirmationMessage(v VisitDetails) string {
	return fmt.Sprintf(
		"*Appointment Confirmed*\n\n"+
			"Hi %s,\n\n"+
			"Your appointment has been confirmed:\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Professional: %s\n\n"+
			"Please arrive 10 minutes early.\nThank you.",
		v.PatientName, v.Date, v.Time, v.Professional,
	)
}

func ReminderMessage(v VisitDetails) string {
	return fmt.Sprintf(
		"*Appointment Reminder*\n\n"+
			"Hi %s,\n\n"+
			"A reminder of your appointment:\n"+
			"Today at %s\n"+
			"Professional: %s\n\n"+
			"See you there!",
		v.PatientName, v.Time, v.Professional,
	)
}

func RescheduleMessage(v VisitDetails) string {
	return fmt.Sprintf(
		"*Appointment Rescheduled*\n\n"+
			"Hi %s,\n\n"+
			"Your appointment has been moved:\n"+
			"New date: %s\n"+
			"New time: %s\n"+
			"Professional: %s\n\n"+
			"Please confirm the new time works for you.",
		v.PatientName, v.Date, v.Time, v.Professional,
	)
}

func CancellationMessage(v VisitDetails, reason string) string {
	msg := fmt.Sprintf(
		"*Appointment Cancelled*\n\n"+
			"Hi %s,\n\n"+
			"Unfortunately your appointment has been cancelled:\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Professional: %s\n\n",
		v.PatientName, v.Date, v.Time, v.Professional,
	)
	if reason != "" {
		msg += fmt.Sprintf("Reason: %s\n\n", reason)
	}
	msg += "Please contact us to rebook. Sorry for the inconvenience."
	return msg
}
