package notify

import (
	"context"
	"log"
	"time"
)

// Dispatcher sends booking messages without blocking the caller. A nil
// *Dispatcher is valid and drops everything, which is how deployments
// without a WHATSAPP_API_URL run.
type Dispatcher struct {
	client *Client
}

func NewDispatcher(apiURL string) *Dispatcher {
	if apiURL == "" {
		return nil
	}
	return &Dispatcher{client: NewClient(apiURL)}
}

func (d *Dispatcher) VisitBooked(v VisitDetails) {
	d.fire("booked", v.Phone, ConfirmationMessage(v))
}

func (d *Dispatcher) VisitRescheduled(v VisitDetails) {
	d.fire("rescheduled", v.Phone, RescheduleMessage(v))
}

func (d *Dispatcher) VisitCancelled(v VisitDetails, reason string) {
	d.fire("cancelled", v.Phone, CancellationMessage(v, reason))
}

func (d *Dispatcher) fire(event, phone, message string) {
	if d == nil || phone == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := d.client.Send(ctx, phone, message); err != nil {
			log.Printf("whatsapp %s notification failed: %v", event, err)
		}
	}()
}
