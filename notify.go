package main

import (
	"context"
	"fmt"

	"wasteops/libs/mailer"
)

func (a *App) backendFetchComplaints(ctx context.Context) ([]Complaint, error) {
	return a.registry.Complaints.List(ctx)
}

func (a *App) backendFetchStaff(ctx context.Context) ([]StaffMember, error) {
	return a.registry.Staff.List(ctx)
}

func (a *App) backendFetchWasteCollection(ctx context.Context) ([]WasteCollection, error) {
	return a.registry.WasteCollections.List(ctx)
}

func (a *App) backendEscalateComplaint(ctx context.Context, id string) (*Complaint, error) {
	complaint, err := a.registry.Complaints.Patch(ctx, id, map[string]any{"status": "escalated"})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// sendEscalationNotice informs ward operations that a grievance was bumped.
func (a *App) sendEscalationNotice(complaint Complaint) error {
	ward := complaint.WardName
	if ward == "" {
		ward = "unassigned ward"
	}
	subject := fmt.Sprintf("Grievance escalated: %s", complaint.Subject)
	text := fmt.Sprintf(
		"Grievance %s (%s) was escalated.\n\nSubject: %s\nWard: %s\nCitizen: %s\n\n%s\n",
		complaint.Ref(), complaint.Status, complaint.Subject, ward, complaint.CitizenName, complaint.Details,
	)

	delivery, err := a.mailer.Send(mailer.Notice{
		To:      []string{a.cfg.EscalationEmailTo},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return err
	}
	a.log.Info("escalation notice sent",
		"complaint", complaint.Ref(),
		"provider", a.mailer.ProviderName(),
		"message_id", delivery.ProviderMessageID,
	)
	return nil
}
