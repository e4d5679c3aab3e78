package service

import (
	"context"
	"fmt"

	"arrentals-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("email provider returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, email, name, reference, vehicleName string, total int64) error {
	subject := fmt.Sprintf("Booking received - %s", reference)
	body := fmt.Sprintf("Hello %s,\n\nWe received your booking for %s.\n\nBooking reference: %s\nAmount due: PHP %d\n\nWe will confirm your booking shortly. You can track it any time using your reference.\n\nAR Car Rentals", name, vehicleName, reference, total)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendBookingStatusNotification(ctx context.Context, email, name, reference string, status domain.BookingStatus, reason string) error {
	subject := fmt.Sprintf("Booking %s update", reference)
	body := fmt.Sprintf("Hello %s,\n\nYour booking %s is now: %s.", name, reference, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nAR Car Rentals"
	return s.send(email, name, subject, body)
}

func (s *emailService) SendLeadFollowUp(ctx context.Context, email, name, vehicleName, pickupDate string) error {
	subject := "Your rental is waiting"
	greeting := name
	if greeting == "" {
		greeting = "there"
	}
	body := fmt.Sprintf("Hello %s,\n\nYou were a few steps away from booking %s", greeting, vehicleName)
	if pickupDate != "" {
		body += fmt.Sprintf(" for pickup on %s", pickupDate)
	}
	body += ".\n\nYour quote is still available - come back and finish your booking in under a minute.\n\nAR Car Rentals"
	return s.send(email, greeting, subject, body)
}
