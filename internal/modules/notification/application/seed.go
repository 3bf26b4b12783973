package application

import (
	"time"

	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedNotifications returns the demo records a fresh store starts with.
// Records 7 and 8 come from the patient dashboard and are dated relative to
// now.
func SeedNotifications(now time.Time) []domain.Notification {
	inApp := func() domain.Channels { return domain.Channels{domain.ChannelInApp} }
	return []domain.Notification{
		{
			ID:        "1",
			Title:     "Pre-Procedure Reminder",
			Message:   "Remember to fast for 12 hours before tomorrow's Abhyanga session at 10:00 AM. Avoid heavy meals and caffeine.",
			Type:      domain.NotificationTypeReminder,
			Category:  domain.CategoryAppointment,
			CreatedAt: mustTime("2024-01-19T18:00:00Z"),
			Channels:  inApp(),
		},
		{
			ID:        "2",
			Title:     "Session Feedback Required",
			Message:   "Please provide feedback for your Shirodhara session completed yesterday. Your input helps us improve your treatment plan.",
			Type:      domain.NotificationTypeInfo,
			Category:  domain.CategoryTherapy,
			CreatedAt: mustTime("2024-01-19T14:30:00Z"),
			Channels:  inApp(),
		},
		{
			ID:        "3",
			Title:     "Appointment Confirmed",
			Message:   "Your Panchakarma consultation with Dr. Ayush Sharma has been confirmed for January 22, 2024 at 2:00 PM.",
			Type:      domain.NotificationTypeSuccess,
			Category:  domain.CategoryAppointment,
			Read:      true,
			CreatedAt: mustTime("2024-01-19T10:15:00Z"),
			Channels:  domain.Channels{domain.ChannelInApp, domain.ChannelEmail},
		},
		{
			ID:        "4",
			Title:     "Hydration Reminder",
			Message:   "Don't forget to drink plenty of water throughout the day. Aim for at least 8-10 glasses to support your detox process.",
			Type:      domain.NotificationTypeReminder,
			Category:  domain.CategoryTherapy,
			Read:      true,
			CreatedAt: mustTime("2024-01-19T09:00:00Z"),
			Channels:  inApp(),
		},
		{
			ID:        "5",
			Title:     "Important: Side Effects Reported",
			Message:   "We noticed you reported mild nausea after your last session. Our team will contact you within 24 hours to discuss this.",
			Type:      domain.NotificationTypeAlert,
			Category:  domain.CategoryTherapy,
			CreatedAt: mustTime("2024-01-18T16:45:00Z"),
			Channels:  domain.Channels{domain.ChannelInApp, domain.ChannelSMS},
		},
		{
			ID:        "6",
			Title:     "Weekly Progress Report Ready",
			Message:   "Your wellness progress report for this week is now available. Review your improvements and upcoming recommendations.",
			Type:      domain.NotificationTypeInfo,
			Category:  domain.CategorySystem,
			Read:      true,
			CreatedAt: mustTime("2024-01-18T08:00:00Z"),
			Channels:  inApp(),
		},
		{
			ID:        "7",
			Title:     "Fasting Reminder",
			Message:   "Remember to fast for 12 hours before tomorrow's Abhyanga session",
			Type:      domain.NotificationTypeReminder,
			Category:  domain.CategoryAppointment,
			CreatedAt: now.Add(-2 * time.Hour),
			Channels:  inApp(),
		},
		{
			ID:        "8",
			Title:     "Wellness Report",
			Message:   "Your wellness report for this week is ready",
			Type:      domain.NotificationTypeInfo,
			Category:  domain.CategorySystem,
			CreatedAt: now.Add(-24 * time.Hour),
			Channels:  inApp(),
		},
	}
}

// DemoArrival is the message used when an arrival is simulated without a
// body.
func DemoArrival() CreateInput {
	return CreateInput{
		Title:    "New Message from Dr. Sharma",
		Message:  "Dr. Ayush Sharma has shared your updated diet plan for the Virechana phase.",
		Type:     string(domain.NotificationTypeInfo),
		Category: string(domain.CategoryTherapy),
	}
}
