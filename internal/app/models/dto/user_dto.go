package dto

import "github.com/yigit/dancestudio/internal/app/models"

// SubscriptionBalance is a subscription with its remaining credits resolved for display
type SubscriptionBalance struct {
	models.Subscription
	Unlimited bool `json:"unlimited"`
}

// ProfileResponse is the member's own profile page
type ProfileResponse struct {
	Profile          *models.Profile       `json:"profile"`
	Subscriptions    []SubscriptionBalance `json:"subscriptions"`
	UpcomingBookings []models.Booking      `json:"upcomingBookings"`
}

// UserListResponse is a page of profiles for the admin console
type UserListResponse struct {
	Users      []models.Profile `json:"users"`
	Pagination PaginationInfo   `json:"pagination"`
}

// TodaysCourseResponse carries the lenient read of today's course
type TodaysCourseResponse struct {
	Course *models.Course `json:"course"`
	Status string         `json:"status"`
}

// BookingStatusResponse carries the lenient booking existence check
type BookingStatusResponse struct {
	HasBooking bool   `json:"hasBooking"`
	Status     string `json:"status"`
}
