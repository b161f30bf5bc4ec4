// Package reporting turns an owner's raw booking rows into dashboard and
// finance reports. Rows are fetched per owner scope, stitched with their
// relations, bucketed by calendar month and reduced to display metrics.
package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked-in"
	StatusCheckedOut BookingStatus = "checked-out"
	StatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks how much of a booking has been paid.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentPartial    PaymentStatus = "partial"
	PaymentPaid       PaymentStatus = "paid"
	PaymentPayAtHotel PaymentStatus = "pay-at-hotel"
)

// GuestStatus classifies a guest in the CRM.
type GuestStatus string

const (
	GuestNew     GuestStatus = "new"
	GuestRegular GuestStatus = "regular"
	GuestVIP     GuestStatus = "vip"
)

// Valid reports whether s is a known guest status.
func (s GuestStatus) Valid() bool {
	return s == GuestNew || s == GuestRegular || s == GuestVIP
}

// PropertyStatus is the listing state of a property.
type PropertyStatus string

const (
	PropertyActive          PropertyStatus = "active"
	PropertyInactive        PropertyStatus = "inactive"
	PropertySuspended       PropertyStatus = "suspended"
	PropertyPendingApproval PropertyStatus = "pending_approval"
)

// Valid reports whether s is a known property status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyActive, PropertyInactive, PropertySuspended, PropertyPendingApproval:
		return true
	}
	return false
}

// EntryType separates manual income from manual expenses.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// Booking is a reservation row as stored.
type Booking struct {
	ID              uuid.UUID           `json:"id"`
	GuestID         *uuid.UUID          `json:"guest_id,omitempty"`
	RoomTypeID      uuid.UUID           `json:"room_type_id"`
	CheckInDate     time.Time           `json:"check_in_date"`
	CheckInTime     string              `json:"check_in_time,omitempty"`
	CheckOutDate    time.Time           `json:"check_out_date"`
	CheckOutTime    string              `json:"check_out_time,omitempty"`
	Adults          int                 `json:"adults"`
	Children        int                 `json:"children"`
	RoomsBooked     int                 `json:"rooms_booked"`
	Status          BookingStatus       `json:"status"`
	PaymentStatus   PaymentStatus       `json:"payment_status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	AdvanceAmount   decimal.NullDecimal `json:"advance_amount"`
	SpecialRequests string              `json:"special_requests,omitempty"`
	GuestName       string              `json:"guest_name,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// StatusChange is an append-only entry in a booking's status history. IDs
// are monotonic so they order changes that share a timestamp.
type StatusChange struct {
	ID        int64         `json:"id"`
	BookingID uuid.UUID     `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	ChangedBy *uuid.UUID    `json:"changed_by,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Guest is a CRM record.
type Guest struct {
	ID               uuid.UUID   `json:"id"`
	OwnerID          *uuid.UUID  `json:"owner_id,omitempty"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	Nationality      string      `json:"nationality,omitempty"`
	IDType           string      `json:"id_type,omitempty"`
	IDNumber         string      `json:"id_number,omitempty"`
	Address          string      `json:"address,omitempty"`
	EmergencyContact string      `json:"emergency_contact,omitempty"`
	EmergencyPhone   string      `json:"emergency_phone,omitempty"`
	SpecialRequests  string      `json:"special_requests,omitempty"`
	Status           GuestStatus `json:"status"`
	Notes            string      `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Property is a hotel or other listing owned by an owner.
type Property struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Name          string          `json:"name"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	PropertyType  string          `json:"property_type"`
	Status        PropertyStatus  `json:"status"`
	Rating        float64         `json:"rating"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RoomType is a sellable room category of a property.
type RoomType struct {
	ID         uuid.UUID       `json:"id"`
	PropertyID uuid.UUID       `json:"property_id"`
	Name       string          `json:"name"`
	BaseRate   decimal.Decimal `json:"base_rate"`
	TotalRooms int             `json:"total_rooms"`
}

// RefundRequest is a guest's request to refund part of a booking.
type RefundRequest struct {
	ID              uuid.UUID       `json:"id"`
	BookingID       uuid.UUID       `json:"booking_id"`
	Status          string          `json:"status"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
}

// ManualEntry is an owner-entered income or expense line. Expense amounts
// may be stored with either sign.
type ManualEntry struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        EntryType       `json:"type"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Branding is the owner's business identity shown on the dashboard.
type Branding struct {
	BusinessName string `json:"business_name"`
	LogoURL      string `json:"logo_url,omitempty"`
}

// DefaultBusinessName is shown when the owner has not set a business name.
const DefaultBusinessName = "WriteMyTrip"

// DisplayName returns the business name or the product default.
func (b Branding) DisplayName() string {
	if b.BusinessName == "" {
		return DefaultBusinessName
	}
	return b.BusinessName
}
