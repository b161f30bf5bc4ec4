package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/writemytrip/ownerdesk/internal/platform/db"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db dbtx
}

// NewPGStore constructs a PGStore over the pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

const propertyColumns = `id, owner_id, name, COALESCE(city, ''), COALESCE(state, ''), COALESCE(property_type, ''),
	COALESCE(status, 'pending_approval'), COALESCE(rating, 0)::float8, COALESCE(price, 0), COALESCE(original_price, 0), created_at`

// BookingColumns is the select list matching ScanBooking.
const BookingColumns = `b.id, b.guest_id, b.room_type_id, b.check_in_date, COALESCE(b.check_in_time::text, ''),
	b.check_out_date, COALESCE(b.check_out_time::text, ''), COALESCE(b.adults, 0), COALESCE(b.children, 0),
	COALESCE(b.rooms_booked, 1), b.status, COALESCE(b.payment_status, 'pending'), COALESCE(b.total_amount, 0),
	b.advance_amount, COALESCE(b.special_requests, ''), COALESCE(b.guest_name, ''), b.created_at`

// GuestColumns is the select list matching ScanGuest.
const GuestColumns = `id, owner_id, name, email, COALESCE(phone, ''), COALESCE(nationality, ''), COALESCE(id_type, ''),
	COALESCE(id_number, ''), COALESCE(address, ''), COALESCE(emergency_contact, ''), COALESCE(emergency_phone, ''),
	COALESCE(special_requests, ''), COALESCE(status, 'new'), COALESCE(notes, ''), created_at`

// ManualEntryColumns is the select list matching ScanManualEntry.
const ManualEntryColumns = `id, user_id, title, description, amount, type, category, date, created_at`

// ScanProperty reads one row selected with the property columns.
func ScanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.City, &p.State, &p.PropertyType,
		&p.Status, &p.Rating, &p.Price, &p.OriginalPrice, &p.CreatedAt)
	return p, err
}

// ScanBooking reads one row selected with BookingColumns.
func ScanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.GuestID, &b.RoomTypeID, &b.CheckInDate, &b.CheckInTime,
		&b.CheckOutDate, &b.CheckOutTime, &b.Adults, &b.Children,
		&b.RoomsBooked, &b.Status, &b.PaymentStatus, &b.TotalAmount,
		&b.AdvanceAmount, &b.SpecialRequests, &b.GuestName, &b.CreatedAt)
	return b, err
}

// ScanGuest reads one row selected with GuestColumns.
func ScanGuest(row pgx.Row) (Guest, error) {
	var g Guest
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Email, &g.Phone, &g.Nationality, &g.IDType,
		&g.IDNumber, &g.Address, &g.EmergencyContact, &g.EmergencyPhone,
		&g.SpecialRequests, &g.Status, &g.Notes, &g.CreatedAt)
	return g, err
}

// ScanManualEntry reads one row selected with ManualEntryColumns.
func ScanManualEntry(row pgx.Row) (ManualEntry, error) {
	var e ManualEntry
	err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.Amount, &e.Type, &e.Category, &e.Date, &e.CreatedAt)
	return e, err
}

// PropertiesByOwner lists the owner's properties.
func (s *PGStore) PropertiesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error) {
	rows, err := s.db.Query(ctx, `SELECT `+propertyColumns+` FROM hotels WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, ScanProperty)
}

// RoomTypesByProperties lists the room types of the properties.
func (s *PGStore) RoomTypesByProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]RoomType, error) {
	if len(propertyIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, property_id, COALESCE(name, ''), COALESCE(base_rate, 0), COALESCE(total_rooms, 0)
		FROM room_types
		WHERE property_id = ANY($1)
		ORDER BY name`, propertyIDs)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, func(row pgx.Row) (RoomType, error) {
		var rt RoomType
		err := row.Scan(&rt.ID, &rt.PropertyID, &rt.Name, &rt.BaseRate, &rt.TotalRooms)
		return rt, err
	})
}

// BookingsByRoomTypes lists bookings of the room types, newest first.
func (s *PGStore) BookingsByRoomTypes(ctx context.Context, roomTypeIDs []uuid.UUID, createdFrom time.Time) ([]Booking, error) {
	if len(roomTypeIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + BookingColumns + ` FROM bookings b WHERE b.room_type_id = ANY($1)`
	args := []interface{}{roomTypeIDs}
	if !createdFrom.IsZero() {
		query += ` AND b.created_at >= $2`
		args = append(args, createdFrom)
	}
	query += ` ORDER BY b.created_at DESC`
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, ScanBooking)
}

// GuestsByIDs loads guests by id.
func (s *PGStore) GuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]Guest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+GuestColumns+` FROM guests WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, ScanGuest)
}

// StatusHistory loads the status changes of the bookings.
func (s *PGStore) StatusHistory(ctx context.Context, bookingIDs []uuid.UUID) ([]StatusChange, error) {
	if len(bookingIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, status, changed_by, COALESCE(notes, ''), created_at
		FROM booking_status
		WHERE booking_id = ANY($1)
		ORDER BY created_at DESC, id DESC`, bookingIDs)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, ScanStatusChange)
}

// ScanStatusChange reads one booking_status row.
func ScanStatusChange(row pgx.Row) (StatusChange, error) {
	var c StatusChange
	err := row.Scan(&c.ID, &c.BookingID, &c.Status, &c.ChangedBy, &c.Notes, &c.CreatedAt)
	return c, err
}

// RefundRequests loads refund requests of the bookings.
func (s *PGStore) RefundRequests(ctx context.Context, bookingIDs []uuid.UUID) ([]RefundRequest, error) {
	if len(bookingIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, status, COALESCE(amount_requested_to_refund, 0)
		FROM refund_requests
		WHERE booking_id = ANY($1)`, bookingIDs)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, func(row pgx.Row) (RefundRequest, error) {
		var r RefundRequest
		err := row.Scan(&r.ID, &r.BookingID, &r.Status, &r.AmountRequested)
		return r, err
	})
}

// ManualEntries lists the owner's entries dated on or after from.
func (s *PGStore) ManualEntries(ctx context.Context, ownerID uuid.UUID, from time.Time) ([]ManualEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+ManualEntryColumns+`
		FROM manual_finances
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC, created_at DESC`, ownerID, from)
	if err != nil {
		return nil, err
	}
	return db.Collect(rows, ScanManualEntry)
}

// Branding loads the owner's business name and logo.
func (s *PGStore) Branding(ctx context.Context, ownerID uuid.UUID) (Branding, error) {
	var b Branding
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(business_name, ''), COALESCE(logo_url, '')
		FROM hotel_owners WHERE id = $1`, ownerID).Scan(&b.BusinessName, &b.LogoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branding{}, nil
	}
	return b, err
}

var _ Store = (*PGStore)(nil)
