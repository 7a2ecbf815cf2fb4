package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CourtStatus string

const (
	CourtAvailable   CourtStatus = "Available"
	CourtDisabled    CourtStatus = "Disabled"
	CourtMaintenance CourtStatus = "Maintenance"
)

func (s CourtStatus) Valid() bool {
	return s == CourtAvailable || s == CourtDisabled || s == CourtMaintenance
}

type CourtType string

const (
	CourtIndoor  CourtType = "Indoor"
	CourtOutdoor CourtType = "Outdoor"
)

type Surface string

const (
	SurfaceSynthetic Surface = "Synthetic"
	SurfaceClay      Surface = "Clay"
	SurfaceGrass     Surface = "Grass"
	SurfaceConcrete  Surface = "Concrete"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// OperatingHours is keyed by lower-case weekday name ("monday").
type OperatingHours map[string]DayHours

const (
	DefaultOpen  = "06:00"
	DefaultClose = "23:00"
)

// On returns the open/close minutes for the weekday. ok is false when
// the court did not declare hours for that day.
func (h OperatingHours) On(wd time.Weekday) (openMin, closeMin int, closed, ok bool) {
	d, found := h[strings.ToLower(wd.String())]
	if !found {
		return 0, 0, false, false
	}
	if d.Closed {
		return 0, 0, true, true
	}

	o, err := ParseClock(d.Open)
	if err != nil {
		return 0, 0, false, false
	}
	c, err := ParseClock(d.Close)
	if err != nil {
		return 0, 0, false, false
	}
	if d.Close == "00:00" {
		c = MinutesPerDay
	}

	return o, c, false, true
}

type Court struct {
	ID             int64          `json:"id"`
	OwnerID        int64          `json:"owner_id"`
	Name           string         `json:"name"`
	Location       string         `json:"location"`
	Address        Address        `json:"address"`
	PricePerHour   int64          `json:"price_per_hour"`
	Status         CourtStatus    `json:"status"`
	Type           CourtType      `json:"type"`
	Surface        Surface        `json:"surface"`
	Featured       bool           `json:"is_featured"`
	OperatingHours OperatingHours `json:"operating_hours,omitempty"`
	MaxPlayers     int            `json:"max_players"`
	Description    string         `json:"description,omitempty"`
	ArchivedAt     *time.Time     `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (c *Court) Summary() *CourtSummary {
	return &CourtSummary{
		ID:           c.ID,
		Name:         c.Name,
		Location:     c.Location,
		PricePerHour: c.PricePerHour,
		OwnerID:      c.OwnerID,
	}
}

type CourtSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	PricePerHour int64  `json:"price_per_hour"`
	OwnerID      int64  `json:"owner_id"`
}

type CourtFilter struct {
	Status   CourtStatus
	City     string
	Type     CourtType
	Surface  Surface
	Featured *bool
	OwnerID  int64
	Limit    int
	Offset   int
}

// SlotAvailability is one hourly slot of a court day.
type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
)

type Tournament struct {
	ID                   int64      `json:"id"`
	OrganizerID          int64      `json:"organizer_id"`
	Title                string     `json:"title"`
	Location             string     `json:"location"`
	StartDate            time.Time  `json:"start_date"`
	RegistrationDeadline time.Time  `json:"registration_deadline"`
	EntryFee             int64      `json:"entry_fee"`
	SkillLevel           SkillLevel `json:"skill_level"`
	MaxParticipants      int        `json:"max_participants"`
	Approved             bool       `json:"is_approved"`
	ApprovedBy           *int64     `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// RegistrationOpen reports whether registrations are accepted at now.
// Approval is checked separately.
func (t *Tournament) RegistrationOpen(now time.Time) bool {
	return !now.After(t.RegistrationDeadline)
}

func (t *Tournament) Approve(adminID int64, at time.Time) {
	t.Approved = true
	t.ApprovedBy = &adminID
	t.ApprovedAt = &at
	t.RejectionReason = ""
}

func (t *Tournament) Reject(reason string) {
	t.ResetApproval()
	t.RejectionReason = reason
}

func (t *Tournament) ResetApproval() {
	t.Approved = false
	t.ApprovedBy = nil
	t.ApprovedAt = nil
}

type TournamentFilter struct {
	Approved    *bool
	OrganizerID int64
	Limit       int
	Offset      int
}

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationRejected  RegistrationStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

type Registration struct {
	ID              uuid.UUID          `json:"id"`
	TournamentID    int64              `json:"tournament_id"`
	UserID          int64              `json:"user_id"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	TeamName        string             `json:"team_name,omitempty"`
	SkillLevel      SkillLevel         `json:"skill_level"`
	PartnerName     string             `json:"partner_name,omitempty"`
	PartnerEmail    string             `json:"partner_email,omitempty"`
	Status          RegistrationStatus `json:"status"`
	PaymentStatus   PaymentStatus      `json:"payment_status"`
	PaymentMethod   PaymentMethod      `json:"payment_method"`
	PaymentProofURL *string            `json:"payment_proof_url,omitempty"`
	PaymentAmount   int64              `json:"payment_amount"`
	Notes           string             `json:"notes,omitempty"`
	RefundAmount    int64              `json:"refund_amount"`
	RefundStatus    RefundStatus       `json:"refund_status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type NotificationType string

const (
	NotifyBooking      NotificationType = "booking"
	NotifyCancellation NotificationType = "cancellation"
	NotifyPayment      NotificationType = "payment"
	NotifyTournament   NotificationType = "tournament"
	NotifySystem       NotificationType = "system"
)

type Notification struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NormalizeEmail is the comparison form used for uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
