package docstore

import (
	"encoding/json"
	"fmt"
)

// TimelineEvent is one entry of an order's append-only audit trail.
// Entries are only ever appended, never mutated or removed.
type TimelineEvent struct {
	Status string `json:"status"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

// UserType selects the category of users.json a user lives in. The
// three categories are independent identity spaces.
type UserType string

const (
	UserCustomer UserType = "customer"
	UserDealer   UserType = "dealer"
	UserAdmin    UserType = "admin"
)

// ParseUserType validates a user type supplied at the API boundary.
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserCustomer, UserDealer, UserAdmin:
		return UserType(s), nil
	default:
		return "", fmt.Errorf("unknown user type %q", s)
	}
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	ProfilePhoto string `json:"profilePhoto"`
	CoverPhoto   string `json:"coverPhoto"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// sanitized returns a copy safe to hand outside the store: the
// password hash never leaves the collection document.
func (u User) sanitized() *User {
	u.Password = ""
	return &u
}

type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	DealerID   string          `json:"dealerId"`
	Product    string          `json:"product,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	Amount     float64         `json:"amount,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Status     string          `json:"status"`
	Timeline   []TimelineEvent `json:"timeline"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

type Payment struct {
	ID            string  `json:"id"`
	CustomerID    string  `json:"customerId"`
	OrderID       string  `json:"orderId,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Method        string  `json:"method,omitempty"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

type Installation struct {
	ID            string `json:"id"`
	OrderID       string `json:"orderId,omitempty"`
	CustomerID    string `json:"customerId,omitempty"`
	DealerID      string `json:"dealerId"`
	Address       string `json:"address,omitempty"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	CarpenterID   string `json:"carpenterId,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CompletedDate string `json:"completedDate,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

type Carpenter struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Phone         string   `json:"phone,omitempty"`
	Areas         []string `json:"areas"`
	Status        string   `json:"status"`
	Rating        float64  `json:"rating"`
	JobsCompleted int      `json:"jobsCompleted"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
}

type Membership struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount,omitempty"`
	CreatedAt  string  `json:"createdAt"`
	ExpiryDate string  `json:"expiryDate"`
}

// Recipient addresses a notification either to a single user or to the
// admin role. On disk it is stored in the legacy layout: the user id
// string, or the sentinel "admin" for role-addressed notifications.
type Recipient struct {
	Admin  bool
	UserID string
}

func UserRecipient(id string) Recipient { return Recipient{UserID: id} }

var AdminRecipient = Recipient{Admin: true}

const adminSentinel = "admin"

func (r Recipient) String() string {
	if r.Admin {
		return adminSentinel
	}
	return r.UserID
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == adminSentinel {
		*r = AdminRecipient
		return nil
	}
	*r = Recipient{UserID: s}
	return nil
}

type NotificationData struct {
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
}

type Notification struct {
	ID        string            `json:"id"`
	Recipient Recipient         `json:"userId"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Data      *NotificationData `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt string            `json:"createdAt"`
}

type ServiceArea struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	Pincode   string `json:"pincode,omitempty"`
	CreatedAt string `json:"createdAt"`
}
