package docstore

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultProfilePhoto = "default-avatar.jpg"
	defaultCoverPhoto   = "default-cover.jpg"
)

type UserInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	Address      string
	ProfilePhoto string
	CoverPhoto   string
}

// UserUpdate carries the mutable user fields; nil means leave as is.
type UserUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *string
	Status       *string
	ProfilePhoto *string
	CoverPhoto   *string
}

// RegisterUser appends a new user to the given category and creates a
// welcome notification for them. The password is stored as a bcrypt
// hash and never returned.
func (s *Store) RegisterUser(ctx context.Context, typ UserType, in UserInput) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		ID:           newID(""),
		Name:         in.Name,
		Email:        in.Email,
		Password:     string(hashed),
		Phone:        in.Phone,
		Address:      in.Address,
		Type:         string(typ),
		Status:       "active",
		ProfilePhoto: in.ProfilePhoto,
		CoverPhoto:   in.CoverPhoto,
		CreatedAt:    isoTime(s.now()),
	}
	if user.ProfilePhoto == "" {
		user.ProfilePhoto = defaultProfilePhoto
	}
	if user.CoverPhoto == "" {
		user.CoverPhoto = defaultCoverPhoto
	}

	err = mutateDoc(ctx, s, CollectionUsers, "register_user", func(doc *usersDoc) (bool, error) {
		users := doc.byType(typ)
		*users = append(*users, user)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = s.CreateNotification(ctx, NotificationInput{
		Recipient: UserRecipient(user.ID),
		Type:      "welcome",
		Message:   fmt.Sprintf("Welcome to Raj Marketing, %s!", user.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create welcome notification: %w", err)
	}

	return user.sanitized(), nil
}

// LoginUser finds a user by email within the category and verifies the
// password against the stored hash. A miss or a wrong password returns
// nil without error; the result never carries the password hash.
func (s *Store) LoginUser(ctx context.Context, typ UserType, email, password string) (*User, error) {
	doc, _, err := readDoc[usersDoc](ctx, s, CollectionUsers, "login_user")
	if err != nil {
		return nil, err
	}

	for _, u := range *doc.byType(typ) {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return nil, nil
		}
		return u.sanitized(), nil
	}
	return nil, nil
}

// GetUser returns the user with the given id, or nil when absent.
func (s *Store) GetUser(ctx context.Context, typ UserType, id string) (*User, error) {
	doc, _, err := readDoc[usersDoc](ctx, s, CollectionUsers, "get_user")
	if err != nil {
		return nil, err
	}

	for _, u := range *doc.byType(typ) {
		if u.ID == id {
			return u.sanitized(), nil
		}
	}
	return nil, nil
}

// UpdateUser applies the non-nil fields of upd to the user with the
// given id. Returns the updated user, or nil when the id is unknown
// (in which case nothing is written).
func (s *Store) UpdateUser(ctx context.Context, typ UserType, id string, upd UserUpdate) (*User, error) {
	var updated *User
	err := mutateDoc(ctx, s, CollectionUsers, "update_user", func(doc *usersDoc) (bool, error) {
		updated = nil
		users := doc.byType(typ)
		for i := range *users {
			u := &(*users)[i]
			if u.ID != id {
				continue
			}
			applyString(&u.Name, upd.Name)
			applyString(&u.Email, upd.Email)
			applyString(&u.Phone, upd.Phone)
			applyString(&u.Address, upd.Address)
			applyString(&u.Status, upd.Status)
			applyString(&u.ProfilePhoto, upd.ProfilePhoto)
			applyString(&u.CoverPhoto, upd.CoverPhoto)
			u.UpdatedAt = isoTime(s.now())
			updated = u.sanitized()
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the user with the given id from its category.
// Reports whether a user was found; a miss performs no write.
func (s *Store) DeleteUser(ctx context.Context, typ UserType, id string) (bool, error) {
	found := false
	err := mutateDoc(ctx, s, CollectionUsers, "delete_user", func(doc *usersDoc) (bool, error) {
		found = false
		users := doc.byType(typ)
		for i := range *users {
			if (*users)[i].ID == id {
				*users = append((*users)[:i], (*users)[i+1:]...)
				found = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// UserDirectory is the full content of users.json with password hashes
// stripped.
type UserDirectory struct {
	Customers []User `json:"customers"`
	Dealers   []User `json:"dealers"`
	Admins    []User `json:"admins"`
}

// AllUsers returns every user grouped by category.
func (s *Store) AllUsers(ctx context.Context) (*UserDirectory, error) {
	doc, _, err := readDoc[usersDoc](ctx, s, CollectionUsers, "all_users")
	if err != nil {
		return nil, err
	}

	dir := &UserDirectory{
		Customers: sanitizeUsers(doc.Customers),
		Dealers:   sanitizeUsers(doc.Dealers),
		Admins:    sanitizeUsers(doc.Admins),
	}
	return dir, nil
}

func sanitizeUsers(users []User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = *u.sanitized()
	}
	return out
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
