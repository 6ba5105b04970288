// Package userstore define las entidades y repositorios del user service:
// usuarios, roles, permisos y perfiles. Las implementaciones viven en
// userstore/pg (Postgres) y userstore/cached (decorador con cache).
package userstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

// User es la cuenta persistida. PasswordHash es un PHC argon2id y nunca
// se serializa hacia afuera.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"roleId,omitempty"`
	ProfileID    string    `json:"profileId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission nombra una capacidad y los roles que la tienen.
type Permission struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	AllowedRoles []string `json:"allowedRoles,omitempty"`
}

type Profile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Users persiste cuentas. Username y email son únicos; Create y Update
// retornan ErrConflict ante una violación.
type Users interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

type Roles interface {
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, r *Role) error
	Update(ctx context.Context, r *Role) error
	Delete(ctx context.Context, id string) error
}

// Permissions persiste permisos y su relación con roles.
type Permissions interface {
	GetByID(ctx context.Context, id string) (*Permission, error)
	List(ctx context.Context) ([]Permission, error)
	// ListByRole retorna los permisos cuyo AllowedRoles incluye roleID.
	// Un rol sin permisos retorna slice vacío, no error.
	ListByRole(ctx context.Context, roleID string) ([]Permission, error)
	Create(ctx context.Context, p *Permission) error
	Update(ctx context.Context, p *Permission) error
	Delete(ctx context.Context, id string) error
}

type Profiles interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id string) error
}

// Store agrupa todos los repositorios del user service.
type Store struct {
	Users       Users
	Roles       Roles
	Permissions Permissions
	Profiles    Profiles
}
