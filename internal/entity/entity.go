package entity

import (
	"fmt"
	"time"
)

// PhotoCategory is the closed set of photo classifications.
type PhotoCategory string

const (
	CategorySelfie    PhotoCategory = "SELFIE"
	CategoryPortrait  PhotoCategory = "PORTRAIT"
	CategoryAction    PhotoCategory = "ACTION"
	CategoryLandscape PhotoCategory = "LANDSCAPE"
	CategoryGraphic   PhotoCategory = "GRAPHIC"
)

// ParsePhotoCategory maps an enum symbol to its category.
func ParsePhotoCategory(s string) (PhotoCategory, error) {
	switch c := PhotoCategory(s); c {
	case CategorySelfie, CategoryPortrait, CategoryAction, CategoryLandscape, CategoryGraphic:
		return c, nil
	}
	return "", fmt.Errorf("unknown photo category %q", s)
}

// User is identified by its immutable githubLogin. Name and Avatar are
// optional; empty means unset.
type User struct {
	GithubLogin string `json:"githubLogin" validate:"required"`
	Name        string `json:"name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// Photo is posted by exactly one user and may tag any number of users.
// TaggedLogins is denormalized from the association index by the data source
// on read; it is never written directly.
type Photo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name" validate:"required"`
	URL          string        `json:"url" validate:"required,url"`
	Description  string        `json:"description,omitempty"`
	Category     PhotoCategory `json:"category"`
	Created      time.Time     `json:"created"`
	PostedBy     string        `json:"postedBy" validate:"required"`
	TaggedLogins []string      `json:"-"`
}

// Friendship is a through-entity: the edge itself, carrying attributes about
// the relation. It connects two or more users and exists independently of
// them; a deleted member leaves a dangling login that lookups surface as a
// referential-integrity error.
type Friendship struct {
	ID         string   `json:"id"`
	Logins     []string `json:"logins" validate:"min=2,dive,required"`
	HowLong    string   `json:"howLong,omitempty"`
	WhereWeMet string   `json:"whereWeMet,omitempty"`
}

// AgendaItem is any member of the agenda family. TypeTag returns the concrete
// schema type name; polymorphic dispatch reads this tag, never the value's
// shape.
type AgendaItem interface {
	TypeTag() string
}

// StudyGroup is an agenda variant adding study-specific fields.
type StudyGroup struct {
	Name         string    `json:"name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Topic        string    `json:"topic"`
	Participants []string  `json:"participants"`
}

func (StudyGroup) TypeTag() string { return "StudyGroup" }

// Workout is an agenda variant adding workout-specific fields.
type Workout struct {
	Name    string    `json:"name"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Reps    int       `json:"reps"`
	GymName string    `json:"gymName"`
}

func (Workout) TypeTag() string { return "Workout" }
