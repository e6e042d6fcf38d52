package models

import (
	"github.com/lib/pq" // pq.StringArray, same type the persisted user model used for tags
)

// Profile містить описові поля, які учасник надсилає під час join.
// Ядро нічого тут не перевіряє: поля лише пересилаються партнеру у match-found.
type Profile struct {
	Name      string         `json:"name,omitempty"`
	Age       int            `json:"age,omitempty"`
	Location  string         `json:"location,omitempty"`
	Interests pq.StringArray `json:"interests,omitempty"` // Теги інтересів
}

// Clone returns a copy whose Interests slice is not shared with p.
func (p Profile) Clone() Profile {
	out := p
	if p.Interests != nil {
		out.Interests = append(pq.StringArray(nil), p.Interests...)
	}
	return out
}
