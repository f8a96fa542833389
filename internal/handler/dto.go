package handler

import (
	"time"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339Nano),
	}
}

// MemoryDTO is the JSON representation of a memory.
type MemoryDTO struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
}

func toMemoryDTO(m domain.Memory) MemoryDTO {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return MemoryDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Location:    m.Location,
		Date:        m.Date,
		ImageURL:    m.ImageURL,
		Tags:        tags,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toMemoryDTOs(memories []domain.Memory) []MemoryDTO {
	dtos := make([]MemoryDTO, len(memories))
	for i, m := range memories {
		dtos[i] = toMemoryDTO(m)
	}
	return dtos
}

// createMemoryRequest is the body of POST /api/memories. The owner always
// comes from the session, never from the body.
type createMemoryRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

// updateMemoryRequest is the body of PATCH /api/memories/{id}. Absent fields
// are left unchanged; id, userId and createdAt are not accepted.
type updateMemoryRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Date        *string   `json:"date"`
	ImageURL    *string   `json:"imageUrl"`
	Tags        *[]string `json:"tags"`
}

func (r updateMemoryRequest) toDomain() domain.MemoryUpdate {
	return domain.MemoryUpdate{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Date:        r.Date,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
	}
}

// ImageDTO is the response of POST /api/images.
type ImageDTO struct {
	ImageURL    string `json:"imageUrl"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
