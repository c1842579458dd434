package notes

import (
	"strings"
	"time"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/auth"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/database"
	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type NotePayload struct {
	Content    string `json:"content"`
	Color      string `json:"color"`
	ReminderAt string `json:"reminder_at"` // "2025-12-09 14:30" veya boş
}

type NoteResponse struct {
	ID         uint   `json:"id"`
	Content    string `json:"content"`
	Color      string `json:"color"`
	IsDone     bool   `json:"is_done"`
	ReminderAt string `json:"reminder_at,omitempty"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  string `json:"created_at"`
}

const reminderLayout = "2006-01-02 15:04"

func toNoteResponse(n *models.Note) NoteResponse {
	resp := NoteResponse{
		ID:        n.ID,
		Content:   n.Content,
		Color:     n.Color,
		IsDone:    n.IsDone,
		CreatedBy: n.CreatedBy.Name,
		CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if n.ReminderAt != nil {
		resp.ReminderAt = n.ReminderAt.Format(reminderLayout)
	}
	return resp
}

func parseReminder(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(reminderLayout, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "reminder_at 'YYYY-MM-DD HH:MM' formatında olmalı")
	}
	return &t, nil
}

// GET /api/notes
// Query: include_done ("true" ise tamamlananlar da gelir)
func ListNotesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Note{}).Preload("CreatedBy").Order("created_at desc")
		if c.Query("include_done") != "true" {
			q = q.Where("is_done = ?", false)
		}

		var notes []models.Note
		if err := q.Find(&notes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Notlar listelenemedi")
		}

		resp := make([]NoteResponse, 0, len(notes))
		for i := range notes {
			resp = append(resp, toNoteResponse(&notes[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/notes
func CreateNoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body NotePayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Content = strings.TrimSpace(body.Content)
		if body.Content == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Not içeriği boş olamaz")
		}

		reminder, err := parseReminder(body.ReminderAt)
		if err != nil {
			return err
		}

		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		note := models.Note{
			Content:     body.Content,
			Color:       body.Color,
			ReminderAt:  reminder,
			CreatedByID: userID,
		}
		if err := database.DB.Create(&note).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Not oluşturulamadı")
		}

		database.DB.Preload("CreatedBy").First(&note, note.ID)
		return c.Status(fiber.StatusCreated).JSON(toNoteResponse(&note))
	}
}

// PUT /api/notes/:id
func UpdateNoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz not id")
		}

		var note models.Note
		if err := database.DB.Preload("CreatedBy").First(&note, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Not bulunamadı")
		}

		var body NotePayload
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Content = strings.TrimSpace(body.Content)
		if body.Content == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Not içeriği boş olamaz")
		}

		reminder, err := parseReminder(body.ReminderAt)
		if err != nil {
			return err
		}

		note.Content = body.Content
		note.Color = body.Color
		note.ReminderAt = reminder

		if err := database.DB.Save(&note).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Not güncellenemedi")
		}
		return c.JSON(toNoteResponse(&note))
	}
}

// PUT /api/notes/:id/toggle - Tamamlandı işaretini tersine çevirir.
func ToggleNoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz not id")
		}

		var note models.Note
		if err := database.DB.Preload("CreatedBy").First(&note, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Not bulunamadı")
		}

		note.IsDone = !note.IsDone
		if err := database.DB.Model(&models.Note{}).Where("id = ?", note.ID).
			Update("is_done", note.IsDone).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Not güncellenemedi")
		}
		return c.JSON(toNoteResponse(&note))
	}
}

// DELETE /api/notes/:id
func DeleteNoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz not id")
		}

		if err := database.DB.Delete(&models.Note{}, id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Not silinemedi")
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
