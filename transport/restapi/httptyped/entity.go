package httptyped

import (
	"time"

	"github.com/yusufsyaifudin/ngirim/internal/svc/sendlogrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/tmplrepo"
)

type TemplateEntity struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	HTMLMode  bool      `json:"html_mode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func TemplateEntityFromRepo(tmpl tmplrepo.Template) TemplateEntity {
	return TemplateEntity{
		ID:        tmpl.ID,
		Name:      tmpl.Name,
		Subject:   tmpl.Subject,
		Content:   tmpl.Content,
		HTMLMode:  tmpl.HTMLMode,
		CreatedAt: time.UnixMicro(tmpl.CreatedAt).UTC(),
		UpdatedAt: time.UnixMicro(tmpl.UpdatedAt).UTC(),
	}
}

// SenderConfigEntity never carries a password, credentials are
// supplied per request and not stored.
type SenderConfigEntity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SMTPHost    string    `json:"smtp_host"`
	SMTPPort    int       `json:"smtp_port"`
	SenderEmail string    `json:"sender_email"`
	SenderName  string    `json:"sender_name"`
	UseSSL      bool      `json:"use_ssl"`
	UseTLS      bool      `json:"use_tls"`
	HTMLMode    bool      `json:"html_mode"`
	Protected   bool      `json:"protected"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func SenderConfigEntityFromRepo(cfg senderrepo.SenderConfig) SenderConfigEntity {
	return SenderConfigEntity{
		ID:          cfg.ID,
		Name:        cfg.Name,
		SMTPHost:    cfg.SMTPHost,
		SMTPPort:    cfg.SMTPPort,
		SenderEmail: cfg.SenderEmail,
		SenderName:  cfg.SenderName,
		UseSSL:      cfg.UseSSL,
		UseTLS:      cfg.UseTLS,
		HTMLMode:    cfg.HTMLMode,
		Protected:   cfg.Protected,
		CreatedAt:   time.UnixMicro(cfg.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMicro(cfg.UpdatedAt).UTC(),
	}
}

type RecipientEntity struct {
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Department     string   `json:"department,omitempty"`
	Attachment     string   `json:"attachment"`
	AllAttachments []string `json:"all_attachments"`
}

func RecipientEntityFromSvc(r sheetsvc.Recipient) RecipientEntity {
	return RecipientEntity{
		Email:          r.Email,
		Name:           r.Name,
		Department:     r.Department,
		Attachment:     r.Attachment,
		AllAttachments: r.AllAttachments,
	}
}

func RecipientEntityToSvc(r RecipientEntity) sheetsvc.Recipient {
	return sheetsvc.Recipient{
		Email:          r.Email,
		Name:           r.Name,
		Department:     r.Department,
		Attachment:     r.Attachment,
		AllAttachments: r.AllAttachments,
	}
}

type SendLogEntity struct {
	ID             int64     `json:"id"`
	BatchID        string    `json:"batch_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	Message        string    `json:"message,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}

func SendLogEntityFromRepo(l sendlogrepo.SendLog) SendLogEntity {
	return SendLogEntity{
		ID:             l.ID,
		BatchID:        l.BatchID,
		RecipientEmail: l.RecipientEmail,
		RecipientName:  l.RecipientName,
		Subject:        l.Subject,
		Status:         l.Status,
		Message:        l.Message,
		SentAt:         time.UnixMicro(l.SentAt).UTC(),
	}
}
