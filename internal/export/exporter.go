// Package export builds the session summary PDF and mails it out.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"notary-relay/internal/config"
	"notary-relay/internal/domain"
)

// PDFMailExporter implements the relay's SessionExporter: one summary
// PDF per request, delivered over SMTP. Fire-and-forget from the
// relay's point of view.
type PDFMailExporter struct {
	cfg config.MailConfig
	// send is swapped in tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewPDFMailExporter(cfg config.MailConfig) *PDFMailExporter {
	return &PDFMailExporter{cfg: cfg, send: smtp.SendMail}
}

func (e *PDFMailExporter) Export(ctx context.Context, roomID domain.RoomID, mediaLabel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pdf, err := e.BuildSummary(roomID, mediaLabel)
	if err != nil {
		return fmt.Errorf("build summary pdf: %w", err)
	}
	if e.cfg.SMTPAddr == "" {
		log.Warn().Str("module", "export").Str("room", string(roomID)).Msg("no smtp address configured, summary not mailed")
		return nil
	}
	msg, err := e.buildMessage(roomID, pdf)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if e.cfg.Username != "" {
		host, _, err := net.SplitHostPort(e.cfg.SMTPAddr)
		if err != nil {
			host = e.cfg.SMTPAddr
		}
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, host)
	}
	if err := e.send(e.cfg.SMTPAddr, auth, e.cfg.From, []string{e.cfg.To}, msg); err != nil {
		return fmt.Errorf("send summary mail: %w", err)
	}
	log.Info().Str("module", "export").Str("room", string(roomID)).Str("to", e.cfg.To).Msg("session summary mailed")
	return nil
}

// BuildSummary renders the session summary PDF.
func (e *PDFMailExporter) BuildSummary(roomID domain.RoomID, mediaLabel string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Notarization Session Summary")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Session room: %s", roomID))
	pdf.Ln(8)
	if mediaLabel != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Recording: %s", mediaLabel))
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC1123)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PDFMailExporter) buildMessage(roomID domain.RoomID, pdf []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", e.cfg.To)
	fmt.Fprintf(&buf, "Subject: Notarization session %s completed\r\n", roomID)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	body, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(body, "The notarization session %s has completed. The summary is attached.\r\n", roomID)

	att, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", "session-summary.pdf")},
	})
	if err != nil {
		return nil, err
	}
	enc := base64.NewEncoder(base64.StdEncoding, att)
	if _, err := enc.Write(pdf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
