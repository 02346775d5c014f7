package batchsvc

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
)

// attachment is one file ready to be embedded into a message.
type attachment struct {
	Filename string
	Content  []byte
}

// buildMessage renders one full RFC 5322 message with a text or html
// body part followed by the attachments.
func buildMessage(from, to *mail.Address, subject, body string, htmlMode bool, attachments []attachment) ([]byte, error) {
	var buf bytes.Buffer

	var header mail.Header
	header.SetDate(time.Now())
	header.SetAddressList("From", []*mail.Address{from})
	header.SetAddressList("To", []*mail.Address{to})
	header.SetSubject(subject)

	writer, err := mail.CreateWriter(&buf, header)
	if err != nil {
		return nil, fmt.Errorf("cannot create message writer: %w", err)
	}

	inline, err := writer.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("cannot create inline part: %w", err)
	}

	contentType := "text/plain; charset=utf-8"
	if htmlMode {
		contentType = "text/html; charset=utf-8"
	}

	var inlineHeader mail.InlineHeader
	inlineHeader.Set("Content-Type", contentType)

	bodyWriter, err := inline.CreatePart(inlineHeader)
	if err != nil {
		return nil, fmt.Errorf("cannot create body part: %w", err)
	}

	if _, err = io.WriteString(bodyWriter, body); err != nil {
		return nil, fmt.Errorf("cannot write body: %w", err)
	}

	if err = bodyWriter.Close(); err != nil {
		return nil, fmt.Errorf("cannot close body part: %w", err)
	}

	if err = inline.Close(); err != nil {
		return nil, fmt.Errorf("cannot close inline part: %w", err)
	}

	for _, att := range attachments {
		var attHeader mail.AttachmentHeader
		attHeader.Set("Content-Type", "application/octet-stream")
		attHeader.SetFilename(att.Filename)

		attWriter, err := writer.CreateAttachment(attHeader)
		if err != nil {
			return nil, fmt.Errorf("cannot create attachment part %s: %w", att.Filename, err)
		}

		if _, err = attWriter.Write(att.Content); err != nil {
			return nil, fmt.Errorf("cannot write attachment %s: %w", att.Filename, err)
		}

		if err = attWriter.Close(); err != nil {
			return nil, fmt.Errorf("cannot close attachment part %s: %w", att.Filename, err)
		}
	}

	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("cannot close message writer: %w", err)
	}

	return buf.Bytes(), nil
}
