package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"campus-gms/types"
)

// UploadAttachment sends a photo as multipart form data and returns where
// the server stored it.
func (c *Client) UploadAttachment(ctx context.Context, filename string, r io.Reader) (*types.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/attachments", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out types.Attachment
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
