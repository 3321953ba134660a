package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"

	"github.com/loomhouse/storefront/internal/domain"
)

// EncodeDraft builds the multipart body expected by POST /api/products:
// scalar form fields, the price tiers as a JSON string under "price", and one "images" part per file.
func EncodeDraft(draft *domain.NewDraft) (io.Reader, string, error) {
	if draft == nil {
		return nil, "", domain.ErrInvalidRequest
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(draft.Fields))
	for k := range draft.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, draft.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	tiers, err := json.Marshal(draft.Tiers)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode price tiers: %w", err)
	}
	if err := w.WriteField("price", string(tiers)); err != nil {
		return nil, "", fmt.Errorf("failed to write price tiers: %w", err)
	}

	for _, img := range draft.Images {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename=%q`, img.Filename))
		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image %s: %w", img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}
