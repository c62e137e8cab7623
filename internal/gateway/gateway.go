// Package gateway publishes content to an IPFS-compatible add endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ipfs/go-cid"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/cryptox"
	"github.com/dmitrijs2005/storageorder/internal/logging"
	"github.com/dmitrijs2005/storageorder/internal/models"
	"github.com/dmitrijs2005/storageorder/internal/netx"
)

// FormField is the multipart field carrying the file.
const FormField = "upload_file"

// Publisher uploads files on behalf of an identity. Every request carries a
// freshly computed credential proving control of the identity's key.
type Publisher struct {
	url    string
	client *http.Client
	logger logging.Logger
}

// New returns a Publisher posting to url (e.g. https://host/api/v0/add).
func New(url string, client *http.Client, logger logging.Logger) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Publisher{url: url, client: client, logger: logger}
}

type addResponse struct {
	Hash string    `json:"Hash"`
	Size sizeField `json:"Size"`
}

// sizeField accepts both "Size": 1024 and "Size": "1024".
type sizeField struct {
	value uint64
	set   bool
}

func (s *sizeField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		b = []byte(str)
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %q", b)
	}
	s.value, s.set = v, true
	return nil
}

// Publish uploads data as filename and returns the content identifier and
// size reported by the gateway. Publishing is not idempotent; use the
// returned CID rather than assuming a previous one.
func (p *Publisher) Publish(ctx context.Context, id *models.Identity, data []byte, filename string) (models.UploadResult, error) {
	credential, err := cryptox.AuthCredential(id)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: credential: %w", common.ErrUpload, err)
	}

	header := http.Header{}
	header.Set("Authorization", "Basic "+credential)

	body, err := netx.PostMultipart(ctx, p.client, p.url, FormField, filename, data, header)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: %w", common.ErrUpload, err)
	}

	var resp addResponse
	if err := json.Unmarshal(lastJSONObject(body), &resp); err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: malformed response: %w", common.ErrUpload, err)
	}
	if resp.Hash == "" {
		return models.UploadResult{}, fmt.Errorf("%w: response has no Hash", common.ErrUpload)
	}
	if _, err := cid.Decode(resp.Hash); err != nil {
		return models.UploadResult{}, fmt.Errorf("%w: invalid content identifier %q: %w", common.ErrUpload, resp.Hash, err)
	}
	if !resp.Size.set || resp.Size.value == 0 {
		return models.UploadResult{}, fmt.Errorf("%w: response has no positive Size", common.ErrUpload)
	}

	p.logger.Debug(ctx, "content published", "cid", resp.Hash, "size", resp.Size.value, "filename", filename)
	return models.UploadResult{CID: resp.Hash, Size: resp.Size.value}, nil
}

// lastJSONObject returns the last non-empty line of body. The add endpoint
// streams one JSON object per added entry; the last one describes the root.
func lastJSONObject(body []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if l := bytes.TrimSpace(lines[i]); len(l) > 0 {
			return l
		}
	}
	return body
}
