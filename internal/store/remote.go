// Package store holds the persistence services a form saves records to.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rezonia/invoice-composer/internal/logging"
	"github.com/rezonia/invoice-composer/internal/model"
)

// SavePath is appended to the remote base URL
const SavePath = "/invoices/save_invoice.php"

// DefaultTimeout bounds one remote save
const DefaultTimeout = 30 * time.Second

// RemoteStore posts records to the invoice backend
type RemoteStore struct {
	endpoint string
	http     *http.Client
	logger   logrus.FieldLogger
}

// NewRemoteStore creates a client for the backend at baseURL
func NewRemoteStore(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *RemoteStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RemoteStore{
		endpoint: strings.TrimRight(baseURL, "/") + SavePath,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type wireItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

type wireInvoice struct {
	ClientName string      `json:"client_name"`
	IDType     string      `json:"id_type"`
	IDNumber   string      `json:"id_number"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Date       string      `json:"date"`
	Currency   string      `json:"currency"`
	Total      json.Number `json:"total"`
	Items      []wireItem  `json:"items"`
}

func toWire(rec *model.Record) wireInvoice {
	c := rec.Client()
	items := rec.Items()
	w := wireInvoice{
		ClientName: c.Name,
		IDType:     c.IDType,
		IDNumber:   c.IDNumber,
		Email:      c.Email,
		Phone:      c.Phone,
		Date:       rec.IssueDate().Format(model.DateLayout),
		Currency:   rec.Currency(),
		Total:      json.Number(rec.Total().String()),
		Items:      make([]wireItem, len(items)),
	}
	for i, item := range items {
		w.Items[i] = wireItem{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			Price:       item.UnitPrice.String(),
		}
	}
	return w
}

// Save implements form.Store. An answer that is not JSON counts as a
// transport failure, the same as no answer at all.
func (s *RemoteStore) Save(ctx context.Context, rec *model.Record) (model.SaveResult, error) {
	body, err := json.Marshal(toWire(rec))
	if err != nil {
		return model.SaveResult{}, fmt.Errorf("encode invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.SaveResult{}, model.ErrTransportFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		logging.LogError(s.logger, "store", "RemoteStore.Save", s.endpoint, rec.ID(), err)
		return model.SaveResult{}, model.ErrTransportFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.SaveResult{}, model.ErrTransportFailure(err)
	}

	var result model.SaveResult
	if err := json.Unmarshal(raw, &result); err != nil {
		err = fmt.Errorf("status %d: %w", resp.StatusCode, err)
		logging.LogError(s.logger, "store", "RemoteStore.Save", s.endpoint, strings.TrimSpace(string(raw)), err)
		return model.SaveResult{}, model.ErrTransportFailure(err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":      rec.ID(),
		"status":  resp.StatusCode,
		"success": result.Success,
	}).Debug("remote save answered")
	return result, nil
}
