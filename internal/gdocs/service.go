package gdocs

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-md2docs/internal/logging"
	"github.com/goliatone/go-md2docs/pkg/docmodel"
	"github.com/goliatone/go-md2docs/pkg/interfaces"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

const (
	textCodeDocumentIDRequired = "DOCS_DOCUMENT_ID_REQUIRED"
	textCodeClientInit         = "DOCS_CLIENT_INIT_FAILED"
	textCodeBatchUpdate        = "DOCS_BATCH_UPDATE_FAILED"
	textCodeGet                = "DOCS_GET_FAILED"
)

// ErrDocumentIDRequired is returned when a call is made without a target.
var ErrDocumentIDRequired = errors.New("gdocs: document id is required")

// Config selects credentials and endpoint for the API client.
type Config struct {
	CredentialsFile string
	Endpoint        string
}

// Service implements interfaces.DocumentService on top of the Docs API.
type Service struct {
	api    *docs.Service
	logger interfaces.Logger
}

var _ interfaces.DocumentService = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.OrNoOp(logger)
	}
}

// NewService builds an API client from cfg. Extra client options are applied
// after the ones derived from cfg.
func NewService(ctx context.Context, cfg Config, clientOpts []option.ClientOption, opts ...ServiceOption) (*Service, error) {
	options := []option.ClientOption{option.WithScopes(docs.DocumentsScope)}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		options = append(options, option.WithCredentialsFile(path))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		options = append(options, option.WithEndpoint(endpoint))
	}
	options = append(options, clientOpts...)

	api, err := docs.NewService(ctx, options...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "docs client initialisation failed").
			WithTextCode(textCodeClientInit)
	}
	return NewServiceFromAPI(api, opts...), nil
}

// NewServiceFromAPI wraps an already configured API client.
func NewServiceFromAPI(api *docs.Service, opts ...ServiceOption) *Service {
	s := &Service{api: api, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BatchUpdate applies requests in order as a single batch. An empty batch is
// not sent.
func (s *Service) BatchUpdate(ctx context.Context, documentID string, requests []docmodel.Request) error {
	if err := requireDocumentID(documentID); err != nil {
		return err
	}
	payload := ToAPIRequests(requests)
	if len(payload) == 0 {
		return nil
	}

	logger := logging.WithFields(s.logger, map[string]any{
		"document_id": documentID,
		"requests":    len(payload),
	})
	logger.Debug("gdocs.batch_update.start")

	_, err := s.api.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{Requests: payload}).
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("gdocs.batch_update.failed", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryCommand, "docs batch update failed").
			WithTextCode(textCodeBatchUpdate)
	}
	return nil
}

// Get fetches the current document structure.
func (s *Service) Get(ctx context.Context, documentID string) (*docmodel.Document, error) {
	if err := requireDocumentID(documentID); err != nil {
		return nil, err
	}
	doc, err := s.api.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		s.logger.Error("gdocs.get.failed", "document_id", documentID, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "docs get failed").
			WithTextCode(textCodeGet)
	}
	return FromAPIDocument(doc), nil
}

func requireDocumentID(documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return goerrors.Wrap(ErrDocumentIDRequired, goerrors.CategoryValidation, "document id is required").
			WithTextCode(textCodeDocumentIDRequired)
	}
	return nil
}
