package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docgate/internal/model"
	"docgate/internal/policy"
	"docgate/internal/repository"
)

var ErrIDRequired = errors.New("id is required")

var tracer = otel.Tracer("docgate/service")

// DocumentService defines the document use cases. Every call carries the
// verified identity of the caller; access decisions are delegated to the
// policy engine and never made here.
type DocumentService interface {
	// List returns every document visible to who.
	List(ctx context.Context, who model.Identity) ([]model.Document, error)

	// Search returns visible documents whose title, description or tags contain query.
	Search(ctx context.Context, who model.Identity, query string) ([]model.Document, error)

	// Get returns one document. A missing and a hidden document fail the same way.
	Get(ctx context.Context, who model.Identity, id string) (*model.Document, error)

	// Create stores a new document owned by who.
	Create(ctx context.Context, who model.Identity, in model.DocumentInput) (*model.Document, error)

	// Update merges in over an existing document who may modify.
	Update(ctx context.Context, who model.Identity, id string, in model.DocumentInput) (*model.Document, error)

	// Delete removes a document who may modify.
	Delete(ctx context.Context, who model.Identity, id string) error

	// Stats summarizes the whole collection. Privileged callers only.
	Stats(ctx context.Context, who model.Identity) (*model.DocumentStats, error)
}

type documentService struct {
	repo   repository.DocumentRepository
	engine *policy.Engine
	now    func() time.Time
	newID  func() string
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(repo repository.DocumentRepository, engine *policy.Engine) DocumentService {
	return &documentService{
		repo:   repo,
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func startSpan(ctx context.Context, name string, who model.Identity, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("docgate.subject", who.Subject))
	return tracer.Start(ctx, "DocumentService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return policy.ErrNotFoundOrDenied
	}
	return err
}

func (s *documentService) List(ctx context.Context, who model.Identity) (docs []model.Document, err error) {
	ctx, span := startSpan(ctx, "List", who)
	defer func() { endSpan(span, err) }()

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	docs = s.engine.Visible(who, all)
	span.SetAttributes(attribute.Int("docgate.result_count", len(docs)))
	return docs, nil
}

func (s *documentService) Search(ctx context.Context, who model.Identity, query string) (docs []model.Document, err error) {
	ctx, span := startSpan(ctx, "Search", who, attribute.Int("docgate.query_len", len(query)))
	defer func() { endSpan(span, err) }()

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	docs = s.engine.Search(who, all, query)
	span.SetAttributes(attribute.Int("docgate.result_count", len(docs)))
	return docs, nil
}

func (s *documentService) Get(ctx context.Context, who model.Identity, id string) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "Get", who, attribute.String("docgate.document_id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return nil, ErrIDRequired
	}
	doc, err = s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err := s.engine.AuthorizeView(who, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Create(ctx context.Context, who model.Identity, in model.DocumentInput) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "Create", who)
	defer func() { endSpan(span, err) }()

	next, err := s.engine.NewDocument(who, in, s.newID(), s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("docgate.document_id", next.ID))

	doc, err = s.repo.Insert(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, who model.Identity, id string, in model.DocumentInput) (doc *model.Document, err error) {
	ctx, span := startSpan(ctx, "Update", who, attribute.String("docgate.document_id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return nil, ErrIDRequired
	}
	doc, err = s.repo.Update(ctx, id, func(current model.Document) (model.Document, error) {
		return s.engine.ApplyUpdate(who, current, in)
	})
	if err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, who model.Identity, id string) (err error) {
	ctx, span := startSpan(ctx, "Delete", who, attribute.String("docgate.document_id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return ErrIDRequired
	}
	err = s.repo.Delete(ctx, id, func(current model.Document) error {
		return s.engine.AuthorizeModify(who, current)
	})
	return notFound(err)
}

func (s *documentService) Stats(ctx context.Context, who model.Identity) (stats *model.DocumentStats, err error) {
	ctx, span := startSpan(ctx, "Stats", who)
	defer func() { endSpan(span, err) }()

	if err := s.engine.AuthorizeStats(who); err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats = &model.DocumentStats{
		TotalDocuments: len(all),
		ByStatus:       make(map[model.Status]int, len(model.Statuses)),
		ByType:         make(map[string]int),
		ByAccess:       make(map[model.AccessLevel]int, len(model.AccessLevels)),
	}
	for _, st := range model.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, al := range model.AccessLevels {
		stats.ByAccess[al] = 0
	}
	for _, d := range all {
		stats.ByStatus[d.Status]++
		stats.ByAccess[d.AccessLevel]++
		fileType := d.FileType
		if fileType == "" {
			fileType = "unknown"
		}
		stats.ByType[fileType]++
	}
	return stats, nil
}
